/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/citahub/cita-go/cli/input"
	"github.com/citahub/cita-go/pkg/config"
	"github.com/citahub/cita-go/pkg/crypto/keys"
	"github.com/citahub/cita-go/pkg/encoding/quantity"
	"github.com/citahub/cita-go/pkg/rpcclient"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultTimeout is the default timeout used for the whole command.
const DefaultTimeout = 10 * time.Second

// RPCEndpointFlag is a long flag name for an RPC endpoint. It can be used to
// check for flag presence in the context.
const RPCEndpointFlag = "rpc-endpoint"

// RPC is a set of flags used for RPC connections (endpoints and timeout).
var RPC = []cli.Flag{
	cli.StringSliceFlag{
		Name:  RPCEndpointFlag + ", r",
		Usage: "RPC node address (can be repeated, overrides configuration)",
	},
	cli.DurationFlag{
		Name:  "timeout, s",
		Value: DefaultTimeout,
		Usage: "Timeout for the operation",
	},
	Config,
	Debug,
}

// Config is a flag for commands that use client configuration.
var Config = cli.StringFlag{
	Name:  "config-file, c",
	Usage: "path to the configuration file",
}

// Debug is a flag for commands that allow debug logging.
var Debug = cli.BoolFlag{
	Name:  "debug, d",
	Usage: "enable debug logging (overrides configuration)",
}

// ChainID is a flag for commands that build transactions.
var ChainID = cli.UintFlag{
	Name:  "chain-id",
	Usage: "chain id to use in transactions (requested from the node if not set)",
}

// Height is a flag for commands that can query historic state.
var Height = cli.StringFlag{
	Name:  "height",
	Usage: "block height (decimal or 0x-prefixed hex), latest block if not set",
}

var errNoChainID = errors.New("chain id is not set, use option '--" + ChainID.Name + "' or configuration file")

var errNoEndpoint = errors.New("no RPC endpoint specified, use option '--" + RPCEndpointFlag + "' or '-r' or configuration file")

// GetTimeoutContext returns a context.Context with the default or a user-set timeout.
func GetTimeoutContext(ctx *cli.Context) (context.Context, func()) {
	dur := ctx.Duration("timeout")
	if dur == 0 {
		dur = DefaultTimeout
	}
	return context.WithTimeout(context.Background(), dur)
}

// GetConfigFromContext loads the configuration file given with --config-file
// or returns the default configuration if there is none. Flags override
// configuration values.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path := ctx.String("config-file"); len(path) != 0 {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(nil)
	}
	if err != nil {
		return config.Config{}, err
	}
	if eps := ctx.StringSlice(RPCEndpointFlag); len(eps) != 0 {
		cfg.ApplicationConfiguration.Nodes = eps
	}
	if ctx.IsSet(ChainID.Name) {
		v := ctx.Uint(ChainID.Name)
		if v > math.MaxUint32 {
			return config.Config{}, fmt.Errorf("chain id %d is out of uint32 range", v)
		}
		id := uint32(v)
		cfg.ApplicationConfiguration.ChainID = &id
	}
	return cfg, cfg.ApplicationConfiguration.Validate()
}

// GetHeight parses the --height flag, nil is returned if it's not set.
func GetHeight(ctx *cli.Context) (*uint64, error) {
	s := ctx.String(Height.Name)
	if len(s) == 0 {
		return nil, nil
	}
	h, err := quantity.DecodeUint64(s)
	if err != nil {
		return nil, fmt.Errorf("invalid height: %w", err)
	}
	return &h, nil
}

// Node is an RPC client with the set of endpoints it's configured for.
type Node struct {
	*rpcclient.Client
	Endpoints []string
	Log       *zap.Logger

	closer func()
}

// Endpoint returns the main endpoint, used for single-node queries.
func (n *Node) Endpoint() string {
	return n.Endpoints[0]
}

// Close releases client resources and flushes the log.
func (n *Node) Close() {
	n.closer()
	_ = n.Log.Sync()
}

// GetRPCClient returns an RPC client instance for the given Context. Signing
// key is taken from the configuration if present.
func GetRPCClient(ctx *cli.Context) (*Node, cli.ExitCoder) {
	return getRPCClient(ctx, false)
}

// GetRPCClientWithKey is the same as GetRPCClient, but also makes sure
// there is a key for transaction signing. If it's not configured, it's
// requested from the user.
func GetRPCClientWithKey(ctx *cli.Context) (*Node, cli.ExitCoder) {
	return getRPCClient(ctx, true)
}

func getRPCClient(ctx *cli.Context, needKey bool) (*Node, cli.ExitCoder) {
	cfg, err := GetConfigFromContext(ctx)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	app := cfg.ApplicationConfiguration
	if len(app.Nodes) == 0 {
		return nil, cli.NewExitError(errNoEndpoint, 1)
	}
	opts, exitErr := clientOptions(ctx, app, needKey)
	if exitErr != nil {
		return nil, exitErr
	}
	node := &Node{Endpoints: app.Nodes, Log: opts.Logger}
	if app.WebSocket() {
		gctx, cancel := GetTimeoutContext(ctx)
		defer cancel()
		wsc, err := rpcclient.NewWS(gctx, opts)
		if err != nil {
			return nil, cli.NewExitError(err, 1)
		}
		node.Client, node.closer = &wsc.Client, wsc.Close
	} else {
		c, err := rpcclient.New(opts)
		if err != nil {
			return nil, cli.NewExitError(err, 1)
		}
		node.Client, node.closer = c, c.Close
	}
	return node, nil
}

// GetOfflineClient returns a client for signing transactions without any
// node. Chain id must be set by flag or configuration.
func GetOfflineClient(ctx *cli.Context) (*rpcclient.Client, cli.ExitCoder) {
	cfg, err := GetConfigFromContext(ctx)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	app := cfg.ApplicationConfiguration
	if app.ChainID == nil {
		return nil, cli.NewExitError(errNoChainID, 1)
	}
	opts, exitErr := clientOptions(ctx, app, true)
	if exitErr != nil {
		return nil, exitErr
	}
	c, err := rpcclient.New(opts)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	return c, nil
}

func clientOptions(ctx *cli.Context, app config.ApplicationConfiguration, needKey bool) (rpcclient.Options, cli.ExitCoder) {
	log, _, err := HandleLoggingParams(ctx.Bool("debug"), app)
	if err != nil {
		return rpcclient.Options{}, cli.NewExitError(err, 1)
	}
	opts := rpcclient.Options{
		ChainID:               app.ChainID,
		DialTimeout:           app.DialTimeout,
		RequestTimeout:        app.RequestTimeout,
		MaxConnsPerHost:       app.MaxConnsPerHost,
		MaxConcurrentRequests: app.MaxConcurrentRequests,
		BlockCacheSize:        app.BlockCacheSize,
		Logger:                log,
	}
	if len(app.PrivateKey) != 0 {
		opts.PrivateKey, err = keys.NewPrivateKeyFromHex(app.PrivateKey)
		if err != nil {
			return rpcclient.Options{}, cli.NewExitError(fmt.Errorf("bad private key in configuration: %w", err), 1)
		}
	} else if needKey {
		opts.PrivateKey, err = ReadPrivateKey()
		if err != nil {
			return rpcclient.Options{}, cli.NewExitError(err, 1)
		}
	}
	return opts, nil
}

// ReadPrivateKey asks the user for a hex-encoded private key.
func ReadPrivateKey() (*keys.PrivateKey, error) {
	rawKey, err := input.ReadPassword("Enter private key > ")
	if err != nil {
		return nil, fmt.Errorf("error reading private key: %w", err)
	}
	key, err := keys.NewPrivateKeyFromHex(strings.TrimSpace(rawKey))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// HandleLoggingParams reads logging parameters.
// If a user selected debug level -- function enables it.
// If logPath is configured -- function creates a dir and a file for logging.
func HandleLoggingParams(debug bool, cfg config.ApplicationConfiguration) (*zap.Logger, *zap.AtomicLevel, error) {
	var (
		level = zapcore.InfoLevel
		err   error
	)
	if len(cfg.LogLevel) > 0 {
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if logPath := cfg.LogPath; logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("could not create dir for logger: %w", err)
		}
		cc.OutputPaths = []string{logPath}
	}

	log, err := cc.Build()
	return log, &cc.Level, err
}

package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/citahub/cita-go/pkg/citarpc"
	"github.com/citahub/cita-go/pkg/core/transaction"
	"github.com/citahub/cita-go/pkg/crypto/keys"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	defaultDialTimeout    = 4 * time.Second
	defaultRequestTimeout = 4 * time.Second
	defaultBlockCacheSize = 128
)

var (
	// ErrNoChainID is returned on an attempt to build a transaction without
	// a chain id configured or resolved.
	ErrNoChainID = errors.New("chain id is not set")
	// ErrNoPrivateKey is returned on an attempt to build a transaction
	// without a private key configured.
	ErrNoPrivateKey = errors.New("private key is not set")
)

// Client represents the middleman for executing JSON RPC calls to remote
// CITA nodes. It's not bound to a single node, every call gets the endpoint
// URL(s) to use. Client is thread-safe and can be used from multiple
// goroutines.
type Client struct {
	cli      *http.Client
	opts     Options
	log      *zap.Logger
	requestF func(ctx context.Context, url string, p citarpc.Params) (*citarpc.Response, error)

	cacheLock sync.RWMutex
	// chainID is either configured or resolved via metadata query.
	chainID    uint32
	chainIDSet bool

	// blocks caches blocks by hash, the hash to block relation never changes.
	blocks *lru.Cache

	latestReqID *atomic.Uint64
}

// Options defines options for the RPC client.
// All values are optional. If any duration is not specified,
// a default of 4 seconds will be used.
type Options struct {
	// ChainID is the network identifier embedded into transactions. If not
	// set, it can be resolved with ResolveChainID.
	ChainID *uint32
	// PrivateKey is used to sign transactions.
	PrivateKey *keys.PrivateKey

	DialTimeout    time.Duration
	RequestTimeout time.Duration
	// Limit total number of connections per host. No limit by default.
	MaxConnsPerHost int
	// MaxConcurrentRequests limits the number of requests of a single
	// dispatch being in flight simultaneously. No limit by default.
	MaxConcurrentRequests int
	// BlockCacheSize is the number of blocks cached by GetBlockByHash,
	// 128 by default.
	BlockCacheSize int

	// Logger is used for debug output, nothing is logged if not set.
	Logger *zap.Logger
}

// New returns a new Client ready to use.
func New(opts Options) (*Client, error) {
	cl := new(Client)
	err := initClient(cl, opts)
	if err != nil {
		return nil, err
	}
	return cl, nil
}

func initClient(cl *Client, opts Options) error {
	if opts.MaxConcurrentRequests < 0 {
		return fmt.Errorf("negative MaxConcurrentRequests: %d", opts.MaxConcurrentRequests)
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.BlockCacheSize <= 0 {
		opts.BlockCacheSize = defaultBlockCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: opts.DialTimeout,
			}).DialContext,
			MaxConnsPerHost: opts.MaxConnsPerHost,
		},
		Timeout: opts.RequestTimeout,
	}

	cl.cli = httpClient
	cl.opts = opts
	cl.log = opts.Logger
	cl.blocks, _ = lru.New(opts.BlockCacheSize) // Never errors for positive size.
	cl.latestReqID = atomic.NewUint64(0)
	cl.requestF = cl.makeHTTPRequest
	if opts.ChainID != nil {
		cl.chainID, cl.chainIDSet = *opts.ChainID, true
	}
	return nil
}

// NextID advances the request id counter and returns the new value. The
// counter wraps to zero after math.MaxUint64.
func (c *Client) NextID() uint64 {
	return c.latestReqID.Inc()
}

// Close closes unused underlying networks connections.
func (c *Client) Close() {
	c.cli.CloseIdleConnections()
}

// ChainID returns the configured or previously resolved chain id.
func (c *Client) ChainID() (uint32, bool) {
	c.cacheLock.RLock()
	defer c.cacheLock.RUnlock()
	return c.chainID, c.chainIDSet
}

// PrivateKey returns the configured private key (if any).
func (c *Client) PrivateKey() *keys.PrivateKey {
	return c.opts.PrivateKey
}

// BuildTransaction creates a transaction for the given hex payload and
// recipient (empty one for contract creation) and signs it with the
// configured key. The transaction is valid for ValidUntilBlockOffset blocks
// after currentHeight.
func (c *Client) BuildTransaction(payloadHex string, to string, currentHeight uint64) (*transaction.UnverifiedTransaction, error) {
	chainID, ok := c.ChainID()
	if !ok {
		return nil, ErrNoChainID
	}
	if c.opts.PrivateKey == nil {
		return nil, ErrNoPrivateKey
	}
	return transaction.Build(payloadHex, to, currentHeight, chainID, c.opts.PrivateKey)
}

// GenerateTransaction is the same as BuildTransaction, but returns the
// hex-encoded signed transaction ready to be passed to SendTransaction.
func (c *Client) GenerateTransaction(payloadHex string, to string, currentHeight uint64) (string, error) {
	utx, err := c.BuildTransaction(payloadHex, to, currentHeight)
	if err != nil {
		return "", err
	}
	return utx.String(), nil
}

func (c *Client) makeHTTPRequest(ctx context.Context, url string, p citarpc.Params) (*citarpc.Response, error) {
	var (
		buf = new(bytes.Buffer)
		raw = new(citarpc.Response)
	)

	if err := json.NewEncoder(buf).Encode(p); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	// The node might send us a proper JSON anyway, so look there first and if
	// it parses, it has more relevant data than HTTP error code.
	err = json.Unmarshal(body, raw)
	if err != nil {
		if resp.StatusCode != http.StatusOK {
			err = fmt.Errorf("HTTP %d/%s", resp.StatusCode, http.StatusText(resp.StatusCode))
		} else {
			err = fmt.Errorf("JSON decoding: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/citahub/cita-go/cli/cmdargs"
	"github.com/citahub/cita-go/cli/flags"
	"github.com/citahub/cita-go/cli/options"
	"github.com/citahub/cita-go/pkg/citarpc"
	"github.com/citahub/cita-go/pkg/core/transaction"
	"github.com/citahub/cita-go/pkg/encoding/quantity"
	"github.com/citahub/cita-go/pkg/util"
	"github.com/urfave/cli"
)

// NewCommands returns 'query' command.
func NewCommands() []cli.Command {
	heightFlags := append([]cli.Flag{options.Height}, options.RPC...)
	blockFlags := append([]cli.Flag{
		cli.BoolFlag{
			Name:  "full, f",
			Usage: "include complete transactions",
		},
	}, options.RPC...)
	txFlags := append([]cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "decode transaction contents",
		},
	}, options.RPC...)
	logFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "from",
			Usage: "first block (height or tag)",
		},
		cli.StringFlag{
			Name:  "to",
			Usage: "last block (height or tag)",
		},
		cli.StringSliceFlag{
			Name:  "address",
			Usage: "contract address to get logs of (can be repeated)",
		},
		cli.StringSliceFlag{
			Name:  "topic",
			Usage: "topic to match at the corresponding position, empty one matches anything (can be repeated)",
		},
	}
	callFlags := append([]cli.Flag{
		flags.AddressFlag{
			Name:  "to, t",
			Usage: "contract address",
		},
		flags.AddressFlag{
			Name:  "from",
			Usage: "caller address",
		},
		cli.StringFlag{
			Name:  "data",
			Usage: "hex-encoded call data",
		},
	}, heightFlags...)
	return []cli.Command{{
		Name:  "query",
		Usage: "Query data from CITA nodes",
		Subcommands: []cli.Command{
			{
				Name:   "height",
				Usage:  "Get current block number",
				Action: queryHeight,
				Flags:  options.RPC,
			},
			{
				Name:   "peers",
				Usage:  "Get the number of peers of the node",
				Action: queryPeers,
				Flags:  options.RPC,
			},
			{
				Name:   "metadata",
				Usage:  "Get chain metadata",
				Action: queryMetadata,
				Flags:  heightFlags,
			},
			{
				Name:      "block",
				Usage:     "Get block by hash or height",
				UsageText: "cita-go query block [-r endpoint] [--full] <hash|height|latest>",
				Action:    queryBlock,
				Flags:     blockFlags,
			},
			{
				Name:      "tx",
				Usage:     "Get transaction by hash",
				UsageText: "cita-go query tx [-r endpoint] [--verbose] <hash>",
				Action:    queryTx,
				Flags:     txFlags,
			},
			{
				Name:      "receipt",
				Usage:     "Get transaction receipt",
				UsageText: "cita-go query receipt [-r endpoint] <hash>",
				Action:    queryReceipt,
				Flags:     options.RPC,
			},
			{
				Name:      "proof",
				Usage:     "Get transaction proof",
				UsageText: "cita-go query proof [-r endpoint] <hash>",
				Action:    queryProof,
				Flags:     options.RPC,
			},
			{
				Name:   "logs",
				Usage:  "Get logs matching the filter",
				Action: queryLogs,
				Flags:  append(logFlags, options.RPC...),
			},
			{
				Name:      "call",
				Usage:     "Call contract method without a transaction",
				UsageText: "cita-go query call [-r endpoint] --to <address> [--from <address>] [--data <hex>] [--height <height>]",
				Action:    queryCall,
				Flags:     callFlags,
			},
			{
				Name:      "balance",
				Usage:     "Get account balance",
				UsageText: "cita-go query balance [-r endpoint] [--height <height>] <address>",
				Action:    queryBalance,
				Flags:     heightFlags,
			},
			{
				Name:      "nonce",
				Usage:     "Get the number of transactions sent from the account",
				UsageText: "cita-go query nonce [-r endpoint] [--height <height>] <address>",
				Action:    queryNonce,
				Flags:     heightFlags,
			},
			{
				Name:      "code",
				Usage:     "Get contract code",
				UsageText: "cita-go query code [-r endpoint] [--height <height>] <address>",
				Action:    queryCode,
				Flags:     heightFlags,
			},
			{
				Name:      "abi",
				Usage:     "Get contract ABI",
				UsageText: "cita-go query abi [-r endpoint] [--height <height>] <address>",
				Action:    queryAbi,
				Flags:     heightFlags,
			},
			{
				Name:  "filter",
				Usage: "Manage filters installed on the node",
				Subcommands: []cli.Command{
					{
						Name:   "new",
						Usage:  "Install a log filter",
						Action: filterNew,
						Flags:  append(logFlags, options.RPC...),
					},
					{
						Name:   "new-block",
						Usage:  "Install a new block filter",
						Action: filterNewBlock,
						Flags:  options.RPC,
					},
					{
						Name:      "changes",
						Usage:     "Get filter changes since the last poll",
						UsageText: "cita-go query filter changes [-r endpoint] <id>",
						Action:    filterChanges,
						Flags:     options.RPC,
					},
					{
						Name:      "logs",
						Usage:     "Get all logs matching the filter",
						UsageText: "cita-go query filter logs [-r endpoint] <id>",
						Action:    filterLogs,
						Flags:     options.RPC,
					},
					{
						Name:      "uninstall",
						Usage:     "Remove the filter",
						UsageText: "cita-go query filter uninstall [-r endpoint] <id>",
						Action:    filterUninstall,
						Flags:     options.RPC,
					},
				},
			},
		},
	}}
}

// queryFunc is a query to run against the main node.
type queryFunc func(gctx context.Context, ctx *cli.Context, node *options.Node) (any, error)

// run executes the query and prints its result as JSON.
func run(ctx *cli.Context, q queryFunc) error {
	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()

	node, exitErr := options.GetRPCClient(ctx)
	if exitErr != nil {
		return exitErr
	}
	defer node.Close()

	res, err := q(gctx, ctx, node)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, string(b))
	return nil
}

func queryHeight(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	return run(ctx, func(gctx context.Context, _ *cli.Context, n *options.Node) (any, error) {
		return n.GetBlockNumber(gctx, n.Endpoint())
	})
}

func queryPeers(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	return run(ctx, func(gctx context.Context, _ *cli.Context, n *options.Node) (any, error) {
		return n.GetNetPeerCount(gctx, n.Endpoint())
	})
}

func queryMetadata(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	height, err := options.GetHeight(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return run(ctx, func(gctx context.Context, _ *cli.Context, n *options.Node) (any, error) {
		return n.GetMetaData(gctx, n.Endpoint(), height)
	})
}

func queryBlock(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if len(arg) == 0 {
		return cli.NewExitError("block hash or height is missing", 1)
	}
	full := ctx.Bool("full")
	if len(util.RemoveHexPrefix(arg)) == 2*util.Uint256Size {
		hash, err := util.Uint256DecodeString(arg)
		if err != nil {
			return cli.NewExitError(fmt.Errorf("invalid block hash: %w", err), 1)
		}
		return run(ctx, func(gctx context.Context, _ *cli.Context, n *options.Node) (any, error) {
			return n.GetBlockByHash(gctx, n.Endpoint(), hash, full)
		})
	}
	var height *uint64
	if arg != quantity.Latest {
		h, err := quantity.DecodeUint64(arg)
		if err != nil {
			return cli.NewExitError(fmt.Errorf("invalid block height: %w", err), 1)
		}
		height = &h
	}
	return run(ctx, func(gctx context.Context, _ *cli.Context, n *options.Node) (any, error) {
		return n.GetBlockByNumber(gctx, n.Endpoint(), height, full)
	})
}

// txInfo is a transaction with its decoded contents.
type txInfo struct {
	Hash        util.Uint256             `json:"hash"`
	BlockNumber quantity.Uint64          `json:"blockNumber"`
	BlockHash   util.Uint256             `json:"blockHash"`
	Index       quantity.Uint64          `json:"index"`
	Sender      *util.Uint160            `json:"sender,omitempty"`
	Transaction *transaction.Transaction `json:"transaction"`
}

func queryTx(ctx *cli.Context) error {
	hash, err := getHashArg(ctx)
	if err != nil {
		return err
	}
	return run(ctx, func(gctx context.Context, ctx *cli.Context, n *options.Node) (any, error) {
		tx, err := n.GetTransaction(gctx, n.Endpoint(), hash)
		if err != nil || !ctx.Bool("verbose") {
			return tx, err
		}
		utx, err := transaction.DecodeUnverified(tx.Content)
		if err != nil {
			return nil, err
		}
		info := &txInfo{
			Hash:        tx.Hash,
			BlockNumber: tx.BlockNumber,
			BlockHash:   tx.BlockHash,
			Index:       tx.Index,
			Transaction: utx.Transaction,
		}
		if sender, err := utx.Sender(); err == nil {
			info.Sender = &sender
		}
		return info, nil
	})
}

func queryReceipt(ctx *cli.Context) error {
	hash, err := getHashArg(ctx)
	if err != nil {
		return err
	}
	return run(ctx, func(gctx context.Context, _ *cli.Context, n *options.Node) (any, error) {
		return n.GetTransactionReceipt(gctx, n.Endpoint(), hash)
	})
}

func queryProof(ctx *cli.Context) error {
	hash, err := getHashArg(ctx)
	if err != nil {
		return err
	}
	return run(ctx, func(gctx context.Context, _ *cli.Context, n *options.Node) (any, error) {
		proof, err := n.GetTransactionProof(gctx, n.Endpoint(), hash)
		return util.HexBytes(proof), err
	})
}

func queryLogs(ctx *cli.Context) error {
	filter, err := getLogFilter(ctx)
	if err != nil {
		return err
	}
	return run(ctx, func(gctx context.Context, _ *cli.Context, n *options.Node) (any, error) {
		return n.GetLogs(gctx, n.Endpoint(), filter)
	})
}

func queryCall(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	to := ctx.Generic("to").(*flags.Address)
	if !to.IsSet {
		return cli.NewExitError("contract address is missing, use --to", 1)
	}
	data, err := util.DecodeHexString(ctx.String("data"))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid call data: %w", err), 1)
	}
	height, err := options.GetHeight(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	req := citarpc.CallRequest{To: to.Uint160(), Data: data}
	if from := ctx.Generic("from").(*flags.Address); from.IsSet {
		addr := from.Uint160()
		req.From = &addr
	}
	return run(ctx, func(gctx context.Context, _ *cli.Context, n *options.Node) (any, error) {
		res, err := n.Call(gctx, n.Endpoint(), req, height)
		return util.HexBytes(res), err
	})
}

// addressQuery is a query for the account or contract state at some height.
type addressQuery func(gctx context.Context, n *options.Node, addr util.Uint160, height *uint64) (any, error)

func runAddressQuery(ctx *cli.Context, q addressQuery) error {
	args := ctx.Args()
	if len(args) != 1 {
		return cli.NewExitError("address is missing", 1)
	}
	addr, err := util.Uint160DecodeString(args[0])
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid address: %w", err), 1)
	}
	height, err := options.GetHeight(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return run(ctx, func(gctx context.Context, _ *cli.Context, n *options.Node) (any, error) {
		return q(gctx, n, addr, height)
	})
}

func queryBalance(ctx *cli.Context) error {
	return runAddressQuery(ctx, func(gctx context.Context, n *options.Node, addr util.Uint160, height *uint64) (any, error) {
		b, err := n.GetBalance(gctx, n.Endpoint(), addr, height)
		if err != nil {
			return nil, err
		}
		return b.ToBig().String(), nil
	})
}

func queryNonce(ctx *cli.Context) error {
	return runAddressQuery(ctx, func(gctx context.Context, n *options.Node, addr util.Uint160, height *uint64) (any, error) {
		return n.GetTransactionCount(gctx, n.Endpoint(), addr, height)
	})
}

func queryCode(ctx *cli.Context) error {
	return runAddressQuery(ctx, func(gctx context.Context, n *options.Node, addr util.Uint160, height *uint64) (any, error) {
		code, err := n.GetCode(gctx, n.Endpoint(), addr, height)
		return util.HexBytes(code), err
	})
}

func queryAbi(ctx *cli.Context) error {
	return runAddressQuery(ctx, func(gctx context.Context, n *options.Node, addr util.Uint160, height *uint64) (any, error) {
		abi, err := n.GetAbi(gctx, n.Endpoint(), addr, height)
		if err != nil {
			return nil, err
		}
		if json.Valid(abi) {
			return json.RawMessage(abi), nil
		}
		return string(abi), nil
	})
}

func filterNew(ctx *cli.Context) error {
	filter, err := getLogFilter(ctx)
	if err != nil {
		return err
	}
	return run(ctx, func(gctx context.Context, _ *cli.Context, n *options.Node) (any, error) {
		return n.NewFilter(gctx, n.Endpoint(), filter)
	})
}

func filterNewBlock(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	return run(ctx, func(gctx context.Context, _ *cli.Context, n *options.Node) (any, error) {
		return n.NewBlockFilter(gctx, n.Endpoint())
	})
}

func filterChanges(ctx *cli.Context) error {
	id, err := getFilterID(ctx)
	if err != nil {
		return err
	}
	return run(ctx, func(gctx context.Context, _ *cli.Context, n *options.Node) (any, error) {
		return n.GetFilterChanges(gctx, n.Endpoint(), id)
	})
}

func filterLogs(ctx *cli.Context) error {
	id, err := getFilterID(ctx)
	if err != nil {
		return err
	}
	return run(ctx, func(gctx context.Context, _ *cli.Context, n *options.Node) (any, error) {
		return n.GetFilterLogs(gctx, n.Endpoint(), id)
	})
}

func filterUninstall(ctx *cli.Context) error {
	id, err := getFilterID(ctx)
	if err != nil {
		return err
	}
	return run(ctx, func(gctx context.Context, _ *cli.Context, n *options.Node) (any, error) {
		return n.UninstallFilter(gctx, n.Endpoint(), id)
	})
}

func getHashArg(ctx *cli.Context) (util.Uint256, error) {
	args := ctx.Args()
	if len(args) != 1 {
		return util.Uint256{}, cli.NewExitError("transaction hash is missing", 1)
	}
	hash, err := util.Uint256DecodeString(args[0])
	if err != nil {
		return util.Uint256{}, cli.NewExitError(fmt.Sprintf("invalid transaction hash: %s", args[0]), 1)
	}
	return hash, nil
}

func getFilterID(ctx *cli.Context) (uint64, error) {
	args := ctx.Args()
	if len(args) != 1 {
		return 0, cli.NewExitError("filter id is missing", 1)
	}
	id, err := quantity.DecodeUint64(args[0])
	if err != nil {
		return 0, cli.NewExitError(fmt.Errorf("invalid filter id: %w", err), 1)
	}
	return id, nil
}

func getLogFilter(ctx *cli.Context) (citarpc.LogFilter, error) {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return citarpc.LogFilter{}, err
	}
	var (
		filter = citarpc.LogFilter{
			FromBlock: ctx.String("from"),
			ToBlock:   ctx.String("to"),
		}
		err error
	)
	for _, bound := range []*string{&filter.FromBlock, &filter.ToBlock} {
		*bound, err = normalizeBlockTag(*bound)
		if err != nil {
			return citarpc.LogFilter{}, cli.NewExitError(err, 1)
		}
	}
	for _, s := range ctx.StringSlice("address") {
		addr, err := util.Uint160DecodeString(s)
		if err != nil {
			return citarpc.LogFilter{}, cli.NewExitError(fmt.Errorf("invalid address %q: %w", s, err), 1)
		}
		filter.Address = append(filter.Address, addr)
	}
	for _, s := range ctx.StringSlice("topic") {
		if len(s) == 0 {
			filter.Topics = append(filter.Topics, nil)
			continue
		}
		var alternatives []util.Uint256
		for _, t := range strings.Split(s, ",") {
			topic, err := util.Uint256DecodeString(t)
			if err != nil {
				return citarpc.LogFilter{}, cli.NewExitError(fmt.Errorf("invalid topic %q: %w", t, err), 1)
			}
			alternatives = append(alternatives, topic)
		}
		filter.Topics = append(filter.Topics, alternatives)
	}
	return filter, nil
}

// normalizeBlockTag converts decimal heights into hex quantities, tags and
// empty strings are kept as is.
func normalizeBlockTag(s string) (string, error) {
	switch s {
	case "", quantity.Latest, "earliest", "pending":
		return s, nil
	}
	h, err := quantity.DecodeUint64(s)
	if err != nil {
		return "", fmt.Errorf("invalid block %q: %w", s, err)
	}
	return quantity.EncodeUint64(h), nil
}

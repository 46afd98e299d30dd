/*
Package txcmd contains commands for building, signing and sending CITA
transactions.
*/
package txcmd

import (
	"encoding/json"
	"fmt"

	"github.com/citahub/cita-go/cli/flags"
	"github.com/citahub/cita-go/cli/options"
	"github.com/citahub/cita-go/pkg/core/transaction"
	"github.com/citahub/cita-go/pkg/rpcclient"
	"github.com/citahub/cita-go/pkg/util"
	"github.com/urfave/cli"
)

var toFlag = flags.AddressFlag{
	Name:  "to, t",
	Usage: "recipient address",
}

// NewCommands returns 'tx' command.
func NewCommands() []cli.Command {
	sendFlags := append([]cli.Flag{toFlag}, options.RPC...)
	deployFlags := append([]cli.Flag{}, options.RPC...)
	generateFlags := append([]cli.Flag{
		toFlag,
		options.ChainID,
		cli.Uint64Flag{
			Name:  "height",
			Usage: "current block height, the transaction is valid for some blocks after it",
		},
	}, options.RPC...)
	return []cli.Command{{
		Name:  "tx",
		Usage: "Build, sign and send transactions",
		Subcommands: []cli.Command{
			{
				Name:      "send",
				Usage:     "Sign and send a transaction with the given payload",
				UsageText: "cita-go tx send [-r endpoint] [-c config] --to <address> <payload>",
				Description: `Builds a transaction carrying the hex-encoded payload (usually
   contract call data), signs it with the configured key (it's requested
   interactively if there is none) and sends it to the first node. Chain id
   and current height are requested from the node if not configured.`,
				Action: sendTx,
				Flags:  flags.MarkRequired(sendFlags, "to"),
			},
			{
				Name:      "deploy",
				Usage:     "Sign and send a contract creation transaction",
				UsageText: "cita-go tx deploy [-r endpoint] [-c config] <code>",
				Action:    deployTx,
				Flags:     deployFlags,
			},
			{
				Name:      "generate",
				Usage:     "Sign a transaction and print it without sending",
				UsageText: "cita-go tx generate [-c config] [--chain-id id] --height <height> [--to <address>] <payload>",
				Description: `Prints the hex-encoded signed transaction ready to be sent with
   cita_sendTransaction. No node is needed if the chain id is known from
   the flag or configuration, otherwise it's requested from the first node.
   Omitting --to creates a contract.`,
				Action: generateTx,
				Flags:  flags.MarkRequired(generateFlags, "height"),
			},
			{
				Name:      "decode",
				Usage:     "Decode a signed transaction",
				UsageText: "cita-go tx decode <hex>",
				Action:    decodeTx,
			},
		},
	}}
}

func getPayload(ctx *cli.Context) (string, error) {
	args := ctx.Args()
	if len(args) != 1 {
		return "", cli.NewExitError("payload is missing", 1)
	}
	if _, err := util.DecodeHexString(args[0]); err != nil {
		return "", cli.NewExitError(fmt.Errorf("%w: %v", transaction.ErrInvalidPayload, err), 1)
	}
	return args[0], nil
}

func getRecipient(ctx *cli.Context) string {
	to := ctx.Generic("to").(*flags.Address)
	if !to.IsSet {
		return ""
	}
	return to.Uint160().String()
}

func sendTx(ctx *cli.Context) error {
	return transferData(ctx, getRecipient(ctx))
}

func deployTx(ctx *cli.Context) error {
	return transferData(ctx, "")
}

func transferData(ctx *cli.Context, to string) error {
	payload, err := getPayload(ctx)
	if err != nil {
		return err
	}
	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()

	node, exitErr := options.GetRPCClientWithKey(ctx)
	if exitErr != nil {
		return exitErr
	}
	defer node.Close()

	res, err := node.TransferData(gctx, node.Endpoint(), payload, to)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return printJSON(ctx, res)
}

func generateTx(ctx *cli.Context) error {
	payload, err := getPayload(ctx)
	if err != nil {
		return err
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	var c *rpcclient.Client
	if cfg.ApplicationConfiguration.ChainID != nil {
		var exitErr cli.ExitCoder
		c, exitErr = options.GetOfflineClient(ctx)
		if exitErr != nil {
			return exitErr
		}
	} else {
		gctx, cancel := options.GetTimeoutContext(ctx)
		defer cancel()

		node, exitErr := options.GetRPCClientWithKey(ctx)
		if exitErr != nil {
			return exitErr
		}
		defer node.Close()
		if _, err := node.ResolveChainID(gctx, node.Endpoint()); err != nil {
			return cli.NewExitError(fmt.Errorf("failed to get chain id: %w", err), 1)
		}
		c = node.Client
	}

	tx, err := c.GenerateTransaction(payload, getRecipient(ctx), ctx.Uint64("height"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, tx)
	return nil
}

// decodedTx is a signed transaction with the data derived from it.
type decodedTx struct {
	Hash        util.Uint256             `json:"hash"`
	Sender      *util.Uint160            `json:"sender,omitempty"`
	Signature   util.HexBytes            `json:"signature"`
	Crypto      transaction.Crypto       `json:"crypto"`
	Transaction *transaction.Transaction `json:"transaction"`
}

func decodeTx(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 1 {
		return cli.NewExitError("transaction is missing", 1)
	}
	utx, err := transaction.DecodeUnverifiedString(args[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	res := decodedTx{
		Hash:        utx.Hash(),
		Signature:   utx.Signature,
		Crypto:      utx.Crypto,
		Transaction: utx.Transaction,
	}
	if sender, err := utx.Sender(); err == nil {
		res.Sender = &sender
	}
	return printJSON(ctx, res)
}

func printJSON(ctx *cli.Context, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, string(b))
	return nil
}

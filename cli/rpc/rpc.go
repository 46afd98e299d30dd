package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/citahub/cita-go/cli/cmdargs"
	"github.com/citahub/cita-go/cli/options"
	"github.com/citahub/cita-go/pkg/citarpc"
	ojson "github.com/nspcc-dev/go-ordered-json"
	"github.com/urfave/cli"
)

// NewCommands returns 'rpc' command.
func NewCommands() []cli.Command {
	rpcFlags := append([]cli.Flag{
		cli.BoolFlag{
			Name:  "all, a",
			Usage: "send the request to all configured nodes",
		},
		cli.BoolFlag{
			Name:  "raw",
			Usage: "print complete JSON-RPC responses",
		},
	}, options.RPC...)
	return []cli.Command{{
		Name:      "rpc",
		Usage:     "Send arbitrary JSON-RPC request",
		UsageText: "cita-go rpc [-r endpoint]... [--all] [--raw] <method> [param...]",
		Description: `Sends a request with the given method and parameters to the first node
   (or to all nodes with --all) and prints the results in the node order.
   Results keep the field order used by the node.

` + cmdargs.ParamsParsingDoc,
		Action: call,
		Flags:  rpcFlags,
	}}
}

func call(ctx *cli.Context) error {
	args := ctx.Args()
	if !args.Present() {
		return cli.NewExitError("method is missing", 1)
	}

	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()

	c, exitErr := options.GetRPCClient(ctx)
	if exitErr != nil {
		return exitErr
	}
	defer c.Close()

	urls := c.Endpoints
	if !ctx.Bool("all") {
		urls = urls[:1]
	}
	if err := Call(gctx, ctx.App.Writer, c, urls, args.First(), args.Tail(), ctx.Bool("raw")); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

// ErrSomeFailed is returned by Call when some node replied with an error.
var ErrSomeFailed = errors.New("some requests failed")

// Call sends the request with the given method and CLI-formatted parameters
// to all urls and prints the results to w in the order of urls. With raw set
// complete responses are printed and node errors are not treated as failures.
func Call(ctx context.Context, w io.Writer, c *options.Node, urls []string, method string, args []string, raw bool) error {
	params, err := cmdargs.ParseParams(args)
	if err != nil {
		return err
	}
	resps, err := c.SendRequest(ctx, urls, citarpc.NewRequest(method, params...))
	if err != nil {
		return err
	}
	var failed bool
	for i, resp := range resps {
		if len(resps) > 1 {
			fmt.Fprintf(w, "%s:\n", urls[i])
		}
		if resp.Error != nil && !raw {
			failed = true
			fmt.Fprintf(w, "error: %s\n", resp.Error)
			continue
		}
		out := resp.Result
		if raw {
			out, err = json.Marshal(resp)
			if err != nil {
				return err
			}
		}
		if err := printOrdered(w, out); err != nil {
			return err
		}
	}
	if failed {
		return ErrSomeFailed
	}
	return nil
}

// printOrdered pretty-prints JSON keeping the order of object fields.
func printOrdered(w io.Writer, data []byte) error {
	d := ojson.NewDecoder(bytes.NewReader(data))
	d.UseOrderedObject()
	d.UseNumber()
	var v any
	if err := d.Decode(&v); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	b, err := ojson.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

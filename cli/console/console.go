/*
Package console implements an interactive shell sending requests to the
configured CITA nodes.
*/
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/citahub/cita-go/cli/cmdargs"
	"github.com/citahub/cita-go/cli/options"
	"github.com/citahub/cita-go/cli/rpc"
	"github.com/kballard/go-shellquote"
	"github.com/urfave/cli"
)

const (
	nodeKey             = "node"
	timeoutKey          = "timeout"
	exitFuncKey         = "exitFunc"
	readlineInstanceKey = "readlineKey"
)

var commands = []cli.Command{
	{
		Name:        "exit",
		Usage:       "Exit the console",
		Description: "Exit the console",
		Action:      handleExit,
	},
	{
		Name:      "call",
		Usage:     "Send arbitrary JSON-RPC request",
		UsageText: "call [--all] [--raw] <method> [param...]",
		Description: `Sends a request to the main node (or to all nodes with --all) and
prints the results in the node order.

` + cmdargs.ParamsParsingDoc,
		Action: handleCall,
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "all, a",
				Usage: "send the request to all configured nodes",
			},
			cli.BoolFlag{
				Name:  "raw",
				Usage: "print complete JSON-RPC responses",
			},
		},
	},
	{
		Name:        "height",
		Usage:       "Show current block number of the main node",
		Description: "Show current block number of the main node",
		Action:      handleHeight,
	},
	{
		Name:        "chain-id",
		Usage:       "Show chain id (it's requested once and cached)",
		Description: "Show chain id (it's requested once and cached)",
		Action:      handleChainID,
	},
	{
		Name:        "nodes",
		Usage:       "List configured nodes",
		Description: "List configured nodes, the first one is the main node used for single-node requests",
		Action:      handleNodes,
	},
}

var completer *readline.PrefixCompleter

func init() {
	var pcItems []readline.PrefixCompleterInterface
	for _, c := range commands {
		if !c.Hidden {
			var flagsItems []readline.PrefixCompleterInterface
			for _, f := range c.Flags {
				names := strings.SplitN(f.GetName(), ", ", 2) // only long name will be offered
				flagsItems = append(flagsItems, readline.PcItem("--"+names[0]))
			}
			pcItems = append(pcItems, readline.PcItem(c.Name, flagsItems...))
		}
	}
	completer = readline.NewPrefixCompleter(pcItems...)
}

// NewCommands returns 'console' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:      "console",
		Usage:     "Start an interactive console connected to CITA nodes",
		UsageText: "cita-go console [-r endpoint]... [-c config] [-s timeout]",
		Description: `Reads commands from the terminal and runs them against the configured
   nodes. Timeout applies to every single command. Type 'help' for the list
   of commands.`,
		Action: startConsole,
		Flags:  options.RPC,
	}}
}

func startConsole(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	node, exitErr := options.GetRPCClient(ctx)
	if exitErr != nil {
		return exitErr
	}
	defer node.Close()

	c, err := NewWithConfig(node, ctx.Duration("timeout"), func(code int) {
		node.Close()
		os.Exit(code)
	}, &readline.Config{Prompt: "\033[32mCITA >\033[0m "})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := c.Run(); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

// Console is an interactive shell bound to a set of nodes.
type Console struct {
	shell *cli.App
}

// NewWithConfig returns a new Console instance using the given node, per
// command timeout, exit function and readline configuration.
func NewWithConfig(node *options.Node, timeout time.Duration, onExit func(int), c *readline.Config) (*Console, error) {
	if c.AutoComplete == nil {
		// Autocomplete commands/flags on TAB.
		c.AutoComplete = completer
	}
	l, err := readline.NewEx(c)
	if err != nil {
		return nil, fmt.Errorf("failed to create readline instance: %w", err)
	}
	if timeout == 0 {
		timeout = options.DefaultTimeout
	}
	ctl := cli.NewApp()
	ctl.Name = "CITA console"

	// Note: need to set empty `ctl.HelpName` and `ctl.UsageText`, otherwise
	// `filepath.Base(os.Args[0])` will be used which is `cita-go`.
	ctl.HelpName = ""
	ctl.UsageText = ""

	ctl.Writer = l.Stdout()
	ctl.ErrWriter = l.Stderr()
	ctl.Usage = "Interactive console for CITA nodes"

	// Override default error handler in order not to exit on error.
	ctl.ExitErrHandler = func(context *cli.Context, err error) {}

	ctl.Commands = commands
	ctl.Metadata = map[string]any{
		nodeKey:             node,
		timeoutKey:          timeout,
		exitFuncKey:         onExit,
		readlineInstanceKey: l,
	}
	return &Console{shell: ctl}, nil
}

func getNodeFromContext(app *cli.App) *options.Node {
	return app.Metadata[nodeKey].(*options.Node)
}

func getExitFuncFromContext(app *cli.App) func(int) {
	return app.Metadata[exitFuncKey].(func(int))
}

func getReadlineInstanceFromContext(app *cli.App) *readline.Instance {
	return app.Metadata[readlineInstanceKey].(*readline.Instance)
}

func getTimeoutContext(app *cli.App) (context.Context, func()) {
	return context.WithTimeout(context.Background(), app.Metadata[timeoutKey].(time.Duration))
}

// Run waits for user input from Stdin and executes the passed command.
func (c *Console) Run() error {
	l := getReadlineInstanceFromContext(c.shell)
	for {
		line, err := l.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil // OK, stop execution.
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err) // Critical error, stop execution.
		}

		args, err := shellquote.Split(line)
		if err != nil {
			writeErr(c.shell.ErrWriter, fmt.Errorf("failed to parse arguments: %w", err))
			continue // Not a critical error, continue execution.
		}
		if len(args) == 0 {
			continue
		}

		err = c.shell.Run(append([]string{"console"}, args...))
		if err != nil {
			writeErr(c.shell.ErrWriter, err) // Various command/flags parsing errors and execution errors.
		}
	}
}

func handleExit(c *cli.Context) error {
	l := getReadlineInstanceFromContext(c.App)
	_ = l.Close()
	exit := getExitFuncFromContext(c.App)
	fmt.Fprintln(c.App.Writer, "Bye!")
	exit(0)
	return nil
}

func handleCall(c *cli.Context) error {
	args := c.Args()
	if !args.Present() {
		return errors.New("method is missing")
	}
	node := getNodeFromContext(c.App)
	urls := node.Endpoints
	if !c.Bool("all") {
		urls = urls[:1]
	}
	ctx, cancel := getTimeoutContext(c.App)
	defer cancel()
	return rpc.Call(ctx, c.App.Writer, node, urls, args.First(), args.Tail(), c.Bool("raw"))
}

func handleHeight(c *cli.Context) error {
	if err := cmdargs.EnsureNone(c); err != nil {
		return err
	}
	node := getNodeFromContext(c.App)
	ctx, cancel := getTimeoutContext(c.App)
	defer cancel()
	h, err := node.GetBlockNumber(ctx, node.Endpoint())
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, h)
	return nil
}

func handleChainID(c *cli.Context) error {
	if err := cmdargs.EnsureNone(c); err != nil {
		return err
	}
	node := getNodeFromContext(c.App)
	ctx, cancel := getTimeoutContext(c.App)
	defer cancel()
	id, err := node.ResolveChainID(ctx, node.Endpoint())
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, id)
	return nil
}

func handleNodes(c *cli.Context) error {
	if err := cmdargs.EnsureNone(c); err != nil {
		return err
	}
	for i, u := range getNodeFromContext(c.App).Endpoints {
		mark := ""
		if i == 0 {
			mark = " (main)"
		}
		fmt.Fprintf(c.App.Writer, "%d: %s%s\n", i, u, mark)
	}
	return nil
}

func writeErr(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)
}

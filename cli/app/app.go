package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/citahub/cita-go/cli/console"
	"github.com/citahub/cita-go/cli/key"
	"github.com/citahub/cita-go/cli/query"
	"github.com/citahub/cita-go/cli/rpc"
	"github.com/citahub/cita-go/cli/txcmd"
	"github.com/citahub/cita-go/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "cita-go\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a cita-go instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "cita-go"
	ctl.Version = config.Version
	ctl.Usage = "Go client for CITA nodes"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, rpc.NewCommands()...)
	ctl.Commands = append(ctl.Commands, query.NewCommands()...)
	ctl.Commands = append(ctl.Commands, txcmd.NewCommands()...)
	ctl.Commands = append(ctl.Commands, key.NewCommands()...)
	ctl.Commands = append(ctl.Commands, console.NewCommands()...)
	return ctl
}

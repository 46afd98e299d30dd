package flags

import (
	"flag"
	"io"
	"testing"

	"github.com/citahub/cita-go/pkg/util"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

const testAddress = "0x2c7536e3605d9c16a7a3d7b1898e529396a65c23"

func TestAddress_String(t *testing.T) {
	value := util.Uint160{1, 2, 3}
	addr := Address{
		IsSet: true,
		Value: value,
	}

	require.Equal(t, value.String(), addr.String())
}

func TestAddress_Set(t *testing.T) {
	addr := Address{}

	t.Run("bad address", func(t *testing.T) {
		require.Error(t, addr.Set("not an address"))
		require.False(t, addr.IsSet)
	})

	t.Run("positive", func(t *testing.T) {
		require.NoError(t, addr.Set(testAddress))
		require.Equal(t, true, addr.IsSet)
		require.Equal(t, testAddress, addr.Value.String())
	})
}

func TestAddress_Uint160(t *testing.T) {
	value := util.Uint160{4, 5, 6}
	addr := Address{}

	t.Run("not set", func(t *testing.T) {
		require.Panics(t, func() { addr.Uint160() })
	})

	t.Run("success", func(t *testing.T) {
		addr.IsSet = true
		addr.Value = value
		require.Equal(t, value, addr.Uint160())
	})
}

func TestAddressFlag_String(t *testing.T) {
	flag := AddressFlag{
		Name:  "myFlag, m",
		Usage: "Address to use",
	}

	require.Equal(t, "--myFlag value, -m value\tAddress to use", flag.String())
	require.Equal(t, "myFlag, m", flag.GetName())
}

func TestAddress_Apply(t *testing.T) {
	f := AddressFlag{Name: "address, a"}
	set := flag.NewFlagSet("flagSet", flag.ContinueOnError)
	set.SetOutput(io.Discard)
	f.Apply(set)

	require.NoError(t, set.Parse([]string{"-a", testAddress}))
	ctx := cli.NewContext(cli.NewApp(), set, nil)
	addr := ctx.Generic("address").(*Address)
	require.True(t, addr.IsSet)
	require.Equal(t, testAddress, addr.Uint160().String())
}

func TestMarkRequired(t *testing.T) {
	fs := MarkRequired([]cli.Flag{
		cli.StringFlag{Name: "to"},
		cli.Uint64Flag{Name: "height"},
		cli.BoolFlag{Name: "full"},
	}, "height", "full")
	require.False(t, fs[0].(cli.StringFlag).Required)
	require.True(t, fs[1].(cli.Uint64Flag).Required)
	require.True(t, fs[2].(cli.BoolFlag).Required)
}

func TestMarkRequiredAliases(t *testing.T) {
	fs := MarkRequired([]cli.Flag{
		AddressFlag{Name: "to, t"},
		cli.StringSliceFlag{Name: "rpc-endpoint, r"},
		cli.UintFlag{Name: "chain-id"},
	}, "t", "rpc-endpoint")
	require.True(t, fs[0].(AddressFlag).IsRequired())
	require.True(t, fs[1].(cli.StringSliceFlag).Required)
	require.False(t, fs[2].(cli.UintFlag).Required)
}

func TestRequiredAddressFlag(t *testing.T) {
	app := cli.NewApp()
	app.Writer = io.Discard
	app.ErrWriter = io.Discard
	app.Flags = MarkRequired([]cli.Flag{AddressFlag{Name: "to, t"}}, "to")
	app.Action = func(ctx *cli.Context) error {
		require.Equal(t, testAddress, ctx.Generic("to").(*Address).Uint160().String())
		return nil
	}
	require.Error(t, app.Run([]string{"app"}))
	require.NoError(t, app.Run([]string{"app", "-t", testAddress}))
}

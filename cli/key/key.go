/*
Package key contains commands for managing transaction signing keys.
*/
package key

import (
	"encoding/json"
	"fmt"

	"github.com/citahub/cita-go/cli/cmdargs"
	"github.com/citahub/cita-go/cli/options"
	"github.com/citahub/cita-go/pkg/crypto/hash"
	"github.com/citahub/cita-go/pkg/crypto/keys"
	"github.com/citahub/cita-go/pkg/util"
	"github.com/urfave/cli"
)

// NewCommands returns 'key' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:  "key",
		Usage: "Manage signing keys",
		Subcommands: []cli.Command{
			{
				Name:   "generate",
				Usage:  "Generate a new private key",
				Action: generateKey,
			},
			{
				Name:      "address",
				Usage:     "Print public key and address of the configured or entered key",
				UsageText: "cita-go key address [-c config]",
				Action:    showAddress,
				Flags:     []cli.Flag{options.Config},
			},
			{
				Name:      "sign",
				Usage:     "Sign Keccak256 hash of the hex-encoded data",
				UsageText: "cita-go key sign [-c config] <data>",
				Action:    signData,
				Flags:     []cli.Flag{options.Config},
			},
		},
	}}
}

// keyInfo is the JSON representation of a key pair.
type keyInfo struct {
	PrivateKey string       `json:"privateKey,omitempty"`
	PublicKey  string       `json:"publicKey"`
	Address    util.Uint160 `json:"address"`
}

func newKeyInfo(k *keys.PrivateKey, withPrivate bool) keyInfo {
	pub := k.PublicKey()
	info := keyInfo{
		PublicKey: util.EncodeHexString(pub.Bytes()),
		Address:   pub.Address(),
	}
	if withPrivate {
		info.PrivateKey = util.EncodeHexString(k.Bytes())
	}
	return info
}

func generateKey(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	k, err := keys.NewPrivateKey()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer k.Destroy()
	return printJSON(ctx, newKeyInfo(k, true))
}

// getKey returns the key from the configuration or asks the user for it.
func getKey(ctx *cli.Context) (*keys.PrivateKey, error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	var k *keys.PrivateKey
	if s := cfg.ApplicationConfiguration.PrivateKey; len(s) != 0 {
		k, err = keys.NewPrivateKeyFromHex(s)
	} else {
		k, err = options.ReadPrivateKey()
	}
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	return k, nil
}

func showAddress(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	k, err := getKey(ctx)
	if err != nil {
		return err
	}
	defer k.Destroy()
	return printJSON(ctx, newKeyInfo(k, false))
}

func signData(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 1 {
		return cli.NewExitError("data to sign is missing", 1)
	}
	data, err := util.DecodeHexString(args[0])
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid data: %w", err), 1)
	}
	k, err := getKey(ctx)
	if err != nil {
		return err
	}
	defer k.Destroy()
	digest := hash.Keccak256(data)
	return printJSON(ctx, struct {
		Hash      util.Uint256  `json:"hash"`
		Signature util.HexBytes `json:"signature"`
	}{digest, k.SignHash(digest)})
}

func printJSON(ctx *cli.Context, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, string(b))
	return nil
}

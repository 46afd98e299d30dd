package cmdargs

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/citahub/cita-go/pkg/encoding/quantity"
	"github.com/citahub/cita-go/pkg/util"
	"github.com/urfave/cli"
)

const (
	// ArrayStartSeparator marks the start of array cli arg.
	ArrayStartSeparator = "["
	// ArrayEndSeparator marks the end of array cli arg.
	ArrayEndSeparator = "]"
)

// ParamsParsingDoc is a documentation for parameters parsing.
const ParamsParsingDoc = `   Arguments are JSON-RPC parameters, their JSON type is either specified
   explicitly or inferred from the value. To specify the type manually use
   "type:value" syntax where the type is one of the following: 'int',
   'quantity', 'bool', 'string', 'hash160', 'hash256', 'bytes' or 'json'.
   Array types are also supported: use special space-separated '[' and ']'
   symbols around array values to denote array bounds. Nested arrays are also
   supported. Null parameter is supported via 'nil' keyword without additional
   type specification.

   Given values are type-checked against given types:
    * 'int' values are decimal integers sent as JSON numbers.
    * 'quantity' values are decimal or 0x-prefixed hex integers sent as
      0x-prefixed hex strings (block numbers, filter ids).
    * 'bool' type values are 'true' and 'false'.
    * 'hash160' values are hex-encoded 20-byte addresses.
    * 'hash256' values are hex-encoded 32-byte hashes.
    * 'bytes' type values are any hex-encoded things, sent 0x-prefixed.
    * 'json' values are sent as is (objects like call requests or filters).
    * 'string' type values are any valid UTF-8 strings.

   If no type is explicitly specified, it is inferred from the value:
    - anything that can be interpreted as a decimal integer is an 'int'
    - 'nil' is null
    - 'true' and 'false' strings are 'bool'
    - values starting with '{' are 'json' (no type prefix is parsed then)
    - anything else is a 'string'

   Backslash character is used as an escape character and allows to use colon in
   an implicitly typed string.

   Examples:
    * '42' is a number 42
    * 'quantity:42' is a string '0x2a'
    * 'string:42' is a string '42'
    * 'latest' is a string 'latest'
    * '{"to":"0x2c7536e3605d9c16a7a3d7b1898e529396a65c23","data":"0x"}' is an object
    * 'http\://x' is a string 'http://x'
    * '[ a b [ c d ] ]' is an array with 3 values: 'a', 'b' and an array of 'c' and 'd'
    * '[ ]' is an empty array`

// EnsureNone returns an error if there are any positional arguments present.
// It can be used to check for them in commands that don't accept arguments.
func EnsureNone(ctx *cli.Context) *cli.ExitError {
	if ctx.Args().Present() {
		return cli.NewExitError("additional arguments given while this command expects none", 1)
	}
	return nil
}

// ParseParams converts args into a list of JSON-RPC parameters. Nested
// arrays are enclosed into ArrayStartSeparator and ArrayEndSeparator.
func ParseParams(args []string) ([]any, error) {
	_, res, err := parseParams(args, true)
	return res, err
}

// parseParams returns the number of handled words, the array itself and an
// error. `calledFromMain` denotes whether the method was called from the
// outside or recursively and used to check if ArrayEndSeparator is allowed
// to be in `args` sequence.
func parseParams(args []string, calledFromMain bool) (int, []any, error) {
	res := []any{}
	for k := 0; k < len(args); {
		s := args[k]
		switch s {
		case ArrayStartSeparator:
			numWordsRead, array, err := parseParams(args[k+1:], false)
			if err != nil {
				return 0, nil, fmt.Errorf("failed to parse array: %w", err)
			}
			res = append(res, array)
			k += 1 + numWordsRead // `1` for opening bracket
		case ArrayEndSeparator:
			if calledFromMain {
				return 0, nil, errors.New("invalid array syntax: missing opening bracket")
			}
			return k + 1, res, nil // `1`to convert index to numWordsRead
		default:
			param, err := ParseParam(s)
			if err != nil {
				return 0, nil, fmt.Errorf("failed to parse argument #%d: %w", k+1, err)
			}
			res = append(res, param)
			k++
		}
	}
	if calledFromMain {
		return len(args), res, nil
	}
	return 0, nil, errors.New("invalid array syntax: missing closing bracket")
}

// ParseParam converts a single "[type:]value" argument into a value that is
// marshaled to JSON properly.
func ParseParam(in string) (any, error) {
	if strings.HasPrefix(in, "{") {
		return adjustValToType("json", in)
	}
	var (
		char    rune
		err     error
		r       = strings.NewReader(in)
		buf     strings.Builder
		escaped bool
		typStr  string
		hadType bool
	)
	for char, _, err = r.ReadRune(); err == nil && char != utf8.RuneError; char, _, err = r.ReadRune() {
		if char == '\\' && !escaped {
			escaped = true
			continue
		}
		if char == ':' && !escaped && !hadType {
			typStr = strings.ToLower(buf.String())
			buf.Reset()
			hadType = true
			continue
		}
		escaped = false
		// We don't care about length and it never fails.
		_, _ = buf.WriteRune(char)
	}
	if char == utf8.RuneError {
		return nil, errors.New("bad UTF-8 string")
	}
	// The only other error `ReadRune` returns is io.EOF, which is fine and
	// expected, so we don't check err here.

	val := buf.String()
	if !hadType {
		typStr = inferParamType(val)
	}
	return adjustValToType(typStr, val)
}

// inferParamType tries to infer the value type from its contents.
func inferParamType(val string) string {
	if _, ok := new(big.Int).SetString(val, 10); ok {
		return "int"
	}
	switch val {
	case "nil":
		return "nil"
	case "true", "false":
		return "bool"
	}
	// Anything can be a string.
	return "string"
}

// adjustValToType is a value type-checker and converter.
func adjustValToType(typ string, val string) (any, error) {
	switch typ {
	case "nil":
		return nil, nil
	case "int", "integer":
		bi, ok := new(big.Int).SetString(val, 10)
		if !ok {
			return nil, errors.New("invalid integer value")
		}
		return json.RawMessage(bi.String()), nil
	case "quantity":
		v, err := quantity.DecodeUint64(val)
		if err != nil {
			return nil, err
		}
		return quantity.EncodeUint64(v), nil
	case "bool", "boolean":
		switch val {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return nil, errors.New("invalid boolean value")
		}
	case "hash160", "address":
		return util.Uint160DecodeString(val)
	case "hash256", "hash":
		return util.Uint256DecodeString(val)
	case "bytes":
		b, err := util.DecodeHexString(val)
		if err != nil {
			return nil, err
		}
		return util.HexBytes(b), nil
	case "json":
		if !json.Valid([]byte(val)) {
			return nil, errors.New("invalid JSON value")
		}
		return json.RawMessage(val), nil
	case "string":
		return val, nil
	default:
		return nil, fmt.Errorf("bad parameter type: %s", typ)
	}
}

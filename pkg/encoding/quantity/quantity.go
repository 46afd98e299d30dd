/*
Package quantity implements the JSON encoding of numbers used by CITA
JSON-RPC: "0x"-prefixed big-endian hex strings without leading zeroes.
Decoding is lenient and also accepts plain JSON numbers and decimal strings.
*/
package quantity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/citahub/cita-go/pkg/util"
	"github.com/holiman/uint256"
)

// Latest is the block tag denoting the latest block.
const Latest = "latest"

// ErrOverflow is returned when the value doesn't fit into the target type.
var ErrOverflow = errors.New("quantity overflow")

// Uint64 is an uint64 encoded as a hex quantity.
type Uint64 uint64

// EncodeUint64 returns the hex quantity representation of v.
func EncodeUint64(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}

// DecodeUint64 parses a hex quantity ("0x"-prefixed) or a decimal string.
func DecodeUint64(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	base := 10
	if len(util.RemoveHexPrefix(s)) != len(s) {
		s = util.RemoveHexPrefix(s)
		base = 16
	}
	if len(s) == 0 {
		return 0, errors.New("empty quantity")
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return 0, ErrOverflow
		}
		return 0, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return v, nil
}

// MarshalJSON implements the json.Marshaler interface.
func (q Uint64) MarshalJSON() ([]byte, error) {
	return []byte(`"` + EncodeUint64(uint64(q)) + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (q *Uint64) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n uint64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("not a quantity: %s", data)
		}
		*q = Uint64(n)
		return nil
	}
	v, err := DecodeUint64(s)
	if err != nil {
		return err
	}
	*q = Uint64(v)
	return nil
}

// Tag returns the block parameter for the given height, nil means the
// latest block.
func Tag(height *uint64) string {
	if height == nil {
		return Latest
	}
	return EncodeUint64(*height)
}

// U256 is a 256-bit unsigned integer encoded as a hex quantity, it's used
// for balances and values.
type U256 struct {
	uint256.Int
}

// DecodeU256 parses a hex quantity or a decimal string into a 256-bit
// integer.
func DecodeU256(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if len(util.RemoveHexPrefix(s)) != len(s) {
		s = util.RemoveHexPrefix(s)
		base = 16
	}
	b, ok := new(big.Int).SetString(s, base)
	if !ok || b.Sign() < 0 {
		return nil, fmt.Errorf("invalid quantity %q", s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, ErrOverflow
	}
	return v, nil
}

// MarshalJSON implements the json.Marshaler interface.
func (q U256) MarshalJSON() ([]byte, error) {
	return []byte(`"` + q.Int.Hex() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (q *U256) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	v, err := DecodeU256(s)
	if err != nil {
		return err
	}
	q.Int = *v
	return nil
}

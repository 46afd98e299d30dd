package util

import (
	"encoding/hex"
	"encoding/json"
	"strings"
)

// RemoveHexPrefix strips the optional "0x" (or "0X") prefix.
func RemoveHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// DecodeHexString decodes a hex string with an optional "0x" prefix.
func DecodeHexString(s string) ([]byte, error) {
	return hex.DecodeString(RemoveHexPrefix(strings.TrimSpace(s)))
}

// EncodeHexString encodes b into a "0x"-prefixed hex string.
func EncodeHexString(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// HexBytes is a byte slice marshaled to JSON as a "0x"-prefixed hex string.
type HexBytes []byte

// MarshalJSON implements the json.Marshaler interface.
func (b HexBytes) MarshalJSON() ([]byte, error) {
	return []byte(`"` + EncodeHexString(b) + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface, "0x" prefix is
// optional and null is an empty slice.
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := DecodeHexString(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

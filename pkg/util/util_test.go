package util_test

import (
	"encoding/json"
	"testing"

	"github.com/citahub/cita-go/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveHexPrefix(t *testing.T) {
	assert.Equal(t, "abcd", util.RemoveHexPrefix("0xabcd"))
	assert.Equal(t, "abcd", util.RemoveHexPrefix("0Xabcd"))
	assert.Equal(t, "abcd", util.RemoveHexPrefix("abcd"))
	assert.Equal(t, "0", util.RemoveHexPrefix("0"))
	assert.Equal(t, "", util.RemoveHexPrefix("0x"))
}

func TestDecodeHexString(t *testing.T) {
	b, err := util.DecodeHexString("0xdeadbeef")
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)

	_, err = util.DecodeHexString("xyz")
	require.Error(t, err)

	require.Equal(t, "0xdeadbeef", util.EncodeHexString(b))
}

func TestUint160DecodeString(t *testing.T) {
	hexStr := "2d3b96ae1bcc5a585e075e3b81920210dec16302"
	val, err := util.Uint160DecodeString(hexStr)
	require.NoError(t, err)
	assert.Equal(t, "0x"+hexStr, val.String())

	val2, err := util.Uint160DecodeString("0x" + hexStr)
	require.NoError(t, err)
	assert.True(t, val.Equals(val2))

	_, err = util.Uint160DecodeString(hexStr[1:])
	assert.Error(t, err)
	_, err = util.Uint160DecodeString("zz" + hexStr[2:])
	assert.Error(t, err)
}

func TestUint160JSON(t *testing.T) {
	hexStr := "0x2d3b96ae1bcc5a585e075e3b81920210dec16302"
	var u util.Uint160
	require.NoError(t, json.Unmarshal([]byte(`"`+hexStr+`"`), &u))

	data, err := json.Marshal(u)
	require.NoError(t, err)
	require.Equal(t, `"`+hexStr+`"`, string(data))

	assert.Error(t, u.UnmarshalJSON([]byte(`123`)))
}

func TestUint256JSON(t *testing.T) {
	hexStr := "0xf037308fa0ab18155bccfc08485468c112409ea5064595699e98c545f245f32d"
	var u util.Uint256
	require.NoError(t, json.Unmarshal([]byte(`"`+hexStr+`"`), &u))
	assert.Equal(t, hexStr, u.String())

	data, err := json.Marshal(u)
	require.NoError(t, err)
	require.Equal(t, `"`+hexStr+`"`, string(data))

	_, err = util.Uint256DecodeBytes([]byte{1, 2, 3})
	assert.Error(t, err)
	assert.Error(t, u.UnmarshalJSON([]byte(`"0x1234"`)))
}

func TestHexBytesJSON(t *testing.T) {
	var b util.HexBytes
	require.NoError(t, json.Unmarshal([]byte(`"0x0102"`), &b))
	require.Equal(t, util.HexBytes{1, 2}, b)
	require.NoError(t, json.Unmarshal([]byte(`"0a"`), &b))
	require.Equal(t, util.HexBytes{10}, b)
	require.NoError(t, json.Unmarshal([]byte(`null`), &b))
	require.Nil(t, b)
	require.Error(t, json.Unmarshal([]byte(`"0xz"`), &b))

	data, err := json.Marshal(util.HexBytes{0xab})
	require.NoError(t, err)
	require.Equal(t, `"0xab"`, string(data))
}

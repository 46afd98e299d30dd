package keys

import (
	"strings"
	"testing"

	"github.com/citahub/cita-go/pkg/crypto/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known key/address pair from the Ethereum toolchain docs, CITA uses the
// same derivation.
const (
	testPriv    = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testAddress = "0x2c7536e3605d9c16a7a3d7b1898e529396a65c23"
)

func TestPrivateKeyFromHex(t *testing.T) {
	k, err := NewPrivateKeyFromHex("0x" + testPriv)
	require.NoError(t, err)
	assert.Equal(t, testPriv, k.String())
	assert.Equal(t, testAddress, k.Address().String())
	assert.Len(t, k.PublicKey().Bytes(), PublicKeySize)

	for _, bad := range []string{"", "zz", testPriv[2:], strings.Repeat("00", 32)} {
		_, err := NewPrivateKeyFromHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestSignRecover(t *testing.T) {
	k, err := NewPrivateKey()
	require.NoError(t, err)

	msg := []byte("cita")
	sig := k.Sign(msg)
	require.Len(t, sig, SignatureSize)
	require.LessOrEqual(t, sig[64], byte(1))

	pub, err := RecoverPublicKey(hash.Keccak256(msg), sig)
	require.NoError(t, err)
	require.True(t, pub.Equal(k.PublicKey()))
	require.Equal(t, k.Address(), pub.Address())
	require.True(t, k.PublicKey().Verify(hash.Keccak256(msg), sig))
	require.False(t, k.PublicKey().Verify(hash.Keccak256([]byte("other")), sig))
}

func TestSignDeterministic(t *testing.T) {
	k, err := NewPrivateKeyFromHex(testPriv)
	require.NoError(t, err)
	require.Equal(t, k.Sign([]byte("data")), k.Sign([]byte("data")))
}

func TestRecoverBadSignature(t *testing.T) {
	digest := hash.Keccak256([]byte("x"))
	_, err := RecoverPublicKey(digest, []byte{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidSignature)

	sig := make([]byte, SignatureSize)
	sig[64] = 7
	_, err = RecoverPublicKey(digest, sig)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestPublicKeyFromBytes(t *testing.T) {
	k, err := NewPrivateKeyFromHex(testPriv)
	require.NoError(t, err)
	pub, err := NewPublicKeyFromBytes(k.PublicKey().Bytes())
	require.NoError(t, err)
	require.True(t, pub.Equal(k.PublicKey()))
	require.Equal(t, k.PublicKey().String(), pub.String())

	_, err = NewPublicKeyFromBytes([]byte{1, 2})
	require.Error(t, err)
}

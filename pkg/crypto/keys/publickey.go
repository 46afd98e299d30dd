package keys

import (
	"encoding/hex"
	"fmt"

	"github.com/citahub/cita-go/pkg/crypto/hash"
	"github.com/citahub/cita-go/pkg/util"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// PublicKeySize is the size of a CITA public key (uncompressed point without
// the 0x04 prefix).
const PublicKeySize = 64

// PublicKey represents a secp256k1 public key.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// NewPublicKeyFromBytes returns a public key created from its 64-byte
// (X||Y) or any standard SEC1 serialization.
func NewPublicKeyFromBytes(b []byte) (*PublicKey, error) {
	if len(b) == PublicKeySize {
		b = append([]byte{0x04}, b...)
	}
	k, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, err
	}
	return &PublicKey{key: k}, nil
}

// RecoverPublicKey recovers the public key from the digest and the r||s||v
// signature produced by SignHash.
func RecoverPublicKey(digest util.Uint256, sig []byte) (*PublicKey, error) {
	if len(sig) != SignatureSize {
		return nil, fmt.Errorf("%w: expected %d bytes got %d", ErrInvalidSignature, SignatureSize, len(sig))
	}
	if sig[64] > 3 {
		return nil, fmt.Errorf("%w: bad recovery id %d", ErrInvalidSignature, sig[64])
	}
	compact := make([]byte, SignatureSize)
	compact[0] = sig[64] + compactSigMagicOffset
	copy(compact[1:], sig[:64])
	k, _, err := ecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return &PublicKey{key: k}, nil
}

// Bytes returns the 64-byte X||Y representation of the key.
func (p *PublicKey) Bytes() []byte {
	return p.key.SerializeUncompressed()[1:]
}

// String implements the stringer interface.
func (p *PublicKey) String() string {
	return hex.EncodeToString(p.Bytes())
}

// Address returns the account address of the key, which is the last 20
// bytes of Keccak256 of its X||Y representation.
func (p *PublicKey) Address() util.Uint160 {
	var u util.Uint160
	h := hash.Keccak256(p.Bytes())
	copy(u[:], h[12:])
	return u
}

// Equal returns true if both keys represent the same point.
func (p *PublicKey) Equal(other *PublicKey) bool {
	return p.key.IsEqual(other.key)
}

// Verify checks that sig is a valid signature of digest made by this key.
func (p *PublicKey) Verify(digest util.Uint256, sig []byte) bool {
	k, err := RecoverPublicKey(digest, sig)
	return err == nil && p.Equal(k)
}

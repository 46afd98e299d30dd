package keys

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/citahub/cita-go/pkg/crypto/hash"
	"github.com/citahub/cita-go/pkg/util"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const (
	// PrivateKeySize is the size of a serialized private key in bytes.
	PrivateKeySize = 32
	// SignatureSize is the size of a recoverable signature in bytes (r||s||v).
	SignatureSize = 65

	// compactSigMagicOffset is the value added to the recovery code by
	// compact signatures for uncompressed public keys.
	compactSigMagicOffset = 27
)

// ErrInvalidSignature is returned when the signature can't be used to
// recover the public key.
var ErrInvalidSignature = errors.New("invalid signature")

// PrivateKey represents a secp256k1 private key used to sign CITA
// transactions.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// NewPrivateKey creates a new random private key.
func NewPrivateKey() (*PrivateKey, error) {
	k, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: k}, nil
}

// NewPrivateKeyFromHex returns a PrivateKey created from the given hex
// string, "0x" prefix is optional.
func NewPrivateKeyFromHex(str string) (*PrivateKey, error) {
	b, err := util.DecodeHexString(str)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return NewPrivateKeyFromBytes(b)
}

// NewPrivateKeyFromBytes returns a PrivateKey from the given byte slice.
func NewPrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != PrivateKeySize {
		return nil, fmt.Errorf(
			"invalid byte length: expected %d bytes got %d", PrivateKeySize, len(b),
		)
	}
	k := secp256k1.PrivKeyFromBytes(b)
	if k.Key.IsZero() {
		return nil, errors.New("invalid private key: zero scalar")
	}
	return &PrivateKey{key: k}, nil
}

// PublicKey derives the public key from the private key.
func (p *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: p.key.PubKey()}
}

// Address derives the account address that is coupled with the private key.
func (p *PrivateKey) Address() util.Uint160 {
	return p.PublicKey().Address()
}

// Sign signs arbitrary length data using the private key. It uses Keccak256
// to calculate hash and then SignHash to create a signature.
func (p *PrivateKey) Sign(data []byte) []byte {
	return p.SignHash(hash.Keccak256(data))
}

// SignHash signs the given digest producing a 65-byte recoverable signature
// in r||s||v form where v is the recovery id (0 or 1).
func (p *PrivateKey) SignHash(digest util.Uint256) []byte {
	compact := ecdsa.SignCompact(p.key, digest[:], false)
	sig := make([]byte, SignatureSize)
	copy(sig, compact[1:])
	sig[64] = compact[0] - compactSigMagicOffset
	return sig
}

// String implements the stringer interface.
func (p *PrivateKey) String() string {
	return hex.EncodeToString(p.Bytes())
}

// Bytes returns the underlying bytes of the PrivateKey.
func (p *PrivateKey) Bytes() []byte {
	return p.key.Serialize()
}

// Destroy wipes the key from memory, it can't be used after that.
func (p *PrivateKey) Destroy() {
	p.key.Zero()
}

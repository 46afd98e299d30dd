package transaction

import (
	"encoding/hex"
	"fmt"

	"github.com/citahub/cita-go/pkg/crypto/hash"
	"github.com/citahub/cita-go/pkg/crypto/keys"
	"github.com/citahub/cita-go/pkg/io"
	"github.com/citahub/cita-go/pkg/util"
)

// Protobuf field numbers of the UnverifiedTransaction message.
const (
	fieldTransaction = 1
	fieldSignature   = 2
	fieldCrypto      = 3
)

// Crypto is the signature scheme identifier of a signed transaction.
type Crypto uint32

const (
	// CryptoDefault is the default scheme (secp256k1 for the standard node
	// build).
	CryptoDefault Crypto = 0
	// CryptoReserved is reserved for future use.
	CryptoReserved Crypto = 1
)

// UnverifiedTransaction is a signed envelope containing the transaction,
// its signature and the signature scheme. It's the thing sent to the
// network.
type UnverifiedTransaction struct {
	Transaction *Transaction
	Signature   []byte
	Crypto      Crypto
}

// DecodeUnverified decodes a signed envelope from its binary representation.
func DecodeUnverified(b []byte) (*UnverifiedTransaction, error) {
	utx := new(UnverifiedTransaction)
	if err := io.FromBytes(utx, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	if utx.Transaction == nil {
		return nil, fmt.Errorf("%w: no transaction", ErrDecoding)
	}
	return utx, nil
}

// DecodeUnverifiedString decodes a signed envelope from its hex
// representation ("0x" prefix is optional).
func DecodeUnverifiedString(s string) (*UnverifiedTransaction, error) {
	b, err := util.DecodeHexString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	return DecodeUnverified(b)
}

// EncodeBinary implements the io.Serializable interface.
func (u *UnverifiedTransaction) EncodeBinary(w *io.BinWriter) {
	if u.Transaction != nil {
		w.WriteMessage(fieldTransaction, u.Transaction)
	}
	w.WriteVarBytes(fieldSignature, u.Signature)
	w.WriteUint32(fieldCrypto, uint32(u.Crypto))
}

// DecodeBinary implements the io.Serializable interface.
func (u *UnverifiedTransaction) DecodeBinary(r *io.BinReader) {
	for {
		num, ok := r.ReadField()
		if !ok {
			return
		}
		switch num {
		case fieldTransaction:
			u.Transaction = new(Transaction)
			r.ReadMessage(u.Transaction)
		case fieldSignature:
			u.Signature = r.ReadVarBytes()
		case fieldCrypto:
			u.Crypto = Crypto(r.ReadUint32())
		default:
			r.Skip()
		}
	}
}

// Bytes returns the canonical binary representation of the envelope.
func (u *UnverifiedTransaction) Bytes() []byte {
	b, err := io.GetBytes(u)
	if err != nil {
		panic(err)
	}
	return b
}

// String returns the hex representation of the envelope (without "0x"),
// it's the form accepted by the node's sendTransaction method.
func (u *UnverifiedTransaction) String() string {
	return hex.EncodeToString(u.Bytes())
}

// Hash returns the transaction hash as the node computes it, that is the
// Keccak256 of the envelope.
func (u *UnverifiedTransaction) Hash() util.Uint256 {
	return hash.Keccak256(u.Bytes())
}

// SenderKey recovers the public key of the signer.
func (u *UnverifiedTransaction) SenderKey() (*keys.PublicKey, error) {
	if u.Transaction == nil {
		return nil, fmt.Errorf("%w: no transaction", ErrDecoding)
	}
	if u.Crypto != CryptoDefault {
		return nil, fmt.Errorf("unsupported crypto scheme %d", u.Crypto)
	}
	return keys.RecoverPublicKey(u.Transaction.Hash(), u.Signature)
}

// Sender recovers the address of the signer.
func (u *UnverifiedTransaction) Sender() (util.Uint160, error) {
	pub, err := u.SenderKey()
	if err != nil {
		return util.Uint160{}, err
	}
	return pub.Address(), nil
}

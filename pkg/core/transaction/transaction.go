package transaction

import (
	"encoding/json"
	"errors"

	"github.com/citahub/cita-go/pkg/crypto/hash"
	"github.com/citahub/cita-go/pkg/io"
	"github.com/citahub/cita-go/pkg/util"
)

// Protobuf field numbers of the Transaction message.
const (
	fieldTo              = 1
	fieldNonce           = 2
	fieldQuota           = 3
	fieldValidUntilBlock = 4
	fieldData            = 5
	fieldValue           = 6
	fieldChainID         = 7
	fieldVersion         = 8
)

// ErrDecoding is returned when the transaction can't be decoded.
var ErrDecoding = errors.New("can't decode transaction")

// Transaction is an unsigned CITA transaction. Its canonical binary form is
// the protobuf encoding of the blockchain.proto Transaction message.
type Transaction struct {
	// To is the hex-encoded recipient address, an empty one means contract
	// creation.
	To string
	// Nonce makes the transaction unique, it's a hex-encoded random UUID.
	Nonce string
	// Quota is the computational fee budget.
	Quota uint64
	// ValidUntilBlock is the last block height the transaction can be
	// included into.
	ValidUntilBlock uint64
	// Data is the call data or contract code.
	Data []byte
	// Value is the big-endian amount of native tokens transferred.
	Value []byte
	// ChainID binds the transaction to the network.
	ChainID uint32
	// Version is the transaction format version, always 0 here.
	Version uint32
}

// EncodeBinary implements the io.Serializable interface.
func (t *Transaction) EncodeBinary(w *io.BinWriter) {
	w.WriteString(fieldTo, t.To)
	w.WriteString(fieldNonce, t.Nonce)
	w.WriteUint64(fieldQuota, t.Quota)
	w.WriteUint64(fieldValidUntilBlock, t.ValidUntilBlock)
	w.WriteVarBytes(fieldData, t.Data)
	w.WriteVarBytes(fieldValue, t.Value)
	w.WriteUint32(fieldChainID, t.ChainID)
	w.WriteUint32(fieldVersion, t.Version)
}

// DecodeBinary implements the io.Serializable interface.
func (t *Transaction) DecodeBinary(r *io.BinReader) {
	for {
		num, ok := r.ReadField()
		if !ok {
			return
		}
		switch num {
		case fieldTo:
			t.To = r.ReadString()
		case fieldNonce:
			t.Nonce = r.ReadString()
		case fieldQuota:
			t.Quota = r.ReadUint64()
		case fieldValidUntilBlock:
			t.ValidUntilBlock = r.ReadUint64()
		case fieldData:
			t.Data = r.ReadVarBytes()
		case fieldValue:
			t.Value = r.ReadVarBytes()
		case fieldChainID:
			t.ChainID = r.ReadUint32()
		case fieldVersion:
			t.Version = r.ReadUint32()
		default:
			r.Skip()
		}
	}
}

// Bytes returns the canonical binary representation of the transaction.
func (t *Transaction) Bytes() []byte {
	b, err := io.GetBytes(t)
	if err != nil {
		// Transaction encoding can't fail.
		panic(err)
	}
	return b
}

// Hash returns the signing hash of the transaction.
func (t *Transaction) Hash() util.Uint256 {
	return hash.Keccak256(t.Bytes())
}

// Sign signs the transaction with the given signer producing a signed
// envelope. The transaction is not copied, so it must not be changed after
// signing.
func (t *Transaction) Sign(s Signer) *UnverifiedTransaction {
	return &UnverifiedTransaction{
		Transaction: t,
		Signature:   s.SignHash(t.Hash()),
		Crypto:      CryptoDefault,
	}
}

// transactionJSON is used for JSON I/O of Transaction.
type transactionJSON struct {
	To              string        `json:"to"`
	Nonce           string        `json:"nonce"`
	Quota           uint64        `json:"quota"`
	ValidUntilBlock uint64        `json:"validUntilBlock"`
	Data            util.HexBytes `json:"data"`
	Value           util.HexBytes `json:"value"`
	ChainID         uint32        `json:"chainId"`
	Version         uint32        `json:"version"`
	Hash            util.Uint256  `json:"hash"`
}

// MarshalJSON implements the json.Marshaler interface. The signing hash is
// included for convenience.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		To:              t.To,
		Nonce:           t.Nonce,
		Quota:           t.Quota,
		ValidUntilBlock: t.ValidUntilBlock,
		Data:            t.Data,
		Value:           t.Value,
		ChainID:         t.ChainID,
		Version:         t.Version,
		Hash:            t.Hash(),
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface. The hash is
// checked if present.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var tj transactionJSON
	if err := json.Unmarshal(data, &tj); err != nil {
		return err
	}
	*t = Transaction{
		To:              tj.To,
		Nonce:           tj.Nonce,
		Quota:           tj.Quota,
		ValidUntilBlock: tj.ValidUntilBlock,
		Data:            tj.Data,
		Value:           tj.Value,
		ChainID:         tj.ChainID,
		Version:         tj.Version,
	}
	if tj.Hash != (util.Uint256{}) && tj.Hash != t.Hash() {
		return errors.New("txid doesn't match transaction hash")
	}
	return nil
}

package result

import (
	"encoding/json"
	"fmt"

	"github.com/citahub/cita-go/pkg/encoding/quantity"
	"github.com/citahub/cita-go/pkg/util"
)

type (
	// Block is the result of cita_getBlockByHash and cita_getBlockByNumber.
	Block struct {
		Version uint32       `json:"version"`
		Hash    util.Uint256 `json:"hash"`
		Header  Header       `json:"header"`
		Body    Body         `json:"body"`
	}

	// Header is a block header. Proof is consensus-specific, so it's kept
	// raw.
	Header struct {
		Timestamp        uint64          `json:"timestamp"`
		PrevHash         util.Uint256    `json:"prevHash"`
		Number           quantity.Uint64 `json:"number"`
		StateRoot        util.Uint256    `json:"stateRoot"`
		TransactionsRoot util.Uint256    `json:"transactionsRoot"`
		ReceiptsRoot     util.Uint256    `json:"receiptsRoot"`
		QuotaUsed        quantity.Uint64 `json:"quotaUsed"`
		Proof            json.RawMessage `json:"proof,omitempty"`
		Proposer         util.Uint160    `json:"proposer"`
	}

	// Body contains block transactions.
	Body struct {
		Transactions []BlockTransaction `json:"transactions"`
	}

	// BlockTransaction is a transaction as it's included in the block. It's
	// either a hash only (when transaction details are not requested) or a
	// hash with the hex-encoded signed envelope in Content.
	BlockTransaction struct {
		Hash    util.Uint256  `json:"hash"`
		Content util.HexBytes `json:"content,omitempty"`
	}
)

// Copy returns a deep copy of the block.
func (b *Block) Copy() *Block {
	res := *b
	res.Header.Proof = append(json.RawMessage(nil), b.Header.Proof...)
	if b.Body.Transactions != nil {
		res.Body.Transactions = make([]BlockTransaction, len(b.Body.Transactions))
		for i, tx := range b.Body.Transactions {
			res.Body.Transactions[i] = BlockTransaction{
				Hash:    tx.Hash,
				Content: append(util.HexBytes(nil), tx.Content...),
			}
		}
	}
	return &res
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *BlockTransaction) UnmarshalJSON(data []byte) error {
	var h util.Uint256
	if err := json.Unmarshal(data, &h); err == nil {
		*t = BlockTransaction{Hash: h}
		return nil
	}
	type aux BlockTransaction
	var a aux
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("neither a hash nor a transaction: %w", err)
	}
	*t = BlockTransaction(a)
	return nil
}

// Transaction is the result of cita_getTransaction.
type Transaction struct {
	Hash        util.Uint256    `json:"hash"`
	Content     util.HexBytes   `json:"content"`
	BlockNumber quantity.Uint64 `json:"blockNumber"`
	BlockHash   util.Uint256    `json:"blockHash"`
	Index       quantity.Uint64 `json:"index"`
}

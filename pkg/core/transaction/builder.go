package transaction

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/citahub/cita-go/pkg/util"
	"github.com/google/uuid"
)

const (
	// ValidUntilBlockOffset is the number of blocks a freshly built
	// transaction stays valid for.
	ValidUntilBlockOffset = 88
	// DefaultQuota is the quota attached to every built transaction.
	DefaultQuota = 1000000
)

// ErrInvalidPayload is returned when the payload is not a valid hex string.
var ErrInvalidPayload = errors.New("invalid transaction payload")

// ErrNoSigner is returned by Build for a nil Signer, including a nil pointer
// wrapped into the interface.
var ErrNoSigner = errors.New("no signer")

// Signer is anything that can produce a recoverable signature of the
// transaction hash, *keys.PrivateKey is the standard implementation.
type Signer interface {
	SignHash(digest util.Uint256) []byte
}

// New creates an unsigned transaction for the given recipient (empty for
// contract creation) and payload. It gets a random nonce, the default quota
// and the ValidUntilBlock computed from currentHeight, saturated at
// math.MaxUint64.
func New(to string, data []byte, currentHeight uint64, chainID uint32) *Transaction {
	vub := uint64(math.MaxUint64)
	if currentHeight <= math.MaxUint64-ValidUntilBlockOffset {
		vub = currentHeight + ValidUntilBlockOffset
	}
	id := uuid.New()
	return &Transaction{
		To:              to,
		Nonce:           hex.EncodeToString(id[:]),
		Quota:           DefaultQuota,
		ValidUntilBlock: vub,
		Data:            data,
		ChainID:         chainID,
	}
}

// Build decodes the hex payload, creates a new transaction with New and signs
// it with s.
func Build(payloadHex string, to string, currentHeight uint64, chainID uint32, s Signer) (*UnverifiedTransaction, error) {
	data, err := util.DecodeHexString(payloadHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if isNilSigner(s) {
		return nil, ErrNoSigner
	}
	return New(to, data, currentHeight, chainID).Sign(s), nil
}

func isNilSigner(s Signer) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

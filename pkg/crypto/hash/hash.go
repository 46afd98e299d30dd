/*
Package hash contains the hashing primitives used by CITA.
*/
package hash

import (
	"github.com/citahub/cita-go/pkg/util"
	"golang.org/x/crypto/sha3"
)

// Keccak256 hashes the incoming byte slice using the original (legacy)
// Keccak-256 algorithm, not the finalized SHA3-256.
func Keccak256(data ...[]byte) util.Uint256 {
	var hash util.Uint256
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		_, _ = h.Write(d)
	}
	h.Sum(hash[:0])
	return hash
}

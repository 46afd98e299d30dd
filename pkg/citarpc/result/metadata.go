/*
Package result contains the types of results returned by CITA JSON-RPC
methods.
*/
package result

import (
	"github.com/citahub/cita-go/pkg/util"
)

// MetaData is the result of cita_getMetaData.
type MetaData struct {
	ChainID          uint32         `json:"chainId"`
	ChainName        string         `json:"chainName"`
	Operator         string         `json:"operator"`
	Website          string         `json:"website"`
	GenesisTimestamp uint64         `json:"genesisTimestamp"`
	Validators       []util.Uint160 `json:"validators"`
	BlockInterval    uint64         `json:"blockInterval"`
	TokenName        string         `json:"tokenName"`
	TokenSymbol      string         `json:"tokenSymbol"`
	TokenAvatar      string         `json:"tokenAvatar"`
	Version          uint32         `json:"version"`
	EconomicalModel  uint32         `json:"economicalModel"`
}

// TxResponse is the result of cita_sendTransaction.
type TxResponse struct {
	Hash   util.Uint256 `json:"hash"`
	Status string       `json:"status"`
}

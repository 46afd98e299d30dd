package result

import (
	"github.com/citahub/cita-go/pkg/encoding/quantity"
	"github.com/citahub/cita-go/pkg/util"
)

type (
	// Receipt is the result of eth_getTransactionReceipt.
	Receipt struct {
		TransactionHash     util.Uint256    `json:"transactionHash"`
		TransactionIndex    quantity.Uint64 `json:"transactionIndex"`
		BlockHash           util.Uint256    `json:"blockHash"`
		BlockNumber         quantity.Uint64 `json:"blockNumber"`
		CumulativeQuotaUsed quantity.Uint64 `json:"cumulativeQuotaUsed"`
		QuotaUsed           quantity.Uint64 `json:"quotaUsed"`
		ContractAddress     *util.Uint160   `json:"contractAddress"`
		Logs                []Log           `json:"logs"`
		Root                *util.Uint256   `json:"root"`
		LogsBloom           util.HexBytes   `json:"logsBloom"`
		ErrorMessage        *string         `json:"errorMessage"`
	}

	// Log is a contract event log.
	Log struct {
		Address             util.Uint160    `json:"address"`
		Topics              []util.Uint256  `json:"topics"`
		Data                util.HexBytes   `json:"data"`
		BlockHash           util.Uint256    `json:"blockHash"`
		BlockNumber         quantity.Uint64 `json:"blockNumber"`
		TransactionHash     util.Uint256    `json:"transactionHash"`
		TransactionIndex    quantity.Uint64 `json:"transactionIndex"`
		LogIndex            quantity.Uint64 `json:"logIndex"`
		TransactionLogIndex quantity.Uint64 `json:"transactionLogIndex"`
	}
)

// Failed returns true if the transaction execution failed.
func (r *Receipt) Failed() bool {
	return r.ErrorMessage != nil && len(*r.ErrorMessage) != 0
}

package citarpc

import (
	"github.com/citahub/cita-go/pkg/util"
)

type (
	// LogFilter is a log filter used by eth_getLogs and eth_newFilter. Block
	// bounds are block tags: "latest", "earliest" or hex quantities, empty
	// ones are omitted. Topics are positional, nil entries match anything.
	LogFilter struct {
		FromBlock string           `json:"fromBlock,omitempty"`
		ToBlock   string           `json:"toBlock,omitempty"`
		Address   []util.Uint160   `json:"address,omitempty"`
		Topics    [][]util.Uint256 `json:"topics,omitempty"`
	}

	// CallRequest is a read-only contract call used by eth_call.
	CallRequest struct {
		From *util.Uint160 `json:"from,omitempty"`
		To   util.Uint160  `json:"to"`
		Data util.HexBytes `json:"data,omitempty"`
	}
)

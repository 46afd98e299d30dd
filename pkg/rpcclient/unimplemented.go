package rpcclient

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/citahub/cita-go/pkg/citarpc"
	"github.com/citahub/cita-go/pkg/citarpc/result"
	"github.com/citahub/cita-go/pkg/util"
	"github.com/holiman/uint256"
)

// ErrNotImplemented is returned by every UnimplementedQuerier method.
var ErrNotImplemented = errors.New("not implemented")

// UnimplementedQuerier can be embedded into partial Querier implementations
// (mocks, proxies) so that any method not overridden fails explicitly.
type UnimplementedQuerier struct{}

var _ Querier = UnimplementedQuerier{}

// GetNetPeerCount implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) GetNetPeerCount(context.Context, string) (uint32, error) {
	return 0, ErrNotImplemented
}

// GetBlockNumber implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) GetBlockNumber(context.Context, string) (uint64, error) {
	return 0, ErrNotImplemented
}

// SendTransaction implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) SendTransaction(context.Context, string, string) (*result.TxResponse, error) {
	return nil, ErrNotImplemented
}

// GetBlockByHash implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) GetBlockByHash(context.Context, string, util.Uint256, bool) (*result.Block, error) {
	return nil, ErrNotImplemented
}

// GetBlockByNumber implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) GetBlockByNumber(context.Context, string, *uint64, bool) (*result.Block, error) {
	return nil, ErrNotImplemented
}

// GetTransactionReceipt implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) GetTransactionReceipt(context.Context, string, util.Uint256) (*result.Receipt, error) {
	return nil, ErrNotImplemented
}

// GetLogs implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) GetLogs(context.Context, string, citarpc.LogFilter) ([]result.Log, error) {
	return nil, ErrNotImplemented
}

// Call implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) Call(context.Context, string, citarpc.CallRequest, *uint64) ([]byte, error) {
	return nil, ErrNotImplemented
}

// GetTransaction implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) GetTransaction(context.Context, string, util.Uint256) (*result.Transaction, error) {
	return nil, ErrNotImplemented
}

// GetTransactionCount implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) GetTransactionCount(context.Context, string, util.Uint160, *uint64) (uint64, error) {
	return 0, ErrNotImplemented
}

// GetCode implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) GetCode(context.Context, string, util.Uint160, *uint64) ([]byte, error) {
	return nil, ErrNotImplemented
}

// GetAbi implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) GetAbi(context.Context, string, util.Uint160, *uint64) ([]byte, error) {
	return nil, ErrNotImplemented
}

// GetBalance implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) GetBalance(context.Context, string, util.Uint160, *uint64) (*uint256.Int, error) {
	return nil, ErrNotImplemented
}

// NewFilter implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) NewFilter(context.Context, string, citarpc.LogFilter) (uint64, error) {
	return 0, ErrNotImplemented
}

// NewBlockFilter implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) NewBlockFilter(context.Context, string) (uint64, error) {
	return 0, ErrNotImplemented
}

// UninstallFilter implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) UninstallFilter(context.Context, string, uint64) (bool, error) {
	return false, ErrNotImplemented
}

// GetFilterChanges implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) GetFilterChanges(context.Context, string, uint64) (json.RawMessage, error) {
	return nil, ErrNotImplemented
}

// GetFilterLogs implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) GetFilterLogs(context.Context, string, uint64) ([]result.Log, error) {
	return nil, ErrNotImplemented
}

// GetTransactionProof implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) GetTransactionProof(context.Context, string, util.Uint256) ([]byte, error) {
	return nil, ErrNotImplemented
}

// GetMetaData implements Querier, it always returns ErrNotImplemented.
func (UnimplementedQuerier) GetMetaData(context.Context, string, *uint64) (*result.MetaData, error) {
	return nil, ErrNotImplemented
}

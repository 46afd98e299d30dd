package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/citahub/cita-go/pkg/citarpc"
	"github.com/citahub/cita-go/pkg/citarpc/result"
	"github.com/citahub/cita-go/pkg/encoding/quantity"
	"github.com/citahub/cita-go/pkg/util"
	"github.com/holiman/uint256"
)

// CITA JSON-RPC method names.
const (
	MethodNetPeerCount          = "net_peerCount"
	MethodBlockNumber           = "cita_blockNumber"
	MethodSendTransaction       = "cita_sendTransaction"
	MethodGetBlockByHash        = "cita_getBlockByHash"
	MethodGetBlockByNumber      = "cita_getBlockByNumber"
	MethodGetTransactionReceipt = "eth_getTransactionReceipt"
	MethodGetLogs               = "eth_getLogs"
	MethodCall                  = "eth_call"
	MethodGetTransaction        = "cita_getTransaction"
	MethodGetTransactionCount   = "eth_getTransactionCount"
	MethodGetCode               = "eth_getCode"
	MethodGetAbi                = "eth_getAbi"
	MethodGetBalance            = "eth_getBalance"
	MethodNewFilter             = "eth_newFilter"
	MethodNewBlockFilter        = "eth_newBlockFilter"
	MethodUninstallFilter       = "eth_uninstallFilter"
	MethodGetFilterChanges      = "eth_getFilterChanges"
	MethodGetFilterLogs         = "eth_getFilterLogs"
	MethodGetTransactionProof   = "cita_getTransactionProof"
	MethodGetMetaData           = "cita_getMetaData"
)

// Querier is the set of CITA JSON-RPC queries. Every call is made to the
// node at the given URL. Height parameters are optional, nil means the latest
// block.
type Querier interface {
	GetNetPeerCount(ctx context.Context, url string) (uint32, error)
	GetBlockNumber(ctx context.Context, url string) (uint64, error)
	SendTransaction(ctx context.Context, url string, signedHex string) (*result.TxResponse, error)
	GetBlockByHash(ctx context.Context, url string, hash util.Uint256, full bool) (*result.Block, error)
	GetBlockByNumber(ctx context.Context, url string, height *uint64, full bool) (*result.Block, error)
	GetTransactionReceipt(ctx context.Context, url string, hash util.Uint256) (*result.Receipt, error)
	GetLogs(ctx context.Context, url string, filter citarpc.LogFilter) ([]result.Log, error)
	Call(ctx context.Context, url string, call citarpc.CallRequest, height *uint64) ([]byte, error)
	GetTransaction(ctx context.Context, url string, hash util.Uint256) (*result.Transaction, error)
	GetTransactionCount(ctx context.Context, url string, addr util.Uint160, height *uint64) (uint64, error)
	GetCode(ctx context.Context, url string, addr util.Uint160, height *uint64) ([]byte, error)
	GetAbi(ctx context.Context, url string, addr util.Uint160, height *uint64) ([]byte, error)
	GetBalance(ctx context.Context, url string, addr util.Uint160, height *uint64) (*uint256.Int, error)
	NewFilter(ctx context.Context, url string, filter citarpc.LogFilter) (uint64, error)
	NewBlockFilter(ctx context.Context, url string) (uint64, error)
	UninstallFilter(ctx context.Context, url string, id uint64) (bool, error)
	GetFilterChanges(ctx context.Context, url string, id uint64) (json.RawMessage, error)
	GetFilterLogs(ctx context.Context, url string, id uint64) ([]result.Log, error)
	GetTransactionProof(ctx context.Context, url string, hash util.Uint256) ([]byte, error)
	GetMetaData(ctx context.Context, url string, height *uint64) (*result.MetaData, error)
}

var _ Querier = (*Client)(nil)

// blockKey is the block cache key, full and hash-only blocks differ.
type blockKey struct {
	hash util.Uint256
	full bool
}

// GetNetPeerCount returns the number of peers connected to the node.
func (c *Client) GetNetPeerCount(ctx context.Context, url string) (uint32, error) {
	var resp quantity.Uint64
	if err := c.performRequest(ctx, url, MethodNetPeerCount, nil, &resp); err != nil {
		return 0, err
	}
	if resp > math.MaxUint32 {
		return 0, fmt.Errorf("peer count %d: %w", resp, quantity.ErrOverflow)
	}
	return uint32(resp), nil
}

// GetBlockNumber returns the current chain height.
func (c *Client) GetBlockNumber(ctx context.Context, url string) (uint64, error) {
	var resp quantity.Uint64
	if err := c.performRequest(ctx, url, MethodBlockNumber, nil, &resp); err != nil {
		return 0, err
	}
	return uint64(resp), nil
}

// SendTransaction submits a hex-encoded signed transaction, see
// GenerateTransaction.
func (c *Client) SendTransaction(ctx context.Context, url string, signedHex string) (*result.TxResponse, error) {
	var (
		params = []any{signedHex}
		resp   = new(result.TxResponse)
	)
	if err := c.performRequest(ctx, url, MethodSendTransaction, params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetBlockByHash returns a block by its hash, with full transactions or only
// their hashes. Blocks are cached, every call returns its own copy.
func (c *Client) GetBlockByHash(ctx context.Context, url string, hash util.Uint256, full bool) (*result.Block, error) {
	key := blockKey{hash: hash, full: full}
	if b, ok := c.blocks.Get(key); ok {
		return b.(*result.Block).Copy(), nil
	}
	var (
		params = []any{hash, full}
		resp   = new(result.Block)
	)
	if err := c.performRequest(ctx, url, MethodGetBlockByHash, params, resp); err != nil {
		return nil, err
	}
	c.blocks.Add(key, resp.Copy())
	return resp, nil
}

// GetBlockByNumber returns a block at the given height (latest if nil).
func (c *Client) GetBlockByNumber(ctx context.Context, url string, height *uint64, full bool) (*result.Block, error) {
	var (
		params = []any{quantity.Tag(height), full}
		resp   = new(result.Block)
	)
	if err := c.performRequest(ctx, url, MethodGetBlockByNumber, params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetTransactionReceipt returns the receipt of a transaction. ErrNoResult is
// returned for a transaction that is not yet included into a block.
func (c *Client) GetTransactionReceipt(ctx context.Context, url string, hash util.Uint256) (*result.Receipt, error) {
	var (
		params = []any{hash}
		resp   = new(result.Receipt)
	)
	if err := c.performRequest(ctx, url, MethodGetTransactionReceipt, params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetLogs returns logs matching the filter.
func (c *Client) GetLogs(ctx context.Context, url string, filter citarpc.LogFilter) ([]result.Log, error) {
	var resp []result.Log
	if err := c.performRequest(ctx, url, MethodGetLogs, []any{filter}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Call executes a read-only contract call at the given height and returns
// its output.
func (c *Client) Call(ctx context.Context, url string, call citarpc.CallRequest, height *uint64) ([]byte, error) {
	var resp util.HexBytes
	if err := c.performRequest(ctx, url, MethodCall, []any{call, quantity.Tag(height)}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetTransaction returns a transaction by its hash.
func (c *Client) GetTransaction(ctx context.Context, url string, hash util.Uint256) (*result.Transaction, error) {
	var (
		params = []any{hash}
		resp   = new(result.Transaction)
	)
	if err := c.performRequest(ctx, url, MethodGetTransaction, params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetTransactionCount returns the number of transactions sent from addr.
func (c *Client) GetTransactionCount(ctx context.Context, url string, addr util.Uint160, height *uint64) (uint64, error) {
	var resp quantity.Uint64
	if err := c.performRequest(ctx, url, MethodGetTransactionCount, []any{addr, quantity.Tag(height)}, &resp); err != nil {
		return 0, err
	}
	return uint64(resp), nil
}

// GetCode returns the code of the contract at addr.
func (c *Client) GetCode(ctx context.Context, url string, addr util.Uint160, height *uint64) ([]byte, error) {
	return c.getAddressBytes(ctx, url, MethodGetCode, addr, height)
}

// GetAbi returns the ABI stored for the contract at addr.
func (c *Client) GetAbi(ctx context.Context, url string, addr util.Uint160, height *uint64) ([]byte, error) {
	return c.getAddressBytes(ctx, url, MethodGetAbi, addr, height)
}

func (c *Client) getAddressBytes(ctx context.Context, url string, method string, addr util.Uint160, height *uint64) ([]byte, error) {
	var resp util.HexBytes
	if err := c.performRequest(ctx, url, method, []any{addr, quantity.Tag(height)}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetBalance returns the balance of addr.
func (c *Client) GetBalance(ctx context.Context, url string, addr util.Uint160, height *uint64) (*uint256.Int, error) {
	var resp quantity.U256
	if err := c.performRequest(ctx, url, MethodGetBalance, []any{addr, quantity.Tag(height)}, &resp); err != nil {
		return nil, err
	}
	return &resp.Int, nil
}

// NewFilter installs a log filter on the node and returns its id.
func (c *Client) NewFilter(ctx context.Context, url string, filter citarpc.LogFilter) (uint64, error) {
	var resp quantity.Uint64
	if err := c.performRequest(ctx, url, MethodNewFilter, []any{filter}, &resp); err != nil {
		return 0, err
	}
	return uint64(resp), nil
}

// NewBlockFilter installs a new block filter on the node and returns its id.
func (c *Client) NewBlockFilter(ctx context.Context, url string) (uint64, error) {
	var resp quantity.Uint64
	if err := c.performRequest(ctx, url, MethodNewBlockFilter, nil, &resp); err != nil {
		return 0, err
	}
	return uint64(resp), nil
}

// UninstallFilter removes the filter, false is returned if there was no such
// filter.
func (c *Client) UninstallFilter(ctx context.Context, url string, id uint64) (bool, error) {
	var resp bool
	if err := c.performRequest(ctx, url, MethodUninstallFilter, []any{quantity.Uint64(id)}, &resp); err != nil {
		return false, err
	}
	return resp, nil
}

// GetFilterChanges returns the changes since the last poll of the filter.
// The format depends on the filter type: block hashes for block filters and
// logs for log filters, so it's returned undecoded.
func (c *Client) GetFilterChanges(ctx context.Context, url string, id uint64) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.performRequest(ctx, url, MethodGetFilterChanges, []any{quantity.Uint64(id)}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetFilterLogs returns all logs matching the log filter.
func (c *Client) GetFilterLogs(ctx context.Context, url string, id uint64) ([]result.Log, error) {
	var resp []result.Log
	if err := c.performRequest(ctx, url, MethodGetFilterLogs, []any{quantity.Uint64(id)}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetTransactionProof returns the inclusion proof of a transaction.
func (c *Client) GetTransactionProof(ctx context.Context, url string, hash util.Uint256) ([]byte, error) {
	var resp util.HexBytes
	if err := c.performRequest(ctx, url, MethodGetTransactionProof, []any{hash}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetMetaData returns the chain metadata at the given height.
func (c *Client) GetMetaData(ctx context.Context, url string, height *uint64) (*result.MetaData, error) {
	var (
		params = []any{quantity.Tag(height)}
		resp   = new(result.MetaData)
	)
	if err := c.performRequest(ctx, url, MethodGetMetaData, params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

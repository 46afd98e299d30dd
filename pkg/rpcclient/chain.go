package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/citahub/cita-go/pkg/citarpc"
	"github.com/citahub/cita-go/pkg/citarpc/result"
	"github.com/citahub/cita-go/pkg/encoding/quantity"
)

// ErrMalformedMetadata is returned by ResolveChainID when the metadata
// returned by the node has no valid chain id.
var ErrMalformedMetadata = errors.New("malformed chain metadata")

// ResolveChainID returns the chain id. The configured or previously resolved
// value is returned without any network activity, otherwise it's requested
// from the node at url with cita_getMetaData and cached. Malformed metadata
// yields zero and ErrMalformedMetadata, nothing is cached in this case.
func (c *Client) ResolveChainID(ctx context.Context, url string) (uint32, error) {
	if id, ok := c.ChainID(); ok {
		return id, nil
	}
	res := c.Dispatch(ctx, []Target{{
		URL:    url,
		Params: citarpc.NewRequest(MethodGetMetaData, quantity.Latest),
	}})[0]
	if res.Err != nil {
		return 0, res.Err
	}
	if res.Response.Error != nil {
		return 0, res.Response.Error
	}
	id, err := chainIDFromMetadata(res.Response)
	if err != nil {
		return 0, err
	}

	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()
	c.chainID, c.chainIDSet = id, true
	return id, nil
}

func chainIDFromMetadata(resp *citarpc.Response) (uint32, error) {
	if !resp.IsMap() {
		return 0, fmt.Errorf("%w: result is not an object", ErrMalformedMetadata)
	}
	m, err := resp.Map()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}
	raw, ok := m["chainId"]
	if !ok {
		return 0, fmt.Errorf("%w: no chainId", ErrMalformedMetadata)
	}
	var id quantity.Uint64
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, fmt.Errorf("%w: bad chainId %s: %v", ErrMalformedMetadata, raw, err)
	}
	if id > math.MaxUint32 {
		return 0, fmt.Errorf("%w: chainId %d is too big", ErrMalformedMetadata, id)
	}
	return uint32(id), nil
}

// TransferData builds, signs and sends a transaction with the given payload
// to the node at url. An empty to deploys a contract. The chain id is
// resolved if needed and the validity period is based on the current height
// of the node.
func (c *Client) TransferData(ctx context.Context, url string, payloadHex string, to string) (*result.TxResponse, error) {
	if _, err := c.ResolveChainID(ctx, url); err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	height, err := c.GetBlockNumber(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get block number: %w", err)
	}
	tx, err := c.GenerateTransaction(payloadHex, to, height)
	if err != nil {
		return nil, err
	}
	return c.SendTransaction(ctx, url, tx)
}

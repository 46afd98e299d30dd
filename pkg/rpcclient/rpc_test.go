package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/citahub/cita-go/pkg/citarpc"
	"github.com/citahub/cita-go/pkg/citarpc/result"
	"github.com/citahub/cita-go/pkg/util"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

const (
	testHash    = "0x0102030405060708091011121314151617181920212223242526272829303132"
	testAddress = "0x2c7536e3605d9c16a7a3d7b1898e529396a65c23"
)

type rpcClientTestCase struct {
	name           string
	invoke         func(c *Client, url string) (any, error)
	method         string
	params         string
	serverResponse string
	result         func(t *testing.T) any
}

func mustUint256(t *testing.T, s string) util.Uint256 {
	u, err := util.Uint256DecodeString(s)
	require.NoError(t, err)
	return u
}

func mustUint160(t *testing.T, s string) util.Uint160 {
	u, err := util.Uint160DecodeString(s)
	require.NoError(t, err)
	return u
}

func testAddr() util.Uint160 {
	u, _ := util.Uint160DecodeString(testAddress)
	return u
}

func heightPtr(h uint64) *uint64 {
	return &h
}

var rpcClientTestCases = []rpcClientTestCase{
	{
		name: "GetNetPeerCount",
		invoke: func(c *Client, url string) (any, error) {
			return c.GetNetPeerCount(context.Background(), url)
		},
		method:         MethodNetPeerCount,
		params:         `[]`,
		serverResponse: `"0x3"`,
		result:         func(*testing.T) any { return uint32(3) },
	},
	{
		name: "GetBlockNumber",
		invoke: func(c *Client, url string) (any, error) {
			return c.GetBlockNumber(context.Background(), url)
		},
		method:         MethodBlockNumber,
		params:         `[]`,
		serverResponse: `"0x1d0"`,
		result:         func(*testing.T) any { return uint64(464) },
	},
	{
		name: "SendTransaction",
		invoke: func(c *Client, url string) (any, error) {
			return c.SendTransaction(context.Background(), url, "0a28")
		},
		method:         MethodSendTransaction,
		params:         `["0a28"]`,
		serverResponse: `{"hash":"` + testHash + `","status":"OK"}`,
		result: func(t *testing.T) any {
			return &result.TxResponse{Hash: mustUint256(t, testHash), Status: "OK"}
		},
	},
	{
		name: "GetBlockByNumber",
		invoke: func(c *Client, url string) (any, error) {
			b, err := c.GetBlockByNumber(context.Background(), url, heightPtr(16), false)
			if err != nil {
				return nil, err
			}
			return b.Hash, nil
		},
		method:         MethodGetBlockByNumber,
		params:         `["0x10",false]`,
		serverResponse: `{"version":0,"hash":"` + testHash + `","header":{"number":"0x10"},"body":{"transactions":[]}}`,
		result:         func(t *testing.T) any { return mustUint256(t, testHash) },
	},
	{
		name: "GetTransactionReceipt",
		invoke: func(c *Client, url string) (any, error) {
			r, err := c.GetTransactionReceipt(context.Background(), url, util.Uint256{})
			if err != nil {
				return nil, err
			}
			return uint64(r.BlockNumber), nil
		},
		method:         MethodGetTransactionReceipt,
		params:         `["0x0000000000000000000000000000000000000000000000000000000000000000"]`,
		serverResponse: `{"transactionHash":"` + testHash + `","blockHash":"` + testHash + `","blockNumber":"0x2","logs":[]}`,
		result:         func(*testing.T) any { return uint64(2) },
	},
	{
		name: "GetLogs",
		invoke: func(c *Client, url string) (any, error) {
			return c.GetLogs(context.Background(), url, citarpc.LogFilter{FromBlock: "0x1", ToBlock: "latest"})
		},
		method:         MethodGetLogs,
		params:         `[{"fromBlock":"0x1","toBlock":"latest"}]`,
		serverResponse: `[]`,
		result:         func(*testing.T) any { return []result.Log{} },
	},
	{
		name: "Call",
		invoke: func(c *Client, url string) (any, error) {
			return c.Call(context.Background(), url, citarpc.CallRequest{To: testAddr(), Data: []byte{0x12}}, nil)
		},
		method:         MethodCall,
		params:         `[{"to":"` + testAddress + `","data":"0x12"},"latest"]`,
		serverResponse: `"0x0001"`,
		result:         func(*testing.T) any { return []byte{0, 1} },
	},
	{
		name: "GetTransaction",
		invoke: func(c *Client, url string) (any, error) {
			tx, err := c.GetTransaction(context.Background(), url, util.Uint256{})
			if err != nil {
				return nil, err
			}
			return []byte(tx.Content), nil
		},
		method:         MethodGetTransaction,
		params:         `["0x0000000000000000000000000000000000000000000000000000000000000000"]`,
		serverResponse: `{"hash":"` + testHash + `","content":"0xabcd","blockNumber":"0x1","blockHash":"` + testHash + `","index":"0x0"}`,
		result:         func(*testing.T) any { return []byte{0xab, 0xcd} },
	},
	{
		name: "GetTransactionCount",
		invoke: func(c *Client, url string) (any, error) {
			return c.GetTransactionCount(context.Background(), url, testAddr(), heightPtr(255))
		},
		method:         MethodGetTransactionCount,
		params:         `["` + testAddress + `","0xff"]`,
		serverResponse: `"0x7"`,
		result:         func(*testing.T) any { return uint64(7) },
	},
	{
		name: "GetCode",
		invoke: func(c *Client, url string) (any, error) {
			return c.GetCode(context.Background(), url, testAddr(), nil)
		},
		method:         MethodGetCode,
		params:         `["` + testAddress + `","latest"]`,
		serverResponse: `"0x6060"`,
		result:         func(*testing.T) any { return []byte{0x60, 0x60} },
	},
	{
		name: "GetAbi",
		invoke: func(c *Client, url string) (any, error) {
			return c.GetAbi(context.Background(), url, testAddr(), nil)
		},
		method:         MethodGetAbi,
		params:         `["` + testAddress + `","latest"]`,
		serverResponse: `"0x5b5d"`,
		result:         func(*testing.T) any { return []byte("[]") },
	},
	{
		name: "GetBalance",
		invoke: func(c *Client, url string) (any, error) {
			return c.GetBalance(context.Background(), url, testAddr(), nil)
		},
		method:         MethodGetBalance,
		params:         `["` + testAddress + `","latest"]`,
		serverResponse: `"0xde0b6b3a7640000"`,
		result:         func(*testing.T) any { return uint256.NewInt(1000000000000000000) },
	},
	{
		name: "NewFilter",
		invoke: func(c *Client, url string) (any, error) {
			return c.NewFilter(context.Background(), url, citarpc.LogFilter{Address: []util.Uint160{testAddr()}})
		},
		method:         MethodNewFilter,
		params:         `[{"address":["` + testAddress + `"]}]`,
		serverResponse: `"0x1"`,
		result:         func(*testing.T) any { return uint64(1) },
	},
	{
		name: "NewBlockFilter",
		invoke: func(c *Client, url string) (any, error) {
			return c.NewBlockFilter(context.Background(), url)
		},
		method:         MethodNewBlockFilter,
		params:         `[]`,
		serverResponse: `"0x2"`,
		result:         func(*testing.T) any { return uint64(2) },
	},
	{
		name: "UninstallFilter",
		invoke: func(c *Client, url string) (any, error) {
			return c.UninstallFilter(context.Background(), url, 10)
		},
		method:         MethodUninstallFilter,
		params:         `["0xa"]`,
		serverResponse: `true`,
		result:         func(*testing.T) any { return true },
	},
	{
		name: "GetFilterChanges",
		invoke: func(c *Client, url string) (any, error) {
			return c.GetFilterChanges(context.Background(), url, 2)
		},
		method:         MethodGetFilterChanges,
		params:         `["0x2"]`,
		serverResponse: `["` + testHash + `"]`,
		result:         func(*testing.T) any { return json.RawMessage(`["` + testHash + `"]`) },
	},
	{
		name: "GetFilterLogs",
		invoke: func(c *Client, url string) (any, error) {
			return c.GetFilterLogs(context.Background(), url, 1)
		},
		method:         MethodGetFilterLogs,
		params:         `["0x1"]`,
		serverResponse: `[{"address":"` + testAddress + `","topics":[],"data":"0x01","blockHash":"` + testHash + `","transactionHash":"` + testHash + `","blockNumber":"0x1","logIndex":"0x0"}]`,
		result: func(t *testing.T) any {
			return []result.Log{{
				Address:         mustUint160(t, testAddress),
				Topics:          []util.Uint256{},
				Data:            util.HexBytes{1},
				BlockHash:       mustUint256(t, testHash),
				TransactionHash: mustUint256(t, testHash),
				BlockNumber:     1,
			}}
		},
	},
	{
		name: "GetTransactionProof",
		invoke: func(c *Client, url string) (any, error) {
			return c.GetTransactionProof(context.Background(), url, util.Uint256{})
		},
		method:         MethodGetTransactionProof,
		params:         `["0x0000000000000000000000000000000000000000000000000000000000000000"]`,
		serverResponse: `"0xf0"`,
		result:         func(*testing.T) any { return []byte{0xf0} },
	},
	{
		name: "GetMetaData",
		invoke: func(c *Client, url string) (any, error) {
			m, err := c.GetMetaData(context.Background(), url, nil)
			if err != nil {
				return nil, err
			}
			return m.ChainID, nil
		},
		method:         MethodGetMetaData,
		params:         `["latest"]`,
		serverResponse: `{"chainId":1,"chainName":"test-chain","validators":["` + testAddress + `"]}`,
		result:         func(*testing.T) any { return uint32(1) },
	},
}

func TestRPCClient(t *testing.T) {
	for _, tc := range rpcClientTestCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			srv := initTestServer(t, func(req rpcRequest) string {
				assert.Equal(t, tc.method, req.Method)
				assert.JSONEq(t, tc.params, string(req.Params))
				return resultFor(req.ID, tc.serverResponse)
			})
			c := newTestClient(t, Options{})

			actual, err := tc.invoke(c, srv.URL)
			require.NoError(t, err)
			require.Equal(t, tc.result(t), actual)
		})
	}
}

func TestRPCClientNullResult(t *testing.T) {
	srv := initTestServer(t, func(req rpcRequest) string {
		return resultFor(req.ID, `null`)
	})
	c := newTestClient(t, Options{})

	_, err := c.GetTransactionReceipt(context.Background(), srv.URL, util.Uint256{})
	require.ErrorIs(t, err, ErrNoResult)
}

func TestRPCClientBadResult(t *testing.T) {
	srv := initTestServer(t, func(req rpcRequest) string {
		return resultFor(req.ID, `"0x100000000"`)
	})
	c := newTestClient(t, Options{})

	_, err := c.GetNetPeerCount(context.Background(), srv.URL)
	require.Error(t, err)
	_, err = c.GetCode(context.Background(), srv.URL, util.Uint160{}, nil)
	require.Error(t, err)
}

func TestGetBlockByHashCached(t *testing.T) {
	var calls atomic.Int32
	srv := initTestServer(t, func(req rpcRequest) string {
		calls.Inc()
		assert.Equal(t, MethodGetBlockByHash, req.Method)
		return resultFor(req.ID, `{"version":0,"hash":"`+testHash+`","header":{"number":"0x5"},"body":{"transactions":["`+testHash+`"]}}`)
	})
	c := newTestClient(t, Options{BlockCacheSize: 2})
	h := mustUint256(t, testHash)

	for i := 0; i < 3; i++ {
		b, err := c.GetBlockByHash(context.Background(), srv.URL, h, false)
		require.NoError(t, err)
		require.Equal(t, uint64(5), uint64(b.Header.Number))
		require.Len(t, b.Body.Transactions, 1)
	}
	require.Equal(t, int32(1), calls.Load())

	_, err := c.GetBlockByHash(context.Background(), srv.URL, h, true)
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestGetBlockByHashCachedCopy(t *testing.T) {
	srv := initTestServer(t, func(req rpcRequest) string {
		return resultFor(req.ID, `{"version":0,"hash":"`+testHash+`","header":{"number":"0x5","proof":{"Tendermint":{}}},"body":{"transactions":[{"hash":"`+testHash+`","content":"0x0a0b"}]}}`)
	})
	c := newTestClient(t, Options{BlockCacheSize: 2})
	h := mustUint256(t, testHash)

	b, err := c.GetBlockByHash(context.Background(), srv.URL, h, true)
	require.NoError(t, err)
	b.Header.Number = 100
	b.Header.Proof[0] = 'x'
	b.Body.Transactions[0].Content[0] = 0xff
	b.Body.Transactions = append(b.Body.Transactions, result.BlockTransaction{})

	for i := 0; i < 2; i++ {
		cached, err := c.GetBlockByHash(context.Background(), srv.URL, h, true)
		require.NoError(t, err)
		require.Equal(t, uint64(5), uint64(cached.Header.Number))
		require.JSONEq(t, `{"Tendermint":{}}`, string(cached.Header.Proof))
		require.Len(t, cached.Body.Transactions, 1)
		require.Equal(t, []byte{0x0a, 0x0b}, []byte(cached.Body.Transactions[0].Content))
		cached.Body.Transactions[0].Content[1] = 0xff
	}
}

type partialQuerier struct {
	UnimplementedQuerier
}

func (partialQuerier) GetBlockNumber(context.Context, string) (uint64, error) {
	return 10, nil
}

func TestUnimplementedQuerier(t *testing.T) {
	var q Querier = partialQuerier{}

	h, err := q.GetBlockNumber(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, uint64(10), h)

	_, err = q.GetMetaData(context.Background(), "", nil)
	require.True(t, errors.Is(err, ErrNotImplemented))
	_, err = q.UninstallFilter(context.Background(), "", 1)
	require.ErrorIs(t, err, ErrNotImplemented)
}

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/citahub/cita-go/cli/app"
	"github.com/citahub/cita-go/cli/input"
	"github.com/citahub/cita-go/pkg/core/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

// executor represents context for a test instance.
// It can be safely used in multiple tests, but not in parallel.
type executor struct {
	// CLI is a cli application to test.
	CLI *cli.App
	// Node is a node mock to query.
	Node *httptest.Server
	// Out contains command output.
	Out *bytes.Buffer
	// Err contains command errors.
	Err *bytes.Buffer
	// In contains command input.
	In *bytes.Buffer

	lock sync.Mutex
	sent []string
}

type readWriter struct {
	io.Reader
	io.Writer
}

type rpcRequest struct {
	ID     uint64            `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func newExecutor(t *testing.T) *executor {
	e := &executor{
		CLI: app.New(),
		Out: bytes.NewBuffer(nil),
		Err: bytes.NewBuffer(nil),
		In:  bytes.NewBuffer(nil),
	}
	e.CLI.Writer = e.Out
	e.CLI.ErrWriter = e.Err
	e.Node = httptest.NewServer(http.HandlerFunc(e.serveRPC(t)))
	t.Cleanup(func() {
		e.Close(t)
	})
	return e
}

// serveRPC answers node requests with fixed results, sent transactions are
// saved.
func (e *executor) serveRPC(t *testing.T) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		var res string
		switch req.Method {
		case "cita_blockNumber":
			res = `"0x64"`
		case "cita_getMetaData":
			res = `{"chainId":1,"chainName":"test"}`
		case "cita_sendTransaction":
			var raw string
			assert.NoError(t, json.Unmarshal(req.Params[0], &raw))
			utx, err := transaction.DecodeUnverifiedString(raw)
			assert.NoError(t, err)
			e.lock.Lock()
			e.sent = append(e.sent, raw)
			e.lock.Unlock()
			res = fmt.Sprintf(`{"hash":"%s","status":"OK"}`, utx.Hash())
		default:
			_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"Method not found"}}`, req.ID)
			return
		}
		_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":%s}`, req.ID, res)
	}
}

func (e *executor) Close(t *testing.T) {
	input.Terminal = nil
	e.Node.Close()
}

// lastSent returns the last transaction sent to the node.
func (e *executor) lastSent(t *testing.T) *transaction.UnverifiedTransaction {
	e.lock.Lock()
	defer e.lock.Unlock()
	require.NotEmpty(t, e.sent)
	utx, err := transaction.DecodeUnverifiedString(e.sent[len(e.sent)-1])
	require.NoError(t, err)
	return utx
}

func (e *executor) decodeOutput(t *testing.T, v any) {
	require.NoError(t, json.NewDecoder(e.Out).Decode(v))
}

func (e *executor) getNextLine(t *testing.T) string {
	line, err := e.Out.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSuffix(line, "\n")
}

func (e *executor) checkNextLine(t *testing.T, expected string) {
	line := e.getNextLine(t)
	e.checkLine(t, line, expected)
}

func (e *executor) checkLine(t *testing.T, line, expected string) {
	require.Regexp(t, expected, line)
}

func (e *executor) checkEOF(t *testing.T) {
	_, err := e.Out.ReadString('\n')
	require.True(t, errors.Is(err, io.EOF))
}

func setExitFunc() <-chan int {
	ch := make(chan int, 1)
	cli.OsExiter = func(code int) {
		ch <- code
	}
	return ch
}

func checkExit(t *testing.T, ch <-chan int, code int) {
	select {
	case c := <-ch:
		require.Equal(t, code, c)
	default:
		if code != 0 {
			require.Fail(t, "no exit was called")
		}
	}
}

// RunWithError runs command and checks that is exits with error.
func (e *executor) RunWithError(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.Error(t, e.run(args...))
	checkExit(t, ch, 1)
}

// Run runs command and checks that there were no errors.
func (e *executor) Run(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.NoError(t, e.run(args...))
	checkExit(t, ch, 0)
}

func (e *executor) run(args ...string) error {
	e.Out.Reset()
	e.Err.Reset()
	input.Terminal = term.NewTerminal(readWriter{
		Reader: e.In,
		Writer: io.Discard,
	}, "")
	err := e.CLI.Run(args)
	input.Terminal = nil
	e.In.Reset()
	return err
}

package console

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chzyer/readline"
	"github.com/citahub/cita-go/cli/options"
	"github.com/citahub/cita-go/pkg/rpcclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type rpcRequest struct {
	ID     uint64 `json:"id"`
	Method string `json:"method"`
}

// syncBuffer is a buffer that can be written by the console and read by the
// test concurrently.
type syncBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}

func newNode(t *testing.T, height string) string {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch req.Method {
		case "cita_blockNumber":
			_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":"%s"}`, req.ID, height)
		case "cita_getMetaData":
			_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":{"chainId":42}}`, req.ID)
		default:
			_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":{"code":-32601,"message":"Method not found"}}`, req.ID)
		}
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

type executor struct {
	in   *bytes.Buffer
	out  *syncBuffer
	exit atomic.Bool
	cli  *Console
}

func newTestConsole(t *testing.T, urls ...string) *executor {
	c, err := rpcclient.New(rpcclient.Options{})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	node := &options.Node{Client: c, Endpoints: urls, Log: zap.NewNop()}

	e := &executor{
		in:  bytes.NewBuffer(nil),
		out: new(syncBuffer),
	}
	e.cli, err = NewWithConfig(node, time.Second, func(int) { e.exit.Store(true) }, &readline.Config{
		Prompt:         "",
		Stdin:          io.NopCloser(e.in),
		Stdout:         e.out,
		Stderr:         e.out,
		FuncIsTerminal: func() bool { return false },
	})
	require.NoError(t, err)
	return e
}

func (e *executor) runProg(t *testing.T, commands ...string) string {
	e.in.WriteString(strings.Join(append(commands, "exit"), "\n") + "\n")
	go func() { _ = e.cli.Run() }()
	require.Eventually(t, e.exit.Load, 4*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return strings.Contains(e.out.String(), "Bye!") }, time.Second, 10*time.Millisecond)
	return e.out.String()
}

func TestConsole(t *testing.T) {
	u1, u2 := newNode(t, "0x10"), newNode(t, "0x20")
	e := newTestConsole(t, u1, u2)
	out := e.runProg(t,
		"height",
		"chain-id",
		"nodes",
		`call cita_blockNumber`,
		`call --all cita_blockNumber`,
		`call --raw cita_unknown`,
		`call cita_unknown`,
		`call`,
		`call "unterminated`,
		`height extra`,
		`unknown-command`,
	)
	for _, s := range []string{
		"16\n",
		"42\n",
		"0: " + u1 + " (main)\n",
		"1: " + u2 + "\n",
		"\"0x10\"\n",
		u1 + ":\n\"0x10\"\n" + u2 + ":\n\"0x20\"\n",
		`"message": "Method not found"`,
		"error: ",
		"Error: some requests failed",
		"Error: method is missing",
		"Error: failed to parse arguments",
		"Error: additional arguments given",
	} {
		require.Contains(t, out, s)
	}
}

package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

type rpcRequest struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

func newNode(t *testing.T, result string) string {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "cita_getMetaData", req.Method)
		assert.JSONEq(t, `["latest",true,{"a":1}]`, string(req.Params))
		_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":%s}`, req.ID, result)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func newApp(out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Writer = out
	app.ErrWriter = out
	app.Commands = NewCommands()
	return app
}

func TestCall(t *testing.T) {
	var (
		out = new(bytes.Buffer)
		u1  = newNode(t, `{"zeta":1,"alpha":"x"}`)
		u2  = newNode(t, `2`)
	)
	app := newApp(out)

	require.NoError(t, app.Run([]string{"cita-go", "rpc", "-r", u1, "-r", u2,
		"cita_getMetaData", "latest", "true", `{"a":1}`}))
	require.Equal(t, "{\n  \"zeta\": 1,\n  \"alpha\": \"x\"\n}\n", out.String())

	out.Reset()
	require.NoError(t, app.Run([]string{"cita-go", "rpc", "-r", u1, "-r", u2, "--all",
		"cita_getMetaData", "latest", "true", `{"a":1}`}))
	require.Equal(t, u1+":\n{\n  \"zeta\": 1,\n  \"alpha\": \"x\"\n}\n"+u2+":\n2\n", out.String())
}

func TestCallErrors(t *testing.T) {
	out := new(bytes.Buffer)
	app := newApp(out)
	exiter := cli.OsExiter
	cli.OsExiter = func(int) {}
	t.Cleanup(func() { cli.OsExiter = exiter })

	require.Error(t, app.Run([]string{"cita-go", "rpc", "-r", "http://127.0.0.1:1"}))
	require.Error(t, app.Run([]string{"cita-go", "rpc", "cita_blockNumber"}))
	require.Error(t, app.Run([]string{"cita-go", "rpc", "-r", "http://127.0.0.1:1", "x", "int:y"}))
}

func TestPrintOrdered(t *testing.T) {
	out := new(bytes.Buffer)
	require.NoError(t, printOrdered(out, []byte(`{"b":{"d":1,"c":2},"a":[1e30]}`)))
	require.Equal(t, "{\n  \"b\": {\n    \"d\": 1,\n    \"c\": 2\n  },\n  \"a\": [\n    1e30\n  ]\n}\n", out.String())
	require.Error(t, printOrdered(out, []byte(`{`)))
}

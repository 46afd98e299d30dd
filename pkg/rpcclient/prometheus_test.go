package rpcclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/citahub/cita-go/pkg/citarpc"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRequestMetrics(t *testing.T) {
	const method = "cita_metricsTest"
	good := initTestServer(t, func(req rpcRequest) string {
		return resultFor(req.ID, `"0x1"`)
	})
	bad := httptest.NewServer(http.NotFoundHandler())
	bad.Close()
	c := newTestClient(t, Options{})

	var (
		requests = requestsCounter.WithLabelValues(method)
		failures = failuresCounter.WithLabelValues(method)
		reqBase  = testutil.ToFloat64(requests)
		failBase = testutil.ToFloat64(failures)
	)

	res := c.Dispatch(context.Background(), []Target{{URL: good.URL, Params: citarpc.NewRequest(method)}})
	require.NoError(t, res[0].Err)
	require.Equal(t, reqBase+1, testutil.ToFloat64(requests))
	require.Equal(t, failBase, testutil.ToFloat64(failures))

	res = c.Dispatch(context.Background(), []Target{{URL: bad.URL, Params: citarpc.NewRequest(method)}})
	require.Error(t, res[0].Err)
	require.Equal(t, reqBase+2, testutil.ToFloat64(requests))
	require.Equal(t, failBase+1, testutil.ToFloat64(failures))
	require.Positive(t, testutil.CollectAndCount(requestDuration))
}

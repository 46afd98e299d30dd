package rpcclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/citahub/cita-go/pkg/citarpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoResult is returned when the node answers with a null result.
var ErrNoResult = errors.New("null result")

// Target is a single request of a dispatch: the endpoint and the parameter
// set to send there. The id is assigned by the dispatcher.
type Target struct {
	URL    string
	Params citarpc.Params
}

// Result is an outcome of a single request of a dispatch. Exactly one of
// Response and Err is set. JSON-RPC errors returned by the node are not
// request failures, they're stored in Response.Error.
type Result struct {
	URL      string
	ID       uint64
	Response *citarpc.Response
	Err      error
}

// DispatchError describes the first failed request of a batch.
type DispatchError struct {
	URL string
	ID  uint64
	Err error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("request %d to %s failed: %v", e.ID, e.URL, e.Err)
}

// Unwrap returns the underlying request error.
func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Dispatch sends all targets concurrently (up to MaxConcurrentRequests at a
// time) and waits for all of them to complete. Request ids are allocated in
// targets order before anything is sent, results are returned in the same
// order. Failure of one request doesn't affect the others.
func (c *Client) Dispatch(ctx context.Context, targets []Target) []Result {
	var (
		results = make([]Result, len(targets))
		reqs    = make([]citarpc.Params, len(targets))
		g       errgroup.Group
	)
	for i, t := range targets {
		results[i].URL = t.URL
		results[i].ID = c.NextID()
		reqs[i], results[i].Err = t.Params.WithID(results[i].ID)
	}
	if c.opts.MaxConcurrentRequests > 0 {
		g.SetLimit(c.opts.MaxConcurrentRequests)
	}
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		i := i
		g.Go(func() error {
			results[i].Response, results[i].Err = c.send(ctx, results[i].URL, results[i].ID, reqs[i])
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// SendRequest sends the same parameter set to every URL, each request gets
// its own id. Responses are returned in urls order. The first failed request
// (in urls order) fails the whole call with *DispatchError.
func (c *Client) SendRequest(ctx context.Context, urls []string, params citarpc.Params) ([]*citarpc.Response, error) {
	targets := make([]Target, len(urls))
	for i := range urls {
		targets[i] = Target{URL: urls[i], Params: params}
	}
	return collect(c.Dispatch(ctx, targets))
}

// SendRequestWithMultipleParams sends every parameter set to the given URL,
// ids are allocated in params order. Responses are returned in the same
// order. The first failed request fails the whole call with *DispatchError.
func (c *Client) SendRequestWithMultipleParams(ctx context.Context, url string, params []citarpc.Params) ([]*citarpc.Response, error) {
	targets := make([]Target, len(params))
	for i := range params {
		targets[i] = Target{URL: url, Params: params[i]}
	}
	return collect(c.Dispatch(ctx, targets))
}

func collect(results []Result) ([]*citarpc.Response, error) {
	resps := make([]*citarpc.Response, len(results))
	for i := range results {
		if results[i].Err != nil {
			return nil, &DispatchError{
				URL: results[i].URL,
				ID:  results[i].ID,
				Err: results[i].Err,
			}
		}
		resps[i] = results[i].Response
	}
	return resps, nil
}

func (c *Client) send(ctx context.Context, url string, id uint64, p citarpc.Params) (*citarpc.Response, error) {
	var (
		method = p.Method()
		start  = time.Now()
	)
	c.log.Debug("sending request",
		zap.String("url", url),
		zap.String("method", method),
		zap.Uint64("id", id))
	resp, err := c.requestF(ctx, url, p)
	addRequestMetrics(method, time.Since(start), err)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("url", url),
			zap.Uint64("id", id),
			zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// performRequest sends a single request to url and decodes its result into
// v. JSON-RPC errors are returned as *citarpc.Error.
func (c *Client) performRequest(ctx context.Context, url string, method string, p []any, v any) error {
	res := c.Dispatch(ctx, []Target{{URL: url, Params: citarpc.NewRequest(method, p...)}})[0]
	if res.Err != nil {
		return res.Err
	}
	if res.Response.Error != nil {
		return res.Response.Error
	}
	if res.Response.IsNull() {
		return fmt.Errorf("%s: %w", method, ErrNoResult)
	}
	if err := res.Response.DecodeResult(v); err != nil {
		return fmt.Errorf("%s: failed to decode result: %w", method, err)
	}
	return nil
}

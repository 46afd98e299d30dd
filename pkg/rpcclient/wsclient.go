package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/citahub/cita-go/pkg/citarpc"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// WSClient is a websocket-enabled RPC client. It has the same API as Client,
// but keeps a persistent connection to every endpoint used. Endpoints are
// websocket URLs like `ws://1.2.3.4:4337`, connections are established on the
// first request to the endpoint and reestablished after failures.
type WSClient struct {
	Client

	dialer websocket.Dialer

	dials     singleflight.Group
	connsLock sync.Mutex
	conns     map[string]*wsConn
	closed    bool
}

// wsConn is a single endpoint connection with its reader and writer
// goroutines. Responses are matched to requests by id.
type wsConn struct {
	ws       *websocket.Conn
	log      *zap.Logger
	requests chan citarpc.Params
	done     chan struct{}

	lock      sync.Mutex
	err       error
	receivers map[uint64]chan wsResponse
}

type wsResponse struct {
	resp *citarpc.Response
	err  error
}

const (
	// Message limit for receiving side.
	wsReadLimit = 10 * 1024 * 1024

	// Disconnection timeout.
	wsPongLimit = 60 * time.Second

	// Ping period for connection liveness check.
	wsPingPeriod = wsPongLimit / 2

	// Write deadline.
	wsWriteLimit = wsPingPeriod / 2
)

// ErrWSConnLost is returned for requests pending when the connection breaks.
var ErrWSConnLost = errors.New("websocket connection lost")

var errClientClosed = errors.New("client is closed")

// NewWS returns a new WSClient ready to use. No connections are made until
// the first request, ctx is only used for the construction.
func NewWS(ctx context.Context, opts Options) (*WSClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wsc := &WSClient{
		conns: make(map[string]*wsConn),
	}
	if err := initClient(&wsc.Client, opts); err != nil {
		return nil, err
	}
	wsc.dialer = websocket.Dialer{HandshakeTimeout: wsc.opts.DialTimeout}
	wsc.requestF = wsc.makeWSRequest
	return wsc, nil
}

// Close closes all connections rendering this client instance unusable.
func (c *WSClient) Close() {
	c.connsLock.Lock()
	conns := c.conns
	c.conns = nil
	c.closed = true
	c.connsLock.Unlock()

	for _, conn := range conns {
		conn.close(nil)
	}
	c.Client.Close()
}

// getConn returns a live connection to url, dialing it if needed. Dials
// happen outside of connsLock so that a stalled endpoint doesn't block
// requests to others, concurrent dials of the same url are merged.
func (c *WSClient) getConn(ctx context.Context, url string) (*wsConn, error) {
	conn, err := c.cachedConn(url)
	if conn != nil || err != nil {
		return conn, err
	}
	ch := c.dials.DoChan(url, func() (any, error) {
		return c.dial(url)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*wsConn), nil
	}
}

// cachedConn returns an established connection to url if there is one.
func (c *WSClient) cachedConn(url string) (*wsConn, error) {
	c.connsLock.Lock()
	defer c.connsLock.Unlock()
	if c.closed {
		return nil, errClientClosed
	}
	if conn, ok := c.conns[url]; ok {
		select {
		case <-conn.done:
			delete(c.conns, url)
		default:
			return conn, nil
		}
	}
	return nil, nil
}

// dial is not bound to any request context since its result is shared
// between requests, HandshakeTimeout limits it instead.
func (c *WSClient) dial(url string) (*wsConn, error) {
	ws, resp, err := c.dialer.DialContext(context.Background(), url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	conn := &wsConn{
		ws:        ws,
		log:       c.log.With(zap.String("url", url)),
		requests:  make(chan citarpc.Params),
		done:      make(chan struct{}),
		receivers: make(map[uint64]chan wsResponse),
	}

	c.connsLock.Lock()
	defer c.connsLock.Unlock()
	if c.closed {
		_ = ws.Close()
		return nil, errClientClosed
	}
	go conn.reader()
	go conn.writer()
	c.conns[url] = conn
	return conn, nil
}

func (c *WSClient) makeWSRequest(ctx context.Context, url string, p citarpc.Params) (*citarpc.Response, error) {
	v, _ := p.Get("id")
	id, ok := v.(uint64)
	if !ok {
		return nil, errors.New("request without id")
	}
	conn, err := c.getConn(ctx, url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.register(id)
	if err != nil {
		return nil, err
	}
	defer conn.unregister(id)

	timer := time.NewTimer(c.opts.RequestTimeout)
	defer timer.Stop()
	select {
	case conn.requests <- p:
	case <-conn.done:
		return nil, conn.error()
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, errors.New("request timeout")
	}
	select {
	case r := <-ch:
		return r.resp, r.err
	case <-conn.done:
		return nil, conn.error()
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, errors.New("response timeout")
	}
}

func (c *wsConn) register(id uint64) (chan wsResponse, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	if _, ok := c.receivers[id]; ok {
		return nil, fmt.Errorf("request %d is already pending", id)
	}
	ch := make(chan wsResponse, 1)
	c.receivers[id] = ch
	return ch, nil
}

func (c *wsConn) unregister(id uint64) {
	c.lock.Lock()
	delete(c.receivers, id)
	c.lock.Unlock()
}

func (c *wsConn) deliver(id uint64, r wsResponse) {
	c.lock.Lock()
	ch, ok := c.receivers[id]
	delete(c.receivers, id)
	c.lock.Unlock()
	if !ok {
		c.log.Debug("unexpected response", zap.Uint64("id", id))
		return
	}
	ch <- r
}

func (c *wsConn) error() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.err
}

// close shuts the connection down, it can be called multiple times.
func (c *wsConn) close(err error) {
	if err == nil {
		err = ErrWSConnLost
	}
	c.lock.Lock()
	if c.err != nil {
		c.lock.Unlock()
		return
	}
	c.err = err
	close(c.done)
	c.lock.Unlock()
	_ = c.ws.Close()
}

func (c *wsConn) reader() {
	var err error

	c.ws.SetReadLimit(wsReadLimit)
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(wsPongLimit)) })
	for {
		var msg []byte

		if err = c.ws.SetReadDeadline(time.Now().Add(wsPongLimit)); err != nil {
			break
		}
		_, msg, err = c.ws.ReadMessage()
		if err != nil {
			// Timeout/connection loss.
			break
		}
		var hdr struct {
			ID json.RawMessage `json:"id"`
		}
		if json.Unmarshal(msg, &hdr) != nil {
			c.log.Debug("malformed message", zap.ByteString("message", msg))
			continue
		}
		var id uint64
		if json.Unmarshal(hdr.ID, &id) != nil {
			c.log.Debug("message without numeric id", zap.ByteString("message", msg))
			continue
		}
		resp := new(citarpc.Response)
		if err := json.Unmarshal(msg, resp); err != nil {
			c.deliver(id, wsResponse{err: err})
			continue
		}
		c.deliver(id, wsResponse{resp: resp})
	}
	c.close(fmt.Errorf("%w: %v", ErrWSConnLost, err))
}

func (c *wsConn) writer() {
	pingTicker := time.NewTicker(wsPingPeriod)
	defer pingTicker.Stop()
	for {
		select {
		case <-c.done:
			return
		case p := <-c.requests:
			if err := c.ws.SetWriteDeadline(time.Now().Add(wsWriteLimit)); err != nil {
				c.close(err)
				return
			}
			if err := c.ws.WriteJSON(p); err != nil {
				c.close(err)
				return
			}
		case <-pingTicker.C:
			if err := c.ws.SetWriteDeadline(time.Now().Add(wsWriteLimit)); err != nil {
				c.close(err)
				return
			}
			if err := c.ws.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				c.close(err)
				return
			}
		}
	}
}

package semnet

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	clog "github.com/vilterp/semnet/pkg/log"
)

// Client sends requests over one websocket. Requests may be issued from
// several goroutines; responses are routed back by request id.
type Client struct {
	WebSocketConn *websocket.Conn
	URL           string

	// ServerClosed is closed once the connection drops.
	ServerClosed chan struct{}

	ctx     context.Context
	writeMu sync.Mutex
	mu      struct {
		sync.Mutex
		nextRequestID int
		pending       map[int]chan *Response
		err           error
	}
}

func NewClient(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	client := &Client{
		WebSocketConn: conn,
		URL:           url,
		ServerClosed:  make(chan struct{}),
		ctx:           context.Background(),
	}
	client.mu.nextRequestID = 1
	client.mu.pending = map[int]chan *Response{}
	go client.handleIncoming()
	return client, nil
}

func (c *Client) Ctx() context.Context {
	return c.ctx
}

func (c *Client) Close() error {
	return c.WebSocketConn.Close()
}

// Do assigns req an id, sends it, and waits for the matching response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	ch := make(chan *Response, 1)
	c.mu.Lock()
	if c.mu.err != nil {
		err := c.mu.err
		c.mu.Unlock()
		return nil, err
	}
	req.ID = c.mu.nextRequestID
	c.mu.nextRequestID++
	c.mu.pending[req.ID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.WebSocketConn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(req.ID)
		return nil, errors.Wrap(err, "sending request")
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			c.mu.Lock()
			defer c.mu.Unlock()
			return nil, c.mu.err
		}
		return resp, nil
	case <-ctx.Done():
		c.forget(req.ID)
		return nil, ctx.Err()
	}
}

func (c *Client) forget(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.mu.pending, id)
}

func (c *Client) handleIncoming() {
	defer close(c.ServerClosed)
	for {
		resp := &Response{}
		if err := c.WebSocketConn.ReadJSON(resp); err != nil {
			c.fail(err)
			return
		}
		c.mu.Lock()
		ch, ok := c.mu.pending[resp.ID]
		delete(c.mu.pending, resp.ID)
		c.mu.Unlock()
		if !ok {
			clog.Printf(c, "dropping response to unknown request %d", resp.ID)
			continue
		}
		ch <- resp
	}
}

// fail ends every pending request with err.
func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mu.err = errors.Wrap(err, "connection closed")
	for id, ch := range c.mu.pending {
		close(ch)
		delete(c.mu.pending, id)
	}
}

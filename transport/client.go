package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rustyeddy/tradeplatform/engine"
)

// Client holds one connection and allows a single outstanding request.
type Client struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// Dial connects to a transport Server at url (ws:// or wss://).
func Dial(ctx context.Context, url string) (*Client, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// Send writes req and waits for its reply. Context deadlines become socket
// deadlines. A failed exchange leaves the client closed.
func (c *Client) Send(ctx context.Context, req engine.TradeRequest) (engine.TradeResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return engine.TradeResponse{}, ErrClosed
	}

	env := Envelope{ID: uuid.NewString(), Request: &req}
	out, err := encode(env)
	if err != nil {
		return engine.TradeResponse{}, fmt.Errorf("encode request: %w", err)
	}

	var deadline time.Time
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)
	_ = c.conn.SetReadDeadline(deadline)

	if err := c.conn.WriteMessage(websocket.BinaryMessage, out); err != nil {
		c.closeLocked()
		return engine.TradeResponse{}, fmt.Errorf("write request: %w", err)
	}

	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		c.closeLocked()
		return engine.TradeResponse{}, fmt.Errorf("read response: %w", err)
	}

	reply, err := decode(msg)
	if err != nil {
		c.closeLocked()
		return engine.TradeResponse{}, fmt.Errorf("decode response: %w", err)
	}
	if reply.ID != env.ID {
		c.closeLocked()
		return engine.TradeResponse{}, fmt.Errorf("%w: sent %s got %s", ErrIDMismatch, env.ID, reply.ID)
	}
	if reply.Response == nil {
		return engine.TradeResponse{}, ErrNoResponse
	}
	return *reply.Response, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}

func (c *Client) closeLocked() {
	if !c.closed {
		c.closed = true
		_ = c.conn.Close()
	}
}

// Redialer is a Client that reconnects on the next Send after a failed
// exchange.
type Redialer struct {
	url string

	mu     sync.Mutex
	client *Client
}

func NewRedialer(url string) *Redialer {
	return &Redialer{url: url}
}

func (r *Redialer) Send(ctx context.Context, req engine.TradeRequest) (engine.TradeResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil || r.client.isClosed() {
		c, err := Dial(ctx, r.url)
		if err != nil {
			return engine.TradeResponse{}, err
		}
		r.client = c
	}
	return r.client.Send(ctx, req)
}

func (r *Redialer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Package transport carries trade requests and responses over a websocket.
// Every frame is one msgpack Envelope and each connection is strictly
// request then reply.
package transport

import (
	"context"
	"errors"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/rustyeddy/tradeplatform/engine"
)

var (
	ErrClosed     = errors.New("transport: client closed")
	ErrIDMismatch = errors.New("transport: response id does not match request")
	ErrNoResponse = errors.New("transport: envelope has no response")
	ErrEmptyFrame = errors.New("transport: envelope has no request")
)

// Envelope is the wire frame. Requests carry Request; replies echo ID and
// carry Response.
type Envelope struct {
	ID       string                `msgpack:"id"`
	Request  *engine.TradeRequest  `msgpack:"request,omitempty"`
	Response *engine.TradeResponse `msgpack:"response,omitempty"`
}

// Handler processes one request. *engine.Engine satisfies it.
type Handler interface {
	Process(ctx context.Context, req engine.TradeRequest) engine.TradeResponse
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req engine.TradeRequest) engine.TradeResponse

func (f HandlerFunc) Process(ctx context.Context, req engine.TradeRequest) engine.TradeResponse {
	return f(ctx, req)
}

func encode(env Envelope) ([]byte, error) {
	return msgpack.Marshal(&env)
}

func decode(b []byte) (Envelope, error) {
	var env Envelope
	err := msgpack.Unmarshal(b, &env)
	return env, err
}

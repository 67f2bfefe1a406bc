package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradeplatform/engine"
)

// Server is an http.Handler that upgrades to a websocket and answers each
// request frame with exactly one reply frame. Requests from all
// connections are handled one at a time.
type Server struct {
	handler  Handler
	log      *zap.SugaredLogger
	upgrader websocket.Upgrader

	// IdleTimeout closes a connection that sends nothing for this long.
	// Zero means no limit.
	IdleTimeout  time.Duration
	WriteTimeout time.Duration

	mu sync.Mutex
}

func NewServer(h Handler, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{
		handler: h,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		WriteTimeout: 10 * time.Second,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	s.log.Infow("transport client connected", "remote", r.RemoteAddr)
	s.serve(r.Context(), conn)
	s.log.Infow("transport client disconnected", "remote", r.RemoteAddr)
}

func (s *Server) serve(ctx context.Context, conn *websocket.Conn) {
	for {
		if s.IdleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.IdleTimeout))
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debugw("transport read ended", "error", err)
			}
			return
		}

		reply := s.handle(ctx, msg)
		out, err := encode(reply)
		if err != nil {
			s.log.Errorw("encode reply failed", "id", reply.ID, "error", err)
			return
		}
		if s.WriteTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, out); err != nil {
			s.log.Warnw("transport write failed", "id", reply.ID, "error", err)
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, msg []byte) Envelope {
	env, err := decode(msg)
	if err == nil && env.Request == nil {
		err = ErrEmptyFrame
	}
	if err != nil {
		s.log.Warnw("malformed request frame", "error", err)
		resp := engine.TradeResponse{StatusMessage: engine.MsgFailed, StatusCode: engine.ExecutionError}
		return Envelope{ID: env.ID, Response: &resp}
	}

	s.mu.Lock()
	resp := s.handler.Process(ctx, *env.Request)
	s.mu.Unlock()

	return Envelope{ID: env.ID, Response: &resp}
}

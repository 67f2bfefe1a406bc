// Package gateway is the HTTP front end. It turns REST calls into trade
// requests and forwards them to the engine.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradeplatform/engine"
)

// OrderRouter delivers a request to the engine. *transport.Redialer
// satisfies it.
type OrderRouter interface {
	Send(ctx context.Context, req engine.TradeRequest) (engine.TradeResponse, error)
}

type Deps struct {
	Router OrderRouter
	// Auth may be nil, which leaves /api open.
	Auth    *Auth
	Logger  *zap.SugaredLogger
	Timeout time.Duration
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop().Sugar()
	}
	if d.Timeout <= 0 {
		d.Timeout = 15 * time.Second
	}
	h := &handler{router: d.Router, log: d.Logger, timeout: d.Timeout}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(d.Logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		if d.Auth != nil {
			r.Use(d.Auth.Middleware)
		}
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.placeOrder)
			r.Post("/drain-all", h.closeAll(false))
			r.Post("/cancel-all", h.closeAll(true))
			r.Post("/drain", h.closeSelected(false))
			r.Post("/cancel", h.closeSelected(true))
		})
	})
	return r
}

func requestLogger(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Infow("http request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradeplatform/engine"
)

const orderDateLayout = "20060102"

type handler struct {
	router  OrderRouter
	log     *zap.SugaredLogger
	timeout time.Duration
}

type selectedOrders struct {
	OrderIDs  []int64 `json:"orderIds"`
	OrderDate string  `json:"orderDate"`
}

func (h *handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req engine.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order payload"})
		return
	}
	// Drains have their own endpoints.
	req.Drainer = nil
	h.forward(w, r, req)
}

func (h *handler) closeAll(cancel bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := parseOrderDate(r.Header.Get("orderDate"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		h.forward(w, r, engine.TradeRequest{Drainer: &engine.DrainRequest{
			Date:             date,
			IsOrderCanceled:  cancel,
			ProcessAllOrders: true,
		}})
	}
}

func (h *handler) closeSelected(cancel bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body selectedOrders
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
			return
		}
		if len(body.OrderIDs) == 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "orderIds is required"})
			return
		}
		date, err := parseOrderDate(body.OrderDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		h.forward(w, r, engine.TradeRequest{Drainer: &engine.DrainRequest{
			Date:            date,
			IsOrderCanceled: cancel,
			OrderIDs:        body.OrderIDs,
		}})
	}
}

func (h *handler) forward(w http.ResponseWriter, r *http.Request, req engine.TradeRequest) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp, err := h.router.Send(ctx, req)
	if err != nil {
		sub, _ := Subject(r)
		h.log.Errorw("upstream request failed", "path", r.URL.Path, "subject", sub, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "order service unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseOrderDate turns yyyyMMdd into the engine's YYYY-MM-DD.
func parseOrderDate(s string) (string, error) {
	if s == "" {
		return "", errors.New("orderDate is required")
	}
	t, err := time.Parse(orderDateLayout, s)
	if err != nil {
		return "", fmt.Errorf("orderDate must be yyyyMMdd: %q", s)
	}
	return t.Format(time.DateOnly), nil
}

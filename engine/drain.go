package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/tradeplatform/types"
)

// Drain closes the matching queued orders for a day. In cancel mode they are
// only closed; otherwise each one is replayed as a market order without the
// market-hours check. Per-order results are logged, not returned.
func (e *Engine) Drain(ctx context.Context, req DrainRequest) TradeResponse {
	day, err := e.drainDay(req.Date)
	if err != nil {
		e.log.Warnw("drain rejected", "date", req.Date, "error", err)
		return reject(MsgDrainFailed)
	}

	var ids []int64
	if !req.ProcessAllOrders {
		ids = req.OrderIDs
		if ids == nil {
			ids = []int64{}
		}
	}

	if req.IsOrderCanceled {
		cancelled, err := e.ledger.CancelQueuedOrders(ctx, day, ids)
		if err != nil {
			e.log.Errorw("cancel queued orders failed", "date", day.Format(time.DateOnly), "error", err)
			return reject(MsgDrainFailed)
		}
		e.log.Infow("queued orders cancelled", "date", day.Format(time.DateOnly), "count", len(cancelled))
		return TradeResponse{StatusMessage: MsgCancelled, StatusCode: ExecutionOk}
	}

	drained, err := e.ledger.DrainQueuedOrders(ctx, day, ids)
	if err != nil {
		e.log.Errorw("drain queued orders failed", "date", day.Format(time.DateOnly), "error", err)
		return reject(MsgDrainFailed)
	}

	for _, q := range drained {
		resp := e.processTrade(ctx, TradeRequest{
			AccountID: q.AccountID,
			Symbol:    q.Symbol,
			Quantity:  q.Quantity,
			Action:    q.Action,
			Type:      types.OrderTypeMarket,
			Timing:    types.TimingDayOnly,
			Origin:    q.Origin,
		})
		e.log.Infow("queued order replayed",
			"queued_order", q.ID,
			"account", q.AccountID,
			"symbol", q.Symbol,
			"status", resp.StatusCode.String(),
			"message", resp.StatusMessage,
		)
	}
	e.log.Infow("queued orders drained", "date", day.Format(time.DateOnly), "count", len(drained))
	return TradeResponse{StatusMessage: MsgDrained, StatusCode: ExecutionOk}
}

func (e *Engine) drainDay(s string) (time.Time, error) {
	if s == "" {
		return e.clock.Today(), nil
	}
	for _, layout := range []string{time.DateOnly, "20060102"} {
		if t, err := time.ParseInLocation(layout, s, e.clock.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad drain date %q", s)
}

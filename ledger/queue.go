package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/tradeplatform/types"
)

const queuedColumns = `id, account_id, symbol, action, quantity, order_type, timing, origin,
		order_date, is_open, close_reason, created_at`

// CreateQueuedOrder stores an open backlog entry. OrderDate is truncated to
// its calendar day.
func (s *SQLStore) CreateQueuedOrder(ctx context.Context, q QueuedOrder) (QueuedOrder, error) {
	q.Open = true
	q.CloseReason = ""
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	err := s.db.QueryRowContext(ctx, s.d.rebind(`
		INSERT INTO queued_orders
		(account_id, symbol, action, quantity, order_type, timing, origin,
		 order_date, is_open, close_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		q.AccountID, q.Symbol, string(q.Action), q.Quantity, string(q.Type),
		string(q.Timing), string(q.Origin), q.OrderDate.Format(dateLayout),
		true, "", q.CreatedAt.UTC(),
	).Scan(&q.ID)
	if err != nil {
		return QueuedOrder{}, fmt.Errorf("create queued order: %w", err)
	}
	q.OrderDate, _ = time.Parse(dateLayout, q.OrderDate.Format(dateLayout))
	return q, nil
}

// ListQueuedOrders returns the backlog for day, optionally only open entries.
func (s *SQLStore) ListQueuedOrders(ctx context.Context, day time.Time, openOnly bool) ([]QueuedOrder, error) {
	query := `SELECT ` + queuedColumns + ` FROM queued_orders WHERE order_date = ?`
	args := []any{day.Format(dateLayout)}
	if openOnly {
		query += ` AND is_open = ?`
		args = append(args, true)
	}
	query += ` ORDER BY id`
	return listQueued(ctx, s.db, s.d, query, args...)
}

func (s *SQLStore) DrainQueuedOrders(ctx context.Context, day time.Time, ids []int64) ([]QueuedOrder, error) {
	return s.closeQueued(ctx, day, ids, types.CloseDrained)
}

func (s *SQLStore) CancelQueuedOrders(ctx context.Context, day time.Time, ids []int64) ([]QueuedOrder, error) {
	return s.closeQueued(ctx, day, ids, types.CloseCancelled)
}

// closeQueued selects and closes the matching open entries in one database
// transaction so each entry leaves the open set exactly once.
func (s *SQLStore) closeQueued(ctx context.Context, day time.Time, ids []int64, reason types.CloseReason) (out []QueuedOrder, err error) {
	if ids != nil && len(ids) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("close queued orders: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `SELECT ` + queuedColumns + ` FROM queued_orders WHERE order_date = ? AND is_open = ?`
	args := []any{day.Format(dateLayout), true}
	if ids != nil {
		query += ` AND id IN (` + placeholders(len(ids)) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}
	query += ` ORDER BY id` + s.d.forUpdate

	out, err = listQueued(ctx, tx, s.d, query, args...)
	if err != nil {
		return nil, err
	}

	for i := range out {
		if _, err = tx.ExecContext(ctx, s.d.rebind(`
			UPDATE queued_orders SET is_open = ?, close_reason = ? WHERE id = ?`),
			false, string(reason), out[i].ID,
		); err != nil {
			return nil, fmt.Errorf("close queued order %d: %w", out[i].ID, err)
		}
		out[i].Open = false
		out[i].CloseReason = reason
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("close queued orders: commit: %w", err)
	}
	return out, nil
}

func listQueued(ctx context.Context, q queryer, d dialect, query string, args ...any) ([]QueuedOrder, error) {
	rows, err := q.QueryContext(ctx, d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list queued orders: %w", err)
	}
	defer rows.Close()

	var out []QueuedOrder
	for rows.Next() {
		var (
			qo  QueuedOrder
			day string
		)
		if err := rows.Scan(
			&qo.ID,
			&qo.AccountID,
			&qo.Symbol,
			&qo.Action,
			&qo.Quantity,
			&qo.Type,
			&qo.Timing,
			&qo.Origin,
			&day,
			&qo.Open,
			&qo.CloseReason,
			&qo.CreatedAt,
		); err != nil {
			return nil, err
		}
		if qo.OrderDate, err = time.Parse(dateLayout, day); err != nil {
			return nil, fmt.Errorf("parse order date %q: %w", day, err)
		}
		out = append(out, qo)
	}
	return out, rows.Err()
}

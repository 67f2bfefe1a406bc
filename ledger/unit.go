package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// sqlUnit is a UnitOfWork over one *sql.Tx. On Postgres, account and
// position reads take row locks that are held until Commit or Rollback.
type sqlUnit struct {
	tx   *sql.Tx
	d    dialect
	done bool
}

var _ UnitOfWork = (*sqlUnit)(nil)

func (u *sqlUnit) LockAccount(ctx context.Context, id int64) (Account, error) {
	return getAccount(ctx, u.tx, u.d, id, u.d.forUpdate)
}

func (u *sqlUnit) UpdateBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	res, err := u.tx.ExecContext(ctx, u.d.rebind(`UPDATE accounts SET balance = ? WHERE id = ?`),
		balance.String(), accountID)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return expectOne(res, "account", accountID)
}

func (u *sqlUnit) CreateTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	_, err := u.tx.ExecContext(ctx, u.d.rebind(`
		INSERT INTO transactions (id, account_id, origin, environment, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		t.ID, t.AccountID, string(t.Origin), t.Environment, t.CreatedAt.UTC(),
	)
	if err != nil {
		return Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

func (u *sqlUnit) CreateOrder(ctx context.Context, o Order) (Order, error) {
	err := u.tx.QueryRowContext(ctx, u.d.rebind(`
		INSERT INTO orders
		(account_id, symbol, action, quantity, price, order_type, timing, ts,
		 transaction_id, environment, origin, security_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		o.AccountID, o.Symbol, string(o.Action), o.Quantity, o.Price.String(),
		string(o.Type), string(o.Timing), o.Timestamp.UTC(),
		o.TransactionID, o.Environment, string(o.Origin), o.SecurityType,
	).Scan(&o.ID)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

func (u *sqlUnit) GetOrderByTransactionID(ctx context.Context, transactionID string) (Order, error) {
	o, err := scanOrder(u.tx.QueryRowContext(ctx, u.d.rebind(`
		SELECT `+orderColumns+`
		FROM orders
		WHERE transaction_id = ?`), transactionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, fmt.Errorf("order for transaction %q: %w", transactionID, ErrNotFound)
		}
		return Order{}, err
	}
	return o, nil
}

func (u *sqlUnit) DeleteOrder(ctx context.Context, id int64) error {
	res, err := u.tx.ExecContext(ctx, u.d.rebind(`DELETE FROM orders WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return expectOne(res, "order", id)
}

func (u *sqlUnit) GetPosition(ctx context.Context, accountID int64, symbol string) (Position, error) {
	return getPosition(ctx, u.tx, u.d, accountID, symbol, u.d.forUpdate)
}

func (u *sqlUnit) CreatePosition(ctx context.Context, p Position) (Position, error) {
	err := u.tx.QueryRowContext(ctx, u.d.rebind(`
		INSERT INTO positions (account_id, symbol, quantity, value)
		VALUES (?, ?, ?, ?)
		RETURNING id`),
		p.AccountID, p.Symbol, p.Quantity, p.Value.String(),
	).Scan(&p.ID)
	if err != nil {
		return Position{}, fmt.Errorf("create position: %w", err)
	}
	return p, nil
}

func (u *sqlUnit) UpdatePosition(ctx context.Context, p Position) error {
	res, err := u.tx.ExecContext(ctx, u.d.rebind(`
		UPDATE positions SET quantity = ?, value = ? WHERE id = ?`),
		p.Quantity, p.Value.String(), p.ID)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	return expectOne(res, "position", p.ID)
}

func (u *sqlUnit) DeletePosition(ctx context.Context, id int64) error {
	res, err := u.tx.ExecContext(ctx, u.d.rebind(`DELETE FROM positions WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	return expectOne(res, "position", id)
}

func (u *sqlUnit) CreateTradeLot(ctx context.Context, l TradeLot) (TradeLot, error) {
	err := u.tx.QueryRowContext(ctx, u.d.rebind(`
		INSERT INTO trade_lots
		(account_id, position_id, symbol, side, quantity, price, trade_date, liquidating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		l.AccountID, l.PositionID, l.Symbol, string(l.Side), l.Quantity,
		l.Price.String(), l.TradeDate.UTC(), l.Liquidating,
	).Scan(&l.ID)
	if err != nil {
		return TradeLot{}, fmt.Errorf("create trade lot: %w", err)
	}
	return l, nil
}

func (u *sqlUnit) ListTradeLots(ctx context.Context, accountID int64, symbol string) ([]TradeLot, error) {
	return listTradeLots(ctx, u.tx, u.d, accountID, symbol)
}

func (u *sqlUnit) Commit() error {
	if u.done {
		return errors.New("unit of work already finished")
	}
	u.done = true
	return u.tx.Commit()
}

func (u *sqlUnit) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	return u.tx.Rollback()
}

func expectOne(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}

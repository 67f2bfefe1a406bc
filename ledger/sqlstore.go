package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// SQLStore is the relational ledger, backed by SQLite or Postgres.
type SQLStore struct {
	db *sql.DB
	d  dialect
}

var _ Repository = (*SQLStore)(nil)

// Open connects to the ledger database and applies the schema. driver is
// "sqlite" or "postgres".
func Open(driver, dsn string) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s ledger: %w", d.name, err)
	}
	if d.name == "sqlite" {
		// One writer; also keeps :memory: databases on a single connection.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(d.schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply %s schema: %w", d.name, err)
	}

	return &SQLStore{db: db, d: d}, nil
}

// NewSQLite opens a SQLite ledger at path.
func NewSQLite(path string) (*SQLStore, error) {
	return Open("sqlite", path+"?_foreign_keys=on&_busy_timeout=5000")
}

func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) CreateAccount(ctx context.Context, name string, balance decimal.Decimal) (Account, error) {
	a := Account{Name: name, Balance: balance, CreatedAt: time.Now().UTC()}
	err := s.db.QueryRowContext(ctx, s.d.rebind(`
		INSERT INTO accounts (name, balance, created_at)
		VALUES (?, ?, ?)
		RETURNING id`),
		a.Name, a.Balance.String(), a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return Account{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

func (s *SQLStore) GetAccount(ctx context.Context, id int64) (Account, error) {
	return getAccount(ctx, s.db, s.d, id, "")
}

func (s *SQLStore) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, balance, created_at FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) AddMarketHoliday(ctx context.Context, day time.Time, name string) error {
	_, err := s.db.ExecContext(ctx, s.d.rebind(`
		INSERT INTO market_holidays (holiday_date, name)
		VALUES (?, ?)
		ON CONFLICT (holiday_date) DO UPDATE SET name = excluded.name`),
		day.Format(dateLayout), name,
	)
	if err != nil {
		return fmt.Errorf("add market holiday: %w", err)
	}
	return nil
}

func (s *SQLStore) IsMarketHoliday(ctx context.Context, day time.Time) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.d.rebind(`
		SELECT COUNT(*) FROM market_holidays WHERE holiday_date = ?`),
		day.Format(dateLayout),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("market holiday check: %w", err)
	}
	return n > 0, nil
}

func (s *SQLStore) ListMarketHolidays(ctx context.Context) ([]MarketHoliday, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT holiday_date, name FROM market_holidays ORDER BY holiday_date`)
	if err != nil {
		return nil, fmt.Errorf("list market holidays: %w", err)
	}
	defer rows.Close()

	var out []MarketHoliday
	for rows.Next() {
		var (
			h   MarketHoliday
			day string
		)
		if err := rows.Scan(&day, &h.Name); err != nil {
			return nil, err
		}
		if h.Date, err = time.Parse(dateLayout, day); err != nil {
			return nil, fmt.Errorf("parse holiday date %q: %w", day, err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetTransaction(ctx context.Context, id string) (Transaction, error) {
	var t Transaction
	err := s.db.QueryRowContext(ctx, s.d.rebind(`
		SELECT id, account_id, origin, environment, created_at
		FROM transactions
		WHERE id = ?`), id,
	).Scan(&t.ID, &t.AccountID, &t.Origin, &t.Environment, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Transaction{}, fmt.Errorf("transaction %q: %w", id, ErrNotFound)
		}
		return Transaction{}, err
	}
	return t, nil
}

func (s *SQLStore) ListOrders(ctx context.Context, accountID int64) ([]Order, error) {
	rows, err := s.db.QueryContext(ctx, s.d.rebind(`
		SELECT `+orderColumns+`
		FROM orders
		WHERE account_id = ?
		ORDER BY id`), accountID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetPosition(ctx context.Context, accountID int64, symbol string) (Position, error) {
	return getPosition(ctx, s.db, s.d, accountID, symbol, "")
}

func (s *SQLStore) ListPositions(ctx context.Context, accountID int64) ([]Position, error) {
	rows, err := s.db.QueryContext(ctx, s.d.rebind(`
		SELECT id, account_id, symbol, quantity, value
		FROM positions
		WHERE account_id = ?
		ORDER BY symbol`), accountID)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	var out []Position
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Symbol, &p.Quantity, &p.Value); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListTradeLots(ctx context.Context, accountID int64, symbol string) ([]TradeLot, error) {
	return listTradeLots(ctx, s.db, s.d, accountID, symbol)
}

// Begin opens a unit of work.
func (s *SQLStore) Begin(ctx context.Context) (UnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &sqlUnit{tx: tx, d: s.d}, nil
}

func scanAccount(r scanner) (Account, error) {
	var a Account
	if err := r.Scan(&a.ID, &a.Name, &a.Balance, &a.CreatedAt); err != nil {
		return Account{}, err
	}
	return a, nil
}

func getAccount(ctx context.Context, q queryer, d dialect, id int64, suffix string) (Account, error) {
	a, err := scanAccount(q.QueryRowContext(ctx, d.rebind(`
		SELECT id, name, balance, created_at
		FROM accounts
		WHERE id = ?`+suffix), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, fmt.Errorf("account %d: %w", id, ErrNotFound)
		}
		return Account{}, err
	}
	return a, nil
}

func getPosition(ctx context.Context, q queryer, d dialect, accountID int64, symbol, suffix string) (Position, error) {
	var p Position
	err := q.QueryRowContext(ctx, d.rebind(`
		SELECT id, account_id, symbol, quantity, value
		FROM positions
		WHERE account_id = ? AND symbol = ?`+suffix), accountID, symbol,
	).Scan(&p.ID, &p.AccountID, &p.Symbol, &p.Quantity, &p.Value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Position{}, fmt.Errorf("position %d/%s: %w", accountID, symbol, ErrNotFound)
		}
		return Position{}, err
	}
	return p, nil
}

const orderColumns = `id, account_id, symbol, action, quantity, price, order_type, timing, ts,
		transaction_id, environment, origin, security_type`

func scanOrder(r scanner) (Order, error) {
	var o Order
	err := r.Scan(
		&o.ID,
		&o.AccountID,
		&o.Symbol,
		&o.Action,
		&o.Quantity,
		&o.Price,
		&o.Type,
		&o.Timing,
		&o.Timestamp,
		&o.TransactionID,
		&o.Environment,
		&o.Origin,
		&o.SecurityType,
	)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func listTradeLots(ctx context.Context, q queryer, d dialect, accountID int64, symbol string) ([]TradeLot, error) {
	rows, err := q.QueryContext(ctx, d.rebind(`
		SELECT id, account_id, position_id, symbol, side, quantity, price, trade_date, liquidating
		FROM trade_lots
		WHERE account_id = ? AND symbol = ?
		ORDER BY trade_date ASC, id ASC`), accountID, symbol)
	if err != nil {
		return nil, fmt.Errorf("list trade lots: %w", err)
	}
	defer rows.Close()

	var out []TradeLot
	for rows.Next() {
		var l TradeLot
		if err := rows.Scan(
			&l.ID,
			&l.AccountID,
			&l.PositionID,
			&l.Symbol,
			&l.Side,
			&l.Quantity,
			&l.Price,
			&l.TradeDate,
			&l.Liquidating,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

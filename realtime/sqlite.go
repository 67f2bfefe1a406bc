package realtime

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vmihailenco/msgpack/v5"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS extended_transactions (
	transaction_id TEXT PRIMARY KEY,
	account_id INTEGER NOT NULL,
	payload BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_extended_transactions_account ON extended_transactions(account_id, transaction_id);
`

// SQLite keeps each record as a msgpack blob in a key-value table.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open realtime store: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("realtime store %s: %w", p, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply realtime schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Upsert(ctx context.Context, et ExtendedTransaction) error {
	if et.TransactionID == "" {
		return errors.New("upsert: transaction id is required")
	}
	payload, err := msgpack.Marshal(&et)
	if err != nil {
		return fmt.Errorf("encode extended transaction: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO extended_transactions (transaction_id, account_id, payload, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT(transaction_id) DO UPDATE SET account_id=excluded.account_id, payload=excluded.payload, updated_at=excluded.updated_at",
		et.TransactionID, et.AccountID, payload, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert extended transaction %s: %w", et.TransactionID, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, transactionID string) (ExtendedTransaction, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM extended_transactions WHERE transaction_id = ?", transactionID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return ExtendedTransaction{}, ErrNotFound
	}
	if err != nil {
		return ExtendedTransaction{}, fmt.Errorf("get extended transaction %s: %w", transactionID, err)
	}
	return decode(payload)
}

func (s *SQLite) ListByAccount(ctx context.Context, accountID int64) ([]ExtendedTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payload FROM extended_transactions WHERE account_id = ? ORDER BY transaction_id", accountID)
	if err != nil {
		return nil, fmt.Errorf("list extended transactions: %w", err)
	}
	defer rows.Close()

	var out []ExtendedTransaction
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		et, err := decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, et)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func decode(payload []byte) (ExtendedTransaction, error) {
	var et ExtendedTransaction
	if err := msgpack.Unmarshal(payload, &et); err != nil {
		return ExtendedTransaction{}, fmt.Errorf("decode extended transaction: %w", err)
	}
	return et, nil
}

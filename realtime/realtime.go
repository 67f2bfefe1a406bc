package realtime

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradeplatform/types"
)

// ErrNotFound is returned by Get for an unknown transaction id.
var ErrNotFound = errors.New("extended transaction not found")

// ExtendedTransaction is the enriched audit record of one executed order,
// keyed by ledger transaction id.
type ExtendedTransaction struct {
	TransactionID        string             `msgpack:"transaction_id" json:"transactionId"`
	OrderID              int64              `msgpack:"order_id" json:"orderId"`
	PositionID           int64              `msgpack:"position_id" json:"positionId"`
	AccountID            int64              `msgpack:"account_id" json:"accountId"`
	Symbol               string             `msgpack:"symbol" json:"symbol"`
	Side                 types.OrderAction  `msgpack:"side" json:"side"`
	Quantity             int64              `msgpack:"quantity" json:"quantity"`
	Price                decimal.Decimal    `msgpack:"price" json:"price"`
	ExecutedAt           time.Time          `msgpack:"executed_at" json:"executedAt"`
	ServiceUser          string             `msgpack:"service_user" json:"serviceUser"`
	TransferType         types.TransferType `msgpack:"transfer_type" json:"transferType"`
	TransactionType      string             `msgpack:"transaction_type" json:"transactionType"`
	Description          string             `msgpack:"description" json:"description"`
	StartingBalance      decimal.Decimal    `msgpack:"starting_balance" json:"startingBalance"`
	EndingBalance        decimal.Decimal    `msgpack:"ending_balance" json:"endingBalance"`
	IsTradingTransaction bool               `msgpack:"is_trading_transaction" json:"isTradingTransaction"`
	MarketDataSource     string             `msgpack:"market_data_source" json:"marketDataSource"`
	Environment          string             `msgpack:"environment" json:"environment"`
	Origin               types.OrderOrigin  `msgpack:"origin" json:"origin"`
}

// Store holds extended transactions. Upsert replaces any record with the
// same transaction id so replays are harmless.
type Store interface {
	Upsert(ctx context.Context, et ExtendedTransaction) error
	Get(ctx context.Context, transactionID string) (ExtendedTransaction, error)
	ListByAccount(ctx context.Context, accountID int64) ([]ExtendedTransaction, error)
	Close() error
}

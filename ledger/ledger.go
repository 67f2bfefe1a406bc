package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradeplatform/types"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type Account struct {
	ID        int64
	Name      string
	Balance   decimal.Decimal
	CreatedAt time.Time
}

// Transaction groups the ledger writes of one executed order.
type Transaction struct {
	ID          string
	AccountID   int64
	Origin      types.OrderOrigin
	Environment string
	CreatedAt   time.Time
}

type Order struct {
	ID            int64             `json:"id" msgpack:"id"`
	AccountID     int64             `json:"accountId" msgpack:"account_id"`
	Symbol        string            `json:"symbol" msgpack:"symbol"`
	Action        types.OrderAction `json:"action" msgpack:"action"`
	Quantity      int64             `json:"quantity" msgpack:"quantity"`
	Price         decimal.Decimal   `json:"price" msgpack:"price"`
	Type          types.OrderType   `json:"type" msgpack:"type"`
	Timing        types.OrderTiming `json:"timing" msgpack:"timing"`
	Timestamp     time.Time         `json:"timestamp" msgpack:"timestamp"`
	TransactionID string            `json:"transactionId" msgpack:"transaction_id"`
	Environment   string            `json:"environment" msgpack:"environment"`
	Origin        types.OrderOrigin `json:"origin" msgpack:"origin"`
	SecurityType  string            `json:"securityType" msgpack:"security_type"`
}

// Position is the net holding of one symbol for one account. Quantity is
// positive for long and negative for short.
type Position struct {
	ID        int64
	AccountID int64
	Symbol    string
	Quantity  int64
	Value     decimal.Decimal
}

// TradeLot is one fill against a position. Lots are never updated or deleted.
type TradeLot struct {
	ID          int64
	AccountID   int64
	PositionID  int64
	Symbol      string
	Side        types.LotSide
	Quantity    int64
	Price       decimal.Decimal
	TradeDate   time.Time
	Liquidating bool
}

// QueuedOrder is an order received while the market was closed.
type QueuedOrder struct {
	ID          int64
	AccountID   int64
	Symbol      string
	Action      types.OrderAction
	Quantity    int64
	Type        types.OrderType
	Timing      types.OrderTiming
	Origin      types.OrderOrigin
	OrderDate   time.Time
	Open        bool
	CloseReason types.CloseReason
	CreatedAt   time.Time
}

type MarketHoliday struct {
	Date time.Time
	Name string
}

// Repository is the durable ledger. Writes that belong to one order go
// through a UnitOfWork obtained from Begin.
type Repository interface {
	CreateAccount(ctx context.Context, name string, balance decimal.Decimal) (Account, error)
	GetAccount(ctx context.Context, id int64) (Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)

	AddMarketHoliday(ctx context.Context, day time.Time, name string) error
	IsMarketHoliday(ctx context.Context, day time.Time) (bool, error)
	ListMarketHolidays(ctx context.Context) ([]MarketHoliday, error)

	GetTransaction(ctx context.Context, id string) (Transaction, error)
	ListOrders(ctx context.Context, accountID int64) ([]Order, error)
	GetPosition(ctx context.Context, accountID int64, symbol string) (Position, error)
	ListPositions(ctx context.Context, accountID int64) ([]Position, error)
	ListTradeLots(ctx context.Context, accountID int64, symbol string) ([]TradeLot, error)

	CreateQueuedOrder(ctx context.Context, q QueuedOrder) (QueuedOrder, error)
	ListQueuedOrders(ctx context.Context, day time.Time, openOnly bool) ([]QueuedOrder, error)
	// DrainQueuedOrders closes the open queued orders for day and returns
	// them. A nil ids selects every open order for the day.
	DrainQueuedOrders(ctx context.Context, day time.Time, ids []int64) ([]QueuedOrder, error)
	CancelQueuedOrders(ctx context.Context, day time.Time, ids []int64) ([]QueuedOrder, error)

	Begin(ctx context.Context) (UnitOfWork, error)
	Close() error
}

// UnitOfWork is one database transaction. Nothing is visible to other
// readers until Commit. Rollback after Commit is a no-op.
type UnitOfWork interface {
	LockAccount(ctx context.Context, id int64) (Account, error)
	UpdateBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error

	CreateTransaction(ctx context.Context, t Transaction) (Transaction, error)
	CreateOrder(ctx context.Context, o Order) (Order, error)
	GetOrderByTransactionID(ctx context.Context, transactionID string) (Order, error)
	DeleteOrder(ctx context.Context, id int64) error

	GetPosition(ctx context.Context, accountID int64, symbol string) (Position, error)
	CreatePosition(ctx context.Context, p Position) (Position, error)
	UpdatePosition(ctx context.Context, p Position) error
	DeletePosition(ctx context.Context, id int64) error

	CreateTradeLot(ctx context.Context, l TradeLot) (TradeLot, error)
	ListTradeLots(ctx context.Context, accountID int64, symbol string) ([]TradeLot, error)

	Commit() error
	Rollback() error
}

package realtime

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradeplatform/types"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	sq, err := NewSQLite(filepath.Join(t.TempDir(), "realtime.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sq,
	}
}

func sample(id string, account int64) ExtendedTransaction {
	return ExtendedTransaction{
		TransactionID:        id,
		OrderID:              7,
		PositionID:           3,
		AccountID:            account,
		Symbol:               "ABC",
		Side:                 types.ActionBuy,
		Quantity:             10,
		Price:                decimal.RequireFromString("50.25"),
		ExecutedAt:           time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC),
		ServiceUser:          "svc",
		TransferType:         types.TransferDebit,
		TransactionType:      "Trade",
		Description:          "NEW LONG POS BUY SIDE TRAN",
		StartingBalance:      decimal.RequireFromString("10000"),
		EndingBalance:        decimal.RequireFromString("9497.50"),
		IsTradingTransaction: true,
		MarketDataSource:     "static",
		Environment:          "Test",
		Origin:               types.OriginPseudoMarkets,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := sample("01HAAA", 1)
			require.NoError(t, s.Upsert(ctx, want))

			got, err := s.Get(ctx, "01HAAA")
			require.NoError(t, err)
			assert.Equal(t, want.Symbol, got.Symbol)
			assert.Equal(t, want.Side, got.Side)
			assert.Equal(t, want.TransferType, got.TransferType)
			assert.Equal(t, want.Description, got.Description)
			assert.True(t, want.Price.Equal(got.Price))
			assert.True(t, want.EndingBalance.Equal(got.EndingBalance))
			assert.True(t, want.ExecutedAt.Equal(got.ExecutedAt))
			assert.True(t, got.IsTradingTransaction)

			_, err = s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreUpsertReplacesRecord(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := sample("01HBBB", 1)
			require.NoError(t, s.Upsert(ctx, first))

			replay := first
			replay.Description = "replayed"
			require.NoError(t, s.Upsert(ctx, replay))

			got, err := s.Get(ctx, "01HBBB")
			require.NoError(t, err)
			assert.Equal(t, "replayed", got.Description)

			list, err := s.ListByAccount(ctx, 1)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestStoreListByAccount(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Upsert(ctx, sample("01HC02", 1)))
			require.NoError(t, s.Upsert(ctx, sample("01HC01", 1)))
			require.NoError(t, s.Upsert(ctx, sample("01HC03", 2)))

			list, err := s.ListByAccount(ctx, 1)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "01HC01", list[0].TransactionID)
			assert.Equal(t, "01HC02", list[1].TransactionID)
		})
	}
}

func TestStoreRequiresTransactionID(t *testing.T) {
	t.Parallel()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.Upsert(context.Background(), ExtendedTransaction{}))
		})
	}
}

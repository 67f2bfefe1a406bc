package costbasis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rustyeddy/tradeplatform/ledger"
	"github.com/rustyeddy/tradeplatform/types"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var t0 = time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

func lot(id int64, side types.LotSide, qty int64, price string, at time.Time) ledger.TradeLot {
	return ledger.TradeLot{ID: id, Side: side, Quantity: qty, Price: dec(price), TradeDate: at, Symbol: "ABC"}
}

func TestAverage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		lots []ledger.TradeLot
		want string
		err  error
	}{
		{
			name: "single buy",
			lots: []ledger.TradeLot{lot(1, types.LotBuySide, 10, "50", t0)},
			want: "500",
		},
		{
			name: "mean of lot values",
			lots: []ledger.TradeLot{
				lot(1, types.LotBuySide, 10, "50", t0),
				lot(2, types.LotBuySide, 5, "40", t0),
			},
			want: "350",
		},
		{
			name: "sell lots ignored",
			lots: []ledger.TradeLot{
				lot(1, types.LotBuySide, 10, "50", t0),
				lot(2, types.LotSellSide, 10, "60", t0),
				lot(3, types.LotShortSellSide, 10, "70", t0),
			},
			want: "500",
		},
		{
			name: "no lots",
			err:  ErrNoBuyLots,
		},
		{
			name: "only sell lots",
			lots: []ledger.TradeLot{lot(1, types.LotSellSide, 10, "60", t0)},
			err:  ErrNoBuyLots,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Average(tt.lots)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestFIFO(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lots     []ledger.TradeLot
		proceeds string
		want     string
	}{
		{
			name:     "no lots",
			proceeds: "600",
			want:     "0",
		},
		{
			name:     "one buy lot",
			lots:     []ledger.TradeLot{lot(1, types.LotBuySide, 10, "50", t0)},
			proceeds: "600",
			want:     "100",
		},
		{
			name: "proceeds counted once per buy lot",
			lots: []ledger.TradeLot{
				lot(1, types.LotBuySide, 10, "50", t0),
				lot(2, types.LotBuySide, 10, "55", t0.Add(time.Hour)),
			},
			proceeds: "600",
			// (600-500) + (600-550)
			want: "150",
		},
		{
			name: "non buy lots skipped",
			lots: []ledger.TradeLot{
				lot(1, types.LotBuySide, 10, "50", t0),
				lot(2, types.LotSellSide, 5, "60", t0.Add(time.Hour)),
			},
			proceeds: "300",
			want:     "-200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FIFO(tt.lots, dec(tt.proceeds))
			assert.True(t, dec(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestFIFODoesNotReorderInput(t *testing.T) {
	t.Parallel()

	lots := []ledger.TradeLot{
		lot(2, types.LotBuySide, 1, "2", t0.Add(time.Hour)),
		lot(1, types.LotBuySide, 1, "1", t0),
	}
	_ = FIFO(lots, dec("10"))
	assert.Equal(t, int64(2), lots[0].ID)
}

// The result is a plain sum over buy lots, so it cannot depend on the order
// the lots arrive in.
func TestFIFOProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		proceeds := decimal.NewFromInt(rapid.Int64Range(0, 1_000_000).Draw(t, "proceeds"))

		var lots []ledger.TradeLot
		want := decimal.Zero
		for i := 0; i < n; i++ {
			side := rapid.SampledFrom([]types.LotSide{types.LotBuySide, types.LotSellSide, types.LotShortSellSide}).Draw(t, "side")
			qty := rapid.Int64Range(1, 1000).Draw(t, "qty")
			cents := rapid.Int64Range(1, 100_000).Draw(t, "cents")
			price := decimal.New(cents, -2)
			at := t0.Add(time.Duration(rapid.IntRange(0, 10_000).Draw(t, "minutes")) * time.Minute)

			lots = append(lots, ledger.TradeLot{ID: int64(i + 1), Side: side, Quantity: qty, Price: price, TradeDate: at})
			if side == types.LotBuySide {
				want = want.Add(proceeds.Sub(price.Mul(decimal.NewFromInt(qty))))
			}
		}

		got := FIFO(lots, proceeds)
		if !got.Equal(want) {
			t.Fatalf("FIFO = %s, want %s", got, want)
		}

		reversed := make([]ledger.TradeLot, len(lots))
		for i := range lots {
			reversed[len(lots)-1-i] = lots[i]
		}
		if r := FIFO(reversed, proceeds); !r.Equal(got) {
			t.Fatalf("order dependent: %s vs %s", r, got)
		}
	})
}

type fakeLots struct {
	lots []ledger.TradeLot
	err  error
}

func (f fakeLots) ListTradeLots(ctx context.Context, accountID int64, symbol string) ([]ledger.TradeLot, error) {
	return f.lots, f.err
}

func TestService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewService(fakeLots{lots: []ledger.TradeLot{
		lot(1, types.LotBuySide, 10, "50", t0),
		lot(2, types.LotBuySide, 10, "60", t0.Add(time.Hour)),
	}})

	avg, err := svc.AverageCostBasis(ctx, 1, "ABC")
	require.NoError(t, err)
	assert.True(t, dec("550").Equal(avg))

	fifo, err := svc.FifoCostBasis(ctx, 1, "ABC", dec("700"))
	require.NoError(t, err)
	assert.True(t, dec("300").Equal(fifo))

	_, err = NewService(fakeLots{}).AverageCostBasis(ctx, 1, "ABC")
	assert.ErrorIs(t, err, ErrNoBuyLots)

	boom := errors.New("boom")
	_, err = NewService(fakeLots{err: boom}).FifoCostBasis(ctx, 1, "ABC", dec("1"))
	assert.ErrorIs(t, err, boom)
}

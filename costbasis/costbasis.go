package costbasis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradeplatform/ledger"
	"github.com/rustyeddy/tradeplatform/types"
)

// ErrNoBuyLots is returned by Average when there is nothing to average.
var ErrNoBuyLots = errors.New("no buy-side trade lots")

// Average is the mean of price*quantity over the buy-side lots.
func Average(lots []ledger.TradeLot) (decimal.Decimal, error) {
	total := decimal.Zero
	n := 0
	for _, l := range lots {
		if l.Side != types.LotBuySide {
			continue
		}
		total = total.Add(l.Price.Mul(decimal.NewFromInt(l.Quantity)))
		n++
	}
	if n == 0 {
		return decimal.Zero, ErrNoBuyLots
	}
	return total.Div(decimal.NewFromInt(int64(n))), nil
}

// FIFO walks the lots oldest first and, for every buy-side lot, adds
// proceeds - quantity*price to the result.
//
// This is not lot-depletion FIFO: remaining quantity per lot is not tracked
// and proceeds are counted once per buy lot. Sell-side crediting depends on
// this exact output.
func FIFO(lots []ledger.TradeLot, proceeds decimal.Decimal) decimal.Decimal {
	sorted := make([]ledger.TradeLot, len(lots))
	copy(sorted, lots)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].TradeDate.Equal(sorted[j].TradeDate) {
			return sorted[i].TradeDate.Before(sorted[j].TradeDate)
		}
		return sorted[i].ID < sorted[j].ID
	})

	out := decimal.Zero
	for _, l := range sorted {
		if l.Side != types.LotBuySide {
			continue
		}
		out = out.Add(proceeds.Sub(l.Price.Mul(decimal.NewFromInt(l.Quantity))))
	}
	return out
}

// LotReader is the part of the ledger the service reads from.
type LotReader interface {
	ListTradeLots(ctx context.Context, accountID int64, symbol string) ([]ledger.TradeLot, error)
}

// Service computes cost basis from the lots stored in the ledger.
type Service struct {
	lots LotReader
}

func NewService(lots LotReader) *Service {
	return &Service{lots: lots}
}

func (s *Service) AverageCostBasis(ctx context.Context, accountID int64, symbol string) (decimal.Decimal, error) {
	lots, err := s.lots.ListTradeLots(ctx, accountID, symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("average cost basis: %w", err)
	}
	return Average(lots)
}

func (s *Service) FifoCostBasis(ctx context.Context, accountID int64, symbol string, proceeds decimal.Decimal) (decimal.Decimal, error) {
	lots, err := s.lots.ListTradeLots(ctx, accountID, symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fifo cost basis: %w", err)
	}
	return FIFO(lots, proceeds), nil
}

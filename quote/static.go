package quote

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Static serves prices from an in-memory table.
type Static struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

var _ Source = (*Static)(nil)

func NewStatic(prices map[string]decimal.Decimal) *Static {
	s := &Static{prices: make(map[string]decimal.Decimal, len(prices))}
	for sym, p := range prices {
		s.prices[strings.ToUpper(sym)] = p
	}
	return s
}

// NewStaticFromStrings parses a symbol -> decimal string table.
func NewStaticFromStrings(prices map[string]string) (*Static, error) {
	parsed := make(map[string]decimal.Decimal, len(prices))
	for sym, v := range prices {
		p, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("price for %s: %w", sym, err)
		}
		parsed[sym] = p
	}
	return NewStatic(parsed), nil
}

// Set replaces the price for symbol.
func (s *Static) Set(symbol string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[strings.ToUpper(symbol)] = price
}

func (s *Static) GetLatestPrice(ctx context.Context, symbol string) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}
	s.mu.RLock()
	p, ok := s.prices[strings.ToUpper(symbol)]
	s.mu.RUnlock()
	if !ok {
		return Quote{}, fmt.Errorf("%s: %w", symbol, ErrUnknownSymbol)
	}
	return Quote{Symbol: symbol, Price: p, Source: "static", Time: time.Now().UTC()}, nil
}

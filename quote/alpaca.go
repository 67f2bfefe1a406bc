package quote

import (
	"context"
	"fmt"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
)

// latestTrader is the slice of the Alpaca market-data client used here.
type latestTrader interface {
	GetLatestTrade(symbol string, req marketdata.GetLatestTradeRequest) (*marketdata.Trade, error)
}

// Alpaca prices orders at the last trade reported by Alpaca market data.
type Alpaca struct {
	client latestTrader
}

var _ Source = (*Alpaca)(nil)

func NewAlpaca(apiKey, apiSecret, baseURL string) *Alpaca {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if baseURL != "" {
		opts.BaseURL = baseURL
	}
	return &Alpaca{client: marketdata.NewClient(opts)}
}

func (a *Alpaca) GetLatestPrice(ctx context.Context, symbol string) (Quote, error) {
	type result struct {
		trade *marketdata.Trade
		err   error
	}
	// The client takes no context; the caller's deadline still bounds the wait.
	ch := make(chan result, 1)
	go func() {
		t, err := a.client.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{})
		ch <- result{t, err}
	}()

	select {
	case <-ctx.Done():
		return Quote{}, fmt.Errorf("alpaca latest trade %s: %w", symbol, ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return Quote{}, fmt.Errorf("alpaca latest trade %s: %w", symbol, r.err)
		}
		if r.trade == nil {
			return Quote{}, fmt.Errorf("%s: %w", symbol, ErrUnknownSymbol)
		}
		return Quote{
			Symbol: symbol,
			Price:  decimal.NewFromFloat(r.trade.Price),
			Source: "alpaca",
			Time:   r.trade.Timestamp,
		}, nil
	}
}

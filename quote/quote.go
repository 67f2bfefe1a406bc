package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradeplatform/config"
)

// ErrUnknownSymbol is returned when a source has no price for a symbol.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Quote is a price and where it came from.
type Quote struct {
	Symbol string
	Price  decimal.Decimal
	Source string
	Time   time.Time
}

// Source returns the latest price for a symbol.
type Source interface {
	GetLatestPrice(ctx context.Context, symbol string) (Quote, error)
}

// New builds the source selected by cfg.Source.
func New(cfg config.QuoteConfig) (Source, error) {
	timeout, err := cfg.ParseTimeout()
	if err != nil {
		return nil, fmt.Errorf("quote timeout: %w", err)
	}

	switch cfg.Source {
	case "static":
		return NewStaticFromStrings(cfg.Prices)
	case "http":
		return &HTTP{
			BaseURL: cfg.BaseURL,
			Token:   cfg.APIKey,
			HTTP:    &http.Client{Timeout: timeout},
		}, nil
	case "alpaca":
		return NewAlpaca(cfg.APIKey, cfg.APISecret, cfg.BaseURL), nil
	}
	return nil, fmt.Errorf("unknown quote source %q", cfg.Source)
}

package admin

import (
	"fmt"
	"time"

	"github.com/rustyeddy/tradeplatform/internal/cli/config"
	"github.com/rustyeddy/tradeplatform/ledger"
)

func openLedger(rc *config.RootConfig) (*ledger.SQLStore, error) {
	c, err := rc.Load()
	if err != nil {
		return nil, err
	}
	l, err := config.OpenLedger(c)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return l, nil
}

// parseDay accepts YYYY-MM-DD, or empty for today in the market timezone.
func parseDay(rc *config.RootConfig, s string) (time.Time, error) {
	if s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad date %q: want YYYY-MM-DD", s)
		}
		return t, nil
	}
	c, err := rc.Load()
	if err != nil {
		return time.Time{}, err
	}
	clock, err := config.Clock(c)
	if err != nil {
		return time.Time{}, err
	}
	return clock.Today(), nil
}

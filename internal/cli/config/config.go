// Package config holds the flags shared by every command and the wiring
// that turns a loaded configuration into running components.
package config

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	appconfig "github.com/rustyeddy/tradeplatform/config"
	"github.com/rustyeddy/tradeplatform/engine"
	"github.com/rustyeddy/tradeplatform/internal/logging"
	"github.com/rustyeddy/tradeplatform/ledger"
	"github.com/rustyeddy/tradeplatform/quote"
	"github.com/rustyeddy/tradeplatform/realtime"
	"github.com/rustyeddy/tradeplatform/rules"
)

type RootConfig struct {
	ConfigPath string
	LogLevel   string
}

// Load reads ConfigPath, or the defaults when it is empty, and applies
// flag overrides.
func (rc *RootConfig) Load() (*appconfig.Config, error) {
	var (
		c   *appconfig.Config
		err error
	)
	if rc.ConfigPath == "" {
		c = appconfig.Default()
	} else if c, err = appconfig.LoadFromFile(rc.ConfigPath); err != nil {
		return nil, err
	}
	if rc.LogLevel != "" {
		c.Logging.Level = rc.LogLevel
	}
	return c, nil
}

func Logger(c *appconfig.Config) (*zap.SugaredLogger, error) {
	return logging.New(c.Logging.Level, c.Logging.Format)
}

// OpenLedger opens the configured relational store. A bare SQLite path gets
// foreign keys and a busy timeout.
func OpenLedger(c *appconfig.Config) (*ledger.SQLStore, error) {
	if c.Ledger.Driver == "sqlite" && !strings.Contains(c.Ledger.DSN, "?") {
		return ledger.NewSQLite(c.Ledger.DSN)
	}
	return ledger.Open(c.Ledger.Driver, c.Ledger.DSN)
}

// OpenRealTime returns nil when the store is disabled.
func OpenRealTime(c *appconfig.Config) (realtime.Store, error) {
	if !c.RealTime.Enabled {
		return nil, nil
	}
	switch c.RealTime.Driver {
	case "", "memory":
		return realtime.NewMemory(), nil
	case "sqlite":
		return realtime.NewSQLite(c.RealTime.Path)
	}
	return nil, fmt.Errorf("unknown realtime driver %q", c.RealTime.Driver)
}

func Clock(c *appconfig.Config) (*rules.MarketClock, error) {
	loc, err := c.Market.Location()
	if err != nil {
		return nil, fmt.Errorf("market timezone: %w", err)
	}
	opensAt, closesAt, err := c.Market.Window()
	if err != nil {
		return nil, err
	}
	return rules.NewMarketClock(loc, opensAt, closesAt), nil
}

// Stack is a fully wired engine and the stores behind it.
type Stack struct {
	Engine   *engine.Engine
	Ledger   *ledger.SQLStore
	RealTime realtime.Store
	Clock    *rules.MarketClock
}

func (s *Stack) Close() error {
	var rtErr error
	if s.RealTime != nil {
		rtErr = s.RealTime.Close()
	}
	return errors.Join(rtErr, s.Ledger.Close())
}

// BuildEngine opens every store the engine needs and constructs it.
func BuildEngine(c *appconfig.Config, log *zap.SugaredLogger) (*Stack, error) {
	posting, err := engine.ParsePosting(c.Service.Posting)
	if err != nil {
		return nil, err
	}
	timeout, err := c.Service.ParseRequestTimeout()
	if err != nil {
		return nil, fmt.Errorf("service.request_timeout: %w", err)
	}
	clock, err := Clock(c)
	if err != nil {
		return nil, err
	}
	quotes, err := quote.New(c.Quote)
	if err != nil {
		return nil, err
	}

	led, err := OpenLedger(c)
	if err != nil {
		return nil, err
	}
	rt, err := OpenRealTime(c)
	if err != nil {
		_ = led.Close()
		return nil, err
	}

	eng, err := engine.New(engine.Deps{
		Ledger:       led,
		RealTime:     rt,
		Quotes:       quotes,
		Clock:        clock,
		Logger:       log,
		Posting:      posting,
		ServiceUser:  c.Service.User,
		Environment:  c.Service.Environment,
		SecurityType: c.Service.SecurityType,
		Timeout:      timeout,
	})
	if err != nil {
		if rt != nil {
			_ = rt.Close()
		}
		_ = led.Close()
		return nil, err
	}
	return &Stack{Engine: eng, Ledger: led, RealTime: rt, Clock: clock}, nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config is the complete tradeplatform configuration.
type Config struct {
	Ledger    LedgerConfig    `json:"ledger" yaml:"ledger"`
	RealTime  RealTimeConfig  `json:"realtime" yaml:"realtime"`
	Quote     QuoteConfig     `json:"quote" yaml:"quote"`
	Market    MarketConfig    `json:"market" yaml:"market"`
	Service   ServiceConfig   `json:"service" yaml:"service"`
	Transport TransportConfig `json:"transport" yaml:"transport"`
	Gateway   GatewayConfig   `json:"gateway" yaml:"gateway"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging"`
}

// LedgerConfig selects the relational store.
type LedgerConfig struct {
	Driver string `json:"driver" yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `json:"dsn" yaml:"dsn"`
}

// RealTimeConfig configures the extended-transaction store.
type RealTimeConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Driver  string `json:"driver" yaml:"driver"` // "memory" or "sqlite"
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// QuoteConfig selects and configures the price source.
type QuoteConfig struct {
	Source    string            `json:"source" yaml:"source"` // "static", "http" or "alpaca"
	Prices    map[string]string `json:"prices,omitempty" yaml:"prices,omitempty"`
	BaseURL   string            `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey    string            `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APISecret string            `json:"api_secret,omitempty" yaml:"api_secret,omitempty"`
	Timeout   string            `json:"timeout" yaml:"timeout"` // e.g. "5s"
}

// MarketConfig is the regular trading session.
type MarketConfig struct {
	Timezone string `json:"timezone" yaml:"timezone"`
	Open     string `json:"open" yaml:"open"`   // "HH:MM"
	Close    string `json:"close" yaml:"close"` // "HH:MM"
}

// ServiceConfig carries the engine's identity and posting behaviour.
type ServiceConfig struct {
	User           string `json:"user" yaml:"user"`
	Posting        string `json:"posting" yaml:"posting"` // "legacy", "realtime" or "dual"
	Environment    string `json:"environment" yaml:"environment"`
	SecurityType   string `json:"security_type" yaml:"security_type"`
	RequestTimeout string `json:"request_timeout" yaml:"request_timeout"`
}

// TransportConfig is where the engine listens for requests.
type TransportConfig struct {
	Addr string `json:"addr" yaml:"addr"`
	Path string `json:"path" yaml:"path"`
}

// GatewayConfig configures the HTTP front end.
type GatewayConfig struct {
	Addr      string `json:"addr" yaml:"addr"`
	Upstream  string `json:"upstream" yaml:"upstream"` // ws:// URL of the engine
	JWTSecret string `json:"jwt_secret,omitempty" yaml:"jwt_secret,omitempty"`
	JWTIssuer string `json:"jwt_issuer,omitempty" yaml:"jwt_issuer,omitempty"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "json" or "console"
}

// ParseTimeout parses the quote timeout.
func (q QuoteConfig) ParseTimeout() (time.Duration, error) {
	if q.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(q.Timeout)
}

// ParseRequestTimeout parses the per-order processing timeout.
func (s ServiceConfig) ParseRequestTimeout() (time.Duration, error) {
	if s.RequestTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(s.RequestTimeout)
}

// Location loads the market timezone.
func (m MarketConfig) Location() (*time.Location, error) {
	return time.LoadLocation(m.Timezone)
}

// Window returns the session open and close as offsets from midnight.
func (m MarketConfig) Window() (opensAt, closesAt time.Duration, err error) {
	opensAt, err = parseClock(m.Open)
	if err != nil {
		return 0, 0, fmt.Errorf("market.open: %w", err)
	}
	closesAt, err = parseClock(m.Close)
	if err != nil {
		return 0, 0, fmt.Errorf("market.close: %w", err)
	}
	return opensAt, closesAt, nil
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Ledger.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("ledger.driver must be 'sqlite' or 'postgres'")
	}
	if c.Ledger.DSN == "" {
		return fmt.Errorf("ledger.dsn is required")
	}

	if c.RealTime.Enabled {
		switch c.RealTime.Driver {
		case "memory":
		case "sqlite":
			if c.RealTime.Path == "" {
				return fmt.Errorf("realtime.path required for sqlite driver")
			}
		default:
			return fmt.Errorf("realtime.driver must be 'memory' or 'sqlite'")
		}
	}

	switch c.Quote.Source {
	case "static":
		if len(c.Quote.Prices) == 0 {
			return fmt.Errorf("quote.prices is required for static source")
		}
	case "http":
		if c.Quote.BaseURL == "" {
			return fmt.Errorf("quote.base_url is required for http source")
		}
	case "alpaca":
		if c.Quote.APIKey == "" || c.Quote.APISecret == "" {
			return fmt.Errorf("quote.api_key and quote.api_secret are required for alpaca source")
		}
	default:
		return fmt.Errorf("quote.source must be 'static', 'http' or 'alpaca'")
	}
	if _, err := c.Quote.ParseTimeout(); err != nil {
		return fmt.Errorf("quote.timeout: %w", err)
	}

	if c.Market.Timezone == "" {
		return fmt.Errorf("market.timezone is required")
	}
	if _, err := c.Market.Location(); err != nil {
		return fmt.Errorf("market.timezone: %w", err)
	}
	opensAt, closesAt, err := c.Market.Window()
	if err != nil {
		return err
	}
	if closesAt <= opensAt {
		return fmt.Errorf("market.close must be after market.open")
	}

	if c.Service.User == "" {
		return fmt.Errorf("service.user is required")
	}
	switch c.Service.Posting {
	case "legacy", "realtime", "dual":
	default:
		return fmt.Errorf("service.posting must be 'legacy', 'realtime' or 'dual'")
	}
	if c.Service.Posting == "dual" && !c.RealTime.Enabled {
		return fmt.Errorf("service.posting 'dual' requires realtime.enabled")
	}
	if _, err := c.Service.ParseRequestTimeout(); err != nil {
		return fmt.Errorf("service.request_timeout: %w", err)
	}

	if c.Transport.Addr == "" {
		return fmt.Errorf("transport.addr is required")
	}
	if !strings.HasPrefix(c.Transport.Path, "/") {
		return fmt.Errorf("transport.path must start with '/'")
	}

	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level is required")
	}
	return nil
}

// Default returns a configuration that runs locally against SQLite with a
// static price table.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Driver: "sqlite",
			DSN:    "./tradeplatform.sqlite",
		},
		RealTime: RealTimeConfig{
			Enabled: true,
			Driver:  "memory",
		},
		Quote: QuoteConfig{
			Source: "static",
			Prices: map[string]string{
				"AAPL": "190.00",
				"MSFT": "410.00",
			},
			Timeout: "5s",
		},
		Market: MarketConfig{
			Timezone: "America/Chicago",
			Open:     "08:30",
			Close:    "15:00",
		},
		Service: ServiceConfig{
			User:           "tradeplatform-svc",
			Posting:        "legacy",
			Environment:    "Production",
			SecurityType:   "Stock",
			RequestTimeout: "10s",
		},
		Transport: TransportConfig{
			Addr: "127.0.0.1:5555",
			Path: "/rpc",
		},
		Gateway: GatewayConfig{
			Addr:      "127.0.0.1:8080",
			Upstream:  "ws://127.0.0.1:5555/rpc",
			JWTIssuer: "tradeplatform",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradeplatform/internal/logging"
	"github.com/rustyeddy/tradeplatform/ledger"
	"github.com/rustyeddy/tradeplatform/quote"
	"github.com/rustyeddy/tradeplatform/realtime"
	"github.com/rustyeddy/tradeplatform/rules"
	"github.com/rustyeddy/tradeplatform/types"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func chicago(t testing.TB) *time.Location {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return loc
}

// Tuesday mid-session and Saturday morning.
func openTime(loc *time.Location) time.Time   { return time.Date(2024, 3, 5, 10, 0, 0, 0, loc) }
func closedTime(loc *time.Location) time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, loc) }

type harness struct {
	t      *testing.T
	eng    *Engine
	store  *ledger.SQLStore
	rt     *realtime.Memory
	quotes *quote.Static
	acct   ledger.Account
	loc    *time.Location

	mu  sync.Mutex
	now time.Time
	ids int
}

type option func(*Deps)

func newHarness(t *testing.T, balance string, opts ...option) *harness {
	t.Helper()

	store, err := ledger.NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h := &harness{
		t:      t,
		store:  store,
		rt:     realtime.NewMemory(),
		quotes: quote.NewStatic(map[string]decimal.Decimal{"ABC": dec("50.00")}),
		loc:    chicago(t),
	}
	h.now = openTime(h.loc)

	clock := rules.NewMarketClock(h.loc, 8*time.Hour+30*time.Minute, 15*time.Hour).
		WithNow(func() time.Time {
			h.mu.Lock()
			defer h.mu.Unlock()
			return h.now
		})

	d := Deps{
		Ledger:       store,
		RealTime:     h.rt,
		Quotes:       h.quotes,
		Clock:        clock,
		Logger:       logging.Nop(),
		ServiceUser:  "test-svc",
		Environment:  "Test",
		SecurityType: "Stock",
		Timeout:      5 * time.Second,
	}
	for _, o := range opts {
		o(&d)
	}

	h.eng, err = New(d)
	require.NoError(t, err)
	h.eng.newID = h.nextID

	h.acct, err = store.CreateAccount(context.Background(), "alice", dec(balance))
	require.NoError(t, err)
	return h
}

func (h *harness) nextID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ids++
	return fmt.Sprintf("TX%04d", h.ids)
}

func (h *harness) setNow(t time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = t
}

func (h *harness) setPrice(symbol, price string) {
	h.quotes.Set(symbol, dec(price))
}

func (h *harness) send(action types.OrderAction, qty int64) TradeResponse {
	return h.eng.Process(context.Background(), h.request(action, qty))
}

func (h *harness) request(action types.OrderAction, qty int64) TradeRequest {
	return TradeRequest{
		AccountID: h.acct.ID,
		Symbol:    "ABC",
		Quantity:  qty,
		Action:    action,
		Type:      types.OrderTypeMarket,
		Timing:    types.TimingDayOnly,
		Origin:    types.OriginPseudoMarkets,
	}
}

func (h *harness) balance() decimal.Decimal {
	h.t.Helper()
	a, err := h.store.GetAccount(context.Background(), h.acct.ID)
	require.NoError(h.t, err)
	return a.Balance
}

func (h *harness) position() (ledger.Position, bool) {
	h.t.Helper()
	p, err := h.store.GetPosition(context.Background(), h.acct.ID, "ABC")
	if err != nil {
		require.ErrorIs(h.t, err, ledger.ErrNotFound)
		return ledger.Position{}, false
	}
	return p, true
}

func (h *harness) orders() []ledger.Order {
	h.t.Helper()
	out, err := h.store.ListOrders(context.Background(), h.acct.ID)
	require.NoError(h.t, err)
	return out
}

func (h *harness) lots() []ledger.TradeLot {
	h.t.Helper()
	ls, err := h.store.ListTradeLots(context.Background(), h.acct.ID, "ABC")
	require.NoError(h.t, err)
	return ls
}

// seedPosition writes a position directly, bypassing the engine.
func (h *harness) seedPosition(qty int64, value string) {
	h.t.Helper()
	ctx := context.Background()
	u, err := h.store.Begin(ctx)
	require.NoError(h.t, err)
	_, err = u.CreatePosition(ctx, ledger.Position{AccountID: h.acct.ID, Symbol: "ABC", Quantity: qty, Value: dec(value)})
	require.NoError(h.t, err)
	require.NoError(h.t, u.Commit())
}

package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradeplatform/realtime"
	"github.com/rustyeddy/tradeplatform/types"
)

func TestBuyOpensLongPosition(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "10000")

	resp := h.send(types.ActionBuy, 10)
	require.Equal(t, ExecutionOk, resp.StatusCode, resp.StatusMessage)
	assert.Equal(t, MsgExecuted, resp.StatusMessage)
	require.NotNil(t, resp.Order)
	assert.NotZero(t, resp.Order.ID)
	assert.Equal(t, "TX0001", resp.Order.TransactionID)
	assert.True(t, dec("50").Equal(resp.Order.Price))

	pos, ok := h.position()
	require.True(t, ok)
	assert.Equal(t, int64(10), pos.Quantity)
	assert.True(t, dec("500").Equal(pos.Value), pos.Value.String())
	assert.True(t, dec("9500").Equal(h.balance()))

	lots := h.lots()
	require.Len(t, lots, 1)
	assert.Equal(t, types.LotBuySide, lots[0].Side)
	assert.Equal(t, pos.ID, lots[0].PositionID)

	et, err := h.rt.Get(context.Background(), "TX0001")
	require.NoError(t, err)
	assert.Equal(t, "NEW LONG POS BUY SIDE TRAN", et.Description)
	assert.Equal(t, types.TransferDebit, et.TransferType)
	assert.True(t, dec("10000").Equal(et.StartingBalance))
	assert.True(t, dec("9500").Equal(et.EndingBalance))
	assert.Equal(t, "test-svc", et.ServiceUser)
	assert.Equal(t, "static", et.MarketDataSource)
	assert.Equal(t, "Test", et.Environment)
}

func TestSellLiquidatesWithoutLots(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "9500")
	h.seedPosition(10, "500")
	h.setPrice("ABC", "60.00")

	resp := h.send(types.ActionSell, 10)
	require.Equal(t, ExecutionOk, resp.StatusCode, resp.StatusMessage)

	_, ok := h.position()
	assert.False(t, ok, "position removed")
	assert.True(t, dec("10100").Equal(h.balance()), h.balance().String())

	lots := h.lots()
	require.Len(t, lots, 1)
	assert.Equal(t, types.LotSellSide, lots[0].Side)
	assert.True(t, lots[0].Liquidating)
}

func TestSellCreditsFIFOWhenLotsExist(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "10000")
	require.True(t, h.send(types.ActionBuy, 10).OK())
	h.setPrice("ABC", "60.00")

	resp := h.send(types.ActionSell, 10)
	require.True(t, resp.OK(), resp.StatusMessage)

	// FIFO over one buy lot: 600 - 500.
	assert.True(t, dec("9600").Equal(h.balance()), h.balance().String())
	_, ok := h.position()
	assert.False(t, ok)
}

func TestSellPartial(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "9500")
	h.seedPosition(10, "500")
	h.setPrice("ABC", "60.00")

	resp := h.send(types.ActionSell, 4)
	require.True(t, resp.OK(), resp.StatusMessage)

	pos, ok := h.position()
	require.True(t, ok)
	assert.Equal(t, int64(6), pos.Quantity)
	assert.True(t, dec("260").Equal(pos.Value), pos.Value.String())
	assert.True(t, dec("9740").Equal(h.balance()), h.balance().String())

	et, err := h.rt.Get(context.Background(), resp.Order.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "REDUCE SHARES LONG POS SELL SIDE TRAN", et.Description)
	assert.Equal(t, types.TransferCredit, et.TransferType)
}

func TestMarketClosedQueuesOrder(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "10000")
	h.setNow(closedTime(h.loc))

	req := h.request(types.ActionBuy, 10)
	req.EnforceMarketOpenCheck = true
	resp := h.eng.Process(context.Background(), req)

	assert.Equal(t, ExecutionOk, resp.StatusCode)
	assert.Equal(t, MsgQueued, resp.StatusMessage)
	assert.Nil(t, resp.Order)

	assert.True(t, dec("10000").Equal(h.balance()))
	_, ok := h.position()
	assert.False(t, ok)
	assert.Empty(t, h.orders())

	queued, err := h.store.ListQueuedOrders(context.Background(), closedTime(h.loc), true)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, "ABC", queued[0].Symbol)
	assert.Equal(t, int64(10), queued[0].Quantity)
	assert.Equal(t, h.acct.ID, queued[0].AccountID)
}

func TestMarketClosedWithoutEnforcementExecutes(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "10000")
	h.setNow(closedTime(h.loc))

	resp := h.send(types.ActionBuy, 10)
	require.True(t, resp.OK(), resp.StatusMessage)
	assert.Equal(t, MsgExecuted, resp.StatusMessage)
}

func TestHolidayQueuesOrder(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "10000")
	require.NoError(t, h.store.AddMarketHoliday(context.Background(), openTime(h.loc), "Test Day"))

	req := h.request(types.ActionBuy, 10)
	req.EnforceMarketOpenCheck = true
	resp := h.eng.Process(context.Background(), req)
	assert.Equal(t, MsgQueued, resp.StatusMessage)
	assert.True(t, dec("10000").Equal(h.balance()))
}

func TestRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(r *TradeRequest)
		msg    string
	}{
		{"zero quantity", func(r *TradeRequest) { r.Quantity = 0 }, MsgInvalidOrder},
		{"unknown action", func(r *TradeRequest) { r.Action = "HOLD" }, MsgInvalidOrder},
		{"negative buy", func(r *TradeRequest) { r.Quantity = -5 }, MsgInvalidOrder},
		{"empty symbol", func(r *TradeRequest) { r.Symbol = "  " }, MsgInvalidOrder},
		{"unknown type", func(r *TradeRequest) { r.Type = "Iceberg" }, MsgInvalidOrder},
		{"unknown origin", func(r *TradeRequest) { r.Origin = "NYSE" }, MsgInvalidOrder},
		{"no quote", func(r *TradeRequest) { r.Symbol = "NOPE" }, MsgInvalidOrder},
		{"unknown account", func(r *TradeRequest) { r.AccountID = 999 }, MsgInvalidAccount},
		{"insufficient funds", func(r *TradeRequest) { r.Quantity = 1000 }, MsgInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "10000")
			req := h.request(types.ActionBuy, 10)
			tt.mutate(&req)

			resp := h.eng.Process(context.Background(), req)
			assert.Equal(t, ExecutionError, resp.StatusCode)
			assert.Equal(t, tt.msg, resp.StatusMessage)
			assert.Nil(t, resp.Order)

			assert.True(t, dec("10000").Equal(h.balance()))
			assert.Empty(t, h.orders())
			_, err := h.store.GetTransaction(context.Background(), "TX0001")
			assert.Error(t, err, "no transaction row is written")
		})
	}
}

func TestSymbolIsNormalised(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "10000")
	req := h.request(types.ActionBuy, 1)
	req.Symbol = " abc "
	resp := h.eng.Process(context.Background(), req)
	require.True(t, resp.OK(), resp.StatusMessage)
	assert.Equal(t, "ABC", resp.Order.Symbol)
}

func TestRealTimePostingUnsupported(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "10000", func(d *Deps) { d.Posting = RealTimePosting{} })

	resp := h.send(types.ActionBuy, 10)
	assert.Equal(t, ExecutionError, resp.StatusCode)
	assert.Equal(t, MsgRealTimeUnsupported, resp.StatusMessage)
	assert.Empty(t, h.orders())
}

type failingStore struct{ realtime.Store }

func (failingStore) Upsert(ctx context.Context, et realtime.ExtendedTransaction) error {
	return assert.AnError
}

func TestRealTimeFailureDoesNotAbortOrder(t *testing.T) {
	t.Parallel()

	for _, posting := range []Posting{LegacyPosting{}, DualPosting{}} {
		t.Run(posting.String(), func(t *testing.T) {
			h := newHarness(t, "10000", func(d *Deps) {
				d.RealTime = failingStore{realtime.NewMemory()}
				d.Posting = posting
			})

			resp := h.send(types.ActionBuy, 10)
			require.True(t, resp.OK(), resp.StatusMessage)
			assert.True(t, dec("9500").Equal(h.balance()))
		})
	}
}

func TestLegacyPostingWithoutRealTimeStore(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "10000", func(d *Deps) { d.RealTime = nil })
	resp := h.send(types.ActionBuy, 10)
	require.True(t, resp.OK(), resp.StatusMessage)
}

func TestNewValidatesDeps(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "1")

	_, err := New(Deps{Quotes: h.quotes, Clock: h.eng.clock})
	assert.ErrorContains(t, err, "ledger is required")

	_, err = New(Deps{Ledger: h.store, Clock: h.eng.clock})
	assert.ErrorContains(t, err, "quote source is required")

	_, err = New(Deps{Ledger: h.store, Quotes: h.quotes})
	assert.ErrorContains(t, err, "market clock is required")

	_, err = New(Deps{Ledger: h.store, Quotes: h.quotes, Clock: h.eng.clock, Posting: DualPosting{}})
	assert.ErrorContains(t, err, "dual posting requires a real-time store")

	e, err := New(Deps{Ledger: h.store, Quotes: h.quotes, Clock: h.eng.clock})
	require.NoError(t, err)
	assert.Equal(t, LegacyPosting{}, e.posting)
	assert.Equal(t, defaultTimeout, e.timeout)
}

func TestParseActionAndPosting(t *testing.T) {
	t.Parallel()

	for _, a := range []types.OrderAction{types.ActionBuy, types.ActionSell, types.ActionSellShort} {
		got, err := ParseAction(a)
		require.NoError(t, err)
		assert.Equal(t, a, got.Kind())
	}
	_, err := ParseAction("HOLD")
	assert.Error(t, err)

	for _, s := range []string{"legacy", "realtime", "dual"} {
		p, err := ParsePosting(s)
		require.NoError(t, err)
		assert.Equal(t, s, p.String())
	}
	p, err := ParsePosting("")
	require.NoError(t, err)
	assert.Equal(t, LegacyPosting{}, p)
	_, err = ParsePosting("aerospike")
	assert.Error(t, err)
}

func TestStatusCodeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ExecutionOk", ExecutionOk.String())
	assert.Equal(t, "ExecutionError", ExecutionError.String())
	assert.Equal(t, "StatusCode(7)", StatusCode(7).String())
}

package orders

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradeplatform/engine"
	"github.com/rustyeddy/tradeplatform/internal/cli/config"
	"github.com/rustyeddy/tradeplatform/internal/logging"
	"github.com/rustyeddy/tradeplatform/transport"
	"github.com/rustyeddy/tradeplatform/types"
)

func engineURL(t *testing.T, got *engine.TradeRequest, resp engine.TradeResponse) string {
	t.Helper()
	srv := httptest.NewServer(transport.NewServer(transport.HandlerFunc(
		func(ctx context.Context, req engine.TradeRequest) engine.TradeResponse {
			*got = req
			return resp
		}), logging.Nop()))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestOrderCommand(t *testing.T) {
	var got engine.TradeRequest
	url := engineURL(t, &got, engine.TradeResponse{StatusMessage: engine.MsgExecuted})

	var out bytes.Buffer
	cmd := NewOrder(&config.RootConfig{})
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--url", url, "--account", "4", "--symbol", "AAPL", "--qty", "3",
		"--action", "SELLSHORT", "--enforce-market-hours"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, int64(4), got.AccountID)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, int64(3), got.Quantity)
	assert.Equal(t, types.ActionSellShort, got.Action)
	assert.Equal(t, types.OrderTypeMarket, got.Type)
	assert.True(t, got.EnforceMarketOpenCheck)
	assert.Contains(t, out.String(), engine.MsgExecuted)
}

func TestOrderCommandReportsRejection(t *testing.T) {
	var got engine.TradeRequest
	url := engineURL(t, &got, engine.TradeResponse{
		StatusMessage: engine.MsgInsufficientBalance,
		StatusCode:    engine.ExecutionError,
	})

	cmd := NewOrder(&config.RootConfig{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--url", url, "--account", "1", "--symbol", "AAPL", "--qty", "3"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), engine.MsgInsufficientBalance)
}

func TestOrderCommandValidatesFlags(t *testing.T) {
	cmd := NewOrder(&config.RootConfig{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--symbol", "AAPL"})
	assert.ErrorContains(t, cmd.Execute(), "--account")
}

func TestDrainAndCancelCommands(t *testing.T) {
	for _, cancel := range []bool{false, true} {
		var got engine.TradeRequest
		url := engineURL(t, &got, engine.TradeResponse{StatusMessage: engine.MsgDrained})

		cmd := NewDrain(&config.RootConfig{})
		if cancel {
			cmd = NewCancel(&config.RootConfig{})
		}
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"--url", url, "--date", "2024-03-05", "--ids", "3,5"})
		require.NoError(t, cmd.Execute())

		require.NotNil(t, got.Drainer)
		assert.Equal(t, "2024-03-05", got.Drainer.Date)
		assert.Equal(t, []int64{3, 5}, got.Drainer.OrderIDs)
		assert.Equal(t, cancel, got.Drainer.IsOrderCanceled)
	}

	cmd := NewDrain(&config.RootConfig{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--url", "ws://127.0.0.1:1/rpc"})
	assert.ErrorContains(t, cmd.Execute(), "--all or --ids")
}

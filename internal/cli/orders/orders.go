package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeplatform/engine"
	"github.com/rustyeddy/tradeplatform/internal/cli/config"
	"github.com/rustyeddy/tradeplatform/transport"
	"github.com/rustyeddy/tradeplatform/types"
)

type connFlags struct {
	url     string
	timeout time.Duration
}

func (f *connFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "", "Engine websocket URL (default from transport config)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 15*time.Second, "Request timeout")
}

func send(cmd *cobra.Command, rc *config.RootConfig, f connFlags, req engine.TradeRequest) error {
	url := f.url
	if url == "" {
		c, err := rc.Load()
		if err != nil {
			return err
		}
		url = "ws://" + c.Transport.Addr + c.Transport.Path
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
	defer cancel()

	client, err := transport.Dial(ctx, url)
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.Send(ctx, req)
	if err != nil {
		return err
	}
	if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("%s", resp.StatusMessage)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewOrder sends one trade request to a running engine.
func NewOrder(rc *config.RootConfig) *cobra.Command {
	var (
		conn   connFlags
		req    engine.TradeRequest
		action string
		typ    string
		timing string
		origin string
	)

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Send a trade request to the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.AccountID <= 0 {
				return fmt.Errorf("--account is required")
			}
			if req.Symbol == "" {
				return fmt.Errorf("--symbol is required")
			}
			req.Action = types.OrderAction(action)
			req.Type = types.OrderType(typ)
			req.Timing = types.OrderTiming(timing)
			req.Origin = types.OrderOrigin(origin)
			return send(cmd, rc, conn, req)
		},
	}

	conn.bind(cmd)
	cmd.Flags().Int64Var(&req.AccountID, "account", 0, "Account id")
	cmd.Flags().StringVar(&req.Symbol, "symbol", "", "Ticker symbol")
	cmd.Flags().Int64Var(&req.Quantity, "qty", 0, "Share quantity")
	cmd.Flags().StringVar(&action, "action", string(types.ActionBuy), "BUY|SELL|SELLSHORT")
	cmd.Flags().StringVar(&typ, "type", string(types.OrderTypeMarket), "Market|Limit|Stop|StopLimit")
	cmd.Flags().StringVar(&timing, "timing", string(types.TimingDayOnly), "DayOnly|AfterHours")
	cmd.Flags().StringVar(&origin, "origin", "", "PseudoMarkets|PseudoXchange")
	cmd.Flags().BoolVar(&req.EnforceMarketOpenCheck, "enforce-market-hours", false, "Queue the order when the market is closed")
	return cmd
}

// NewDrain replays queued orders; NewCancel closes them without trading.
func NewDrain(rc *config.RootConfig) *cobra.Command  { return newCloseCmd(rc, false) }
func NewCancel(rc *config.RootConfig) *cobra.Command { return newCloseCmd(rc, true) }

func newCloseCmd(rc *config.RootConfig, cancel bool) *cobra.Command {
	var (
		conn connFlags
		dr   engine.DrainRequest
	)

	use, short := "drain", "Replay queued orders for a day"
	if cancel {
		use, short = "cancel", "Cancel queued orders for a day"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dr.ProcessAllOrders && len(dr.OrderIDs) == 0 {
				return fmt.Errorf("pass --all or --ids")
			}
			dr.IsOrderCanceled = cancel
			return send(cmd, rc, conn, engine.TradeRequest{Drainer: &dr})
		},
	}

	conn.bind(cmd)
	cmd.Flags().StringVar(&dr.Date, "date", "", "Order date YYYY-MM-DD (default today)")
	cmd.Flags().Int64SliceVar(&dr.OrderIDs, "ids", nil, "Queued order ids")
	cmd.Flags().BoolVar(&dr.ProcessAllOrders, "all", false, "Every open order for the date")
	return cmd
}

package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeplatform/internal/cli/config"
	"github.com/rustyeddy/tradeplatform/ledger"
)

func NewQueue(rc *config.RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect orders queued while the market was closed",
	}

	var (
		date string
		all  bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List queued orders for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(rc, date)
			if err != nil {
				return err
			}

			l, err := openLedger(rc)
			if err != nil {
				return err
			}
			defer l.Close()

			qs, err := l.ListQueuedOrders(cmd.Context(), day, !all)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), ledger.FormatQueuedOrg(qs))
			return nil
		},
	}
	list.Flags().StringVar(&date, "date", "", "Order date YYYY-MM-DD (default today)")
	list.Flags().BoolVar(&all, "all", false, "Include drained and cancelled orders")

	cmd.AddCommand(list)
	return cmd
}

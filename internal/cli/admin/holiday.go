package admin

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeplatform/internal/cli/config"
)

func NewHoliday(rc *config.RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holiday",
		Short: "Manage the market holiday calendar",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <YYYY-MM-DD> [name]",
		Short: "Mark a date as a market holiday",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := time.Parse(time.DateOnly, args[0])
			if err != nil {
				return fmt.Errorf("bad date %q: want YYYY-MM-DD", args[0])
			}
			name := ""
			if len(args) == 2 {
				name = args[1]
			}

			l, err := openLedger(rc)
			if err != nil {
				return err
			}
			defer l.Close()

			if err := l.AddMarketHoliday(cmd.Context(), day, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "holiday %s added\n", day.Format(time.DateOnly))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List market holidays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLedger(rc)
			if err != nil {
				return err
			}
			defer l.Close()

			hs, err := l.ListMarketHolidays(cmd.Context())
			if err != nil {
				return err
			}
			for _, h := range hs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", h.Date.Format(time.DateOnly), h.Name)
			}
			return nil
		},
	})
	return cmd
}

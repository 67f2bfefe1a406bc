package admin

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeplatform/internal/cli/config"
	"github.com/rustyeddy/tradeplatform/ledger"
)

func NewAccount(rc *config.RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage brokerage accounts",
	}
	cmd.AddCommand(
		newAccountCreateCmd(rc),
		newAccountShowCmd(rc),
	)
	return cmd
}

func newAccountCreateCmd(rc *config.RootConfig) *cobra.Command {
	var balance string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an account with a starting cash balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bal, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("bad --balance: %w", err)
			}
			if bal.IsNegative() {
				return fmt.Errorf("--balance must not be negative")
			}

			l, err := openLedger(rc)
			if err != nil {
				return err
			}
			defer l.Close()

			a, err := l.CreateAccount(cmd.Context(), args[0], bal)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ledger.FormatAccountOrg(a, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&balance, "balance", "0", "Starting balance")
	return cmd
}

func newAccountShowCmd(rc *config.RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "show <account-id>",
		Short: "Show an account and its positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad account id %q", args[0])
			}

			l, err := openLedger(rc)
			if err != nil {
				return err
			}
			defer l.Close()

			a, err := l.GetAccount(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("account %d: %w", id, err)
			}
			positions, err := l.ListPositions(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ledger.FormatAccountOrg(a, positions))
			return nil
		},
	}
}

package ledger

import (
	"fmt"
	"strings"
	"time"
)

// FormatAccountOrg renders an account and its open positions as an Org-mode
// block. Structured facts go in a PROPERTIES drawer so they stay searchable.
func FormatAccountOrg(a Account, positions []Position) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Account: %s (%d)\n", a.Name, a.ID)
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ACCOUNT_ID: %d\n", a.ID)
	fmt.Fprintf(&b, ":NAME: %s\n", a.Name)
	fmt.Fprintf(&b, ":BALANCE: %s\n", a.Balance.StringFixed(2))
	fmt.Fprintf(&b, ":CREATED: %s\n", a.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":POSITIONS: %d\n", len(positions))
	b.WriteString(":END:\n")

	if len(positions) == 0 {
		return b.String()
	}
	b.WriteString("\n| Symbol | Quantity | Value |\n|-\n")
	for _, p := range positions {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", p.Symbol, p.Quantity, p.Value.StringFixed(2))
	}
	return b.String()
}

// FormatQueuedOrg renders a day's backlog as an Org table.
func FormatQueuedOrg(queued []QueuedOrder) string {
	var b strings.Builder
	b.WriteString("| ID | Account | Symbol | Action | Qty | Date | Open | Closed As |\n|-\n")
	for _, q := range queued {
		fmt.Fprintf(&b, "| %d | %d | %s | %s | %d | %s | %t | %s |\n",
			q.ID, q.AccountID, q.Symbol, q.Action, q.Quantity,
			q.OrderDate.Format(dateLayout), q.Open, q.CloseReason)
	}
	return b.String()
}

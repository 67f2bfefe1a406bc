package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/rustyeddy/tradeplatform/types"
)

func TestValidateOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    OrderInput
		valid bool
		codes []string
	}{
		{
			name:  "buy 100",
			in:    OrderInput{Action: types.ActionBuy, Type: types.OrderTypeMarket, Timing: types.TimingDayOnly, Quantity: 100},
			valid: true,
		},
		{
			name:  "sell 5 limit after hours",
			in:    OrderInput{Action: types.ActionSell, Type: types.OrderTypeLimit, Timing: types.TimingAfterHours, Quantity: 5},
			valid: true,
		},
		{
			name:  "short with negative quantity",
			in:    OrderInput{Action: types.ActionSellShort, Type: types.OrderTypeMarket, Timing: types.TimingDayOnly, Quantity: -20},
			valid: true,
		},
		{
			name:  "short with magnitude",
			in:    OrderInput{Action: types.ActionSellShort, Type: types.OrderTypeMarket, Timing: types.TimingDayOnly, Quantity: 20},
			valid: true,
		},
		{
			name:  "zero quantity",
			in:    OrderInput{Action: types.ActionBuy, Type: types.OrderTypeMarket, Timing: types.TimingDayOnly},
			codes: []string{"NO_QUANTITY"},
		},
		{
			name:  "negative buy",
			in:    OrderInput{Action: types.ActionBuy, Type: types.OrderTypeMarket, Timing: types.TimingDayOnly, Quantity: -1},
			codes: []string{"NEGATIVE_QUANTITY"},
		},
		{
			name:  "negative sell",
			in:    OrderInput{Action: types.ActionSell, Type: types.OrderTypeMarket, Timing: types.TimingDayOnly, Quantity: -1},
			codes: []string{"NEGATIVE_QUANTITY"},
		},
		{
			name:  "unknown action",
			in:    OrderInput{Action: "HOLD", Type: types.OrderTypeMarket, Timing: types.TimingDayOnly, Quantity: 1},
			codes: []string{"UNKNOWN_ACTION"},
		},
		{
			name:  "lowercase action",
			in:    OrderInput{Action: "buy", Type: types.OrderTypeMarket, Timing: types.TimingDayOnly, Quantity: 1},
			codes: []string{"UNKNOWN_ACTION"},
		},
		{
			name:  "everything wrong",
			in:    OrderInput{Action: "", Type: "", Timing: ""},
			codes: []string{"UNKNOWN_ACTION", "NO_QUANTITY", "UNKNOWN_TYPE", "UNKNOWN_TIMING"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ValidateOrder(tt.in)
			assert.Equal(t, tt.valid, d.Allowed)
			assert.Equal(t, tt.valid, IsOrderValid(tt.in))

			var codes []string
			for _, v := range d.Violations {
				codes = append(codes, v.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestIsOrderValidRejectsZeroQuantity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		action := rapid.SampledFrom([]types.OrderAction{types.ActionBuy, types.ActionSell, types.ActionSellShort}).Draw(t, "action")
		in := OrderInput{Action: action, Type: types.OrderTypeMarket, Timing: types.TimingDayOnly}
		if IsOrderValid(in) {
			t.Fatalf("zero quantity accepted for %s", action)
		}
	})
}

func TestIsOrderValidRejectsUnknownActions(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		action := types.OrderAction(rapid.String().Draw(t, "action"))
		if action.Valid() {
			t.Skip("drew a known action")
		}
		qty := rapid.Int64Range(1, 1_000_000).Draw(t, "qty")
		in := OrderInput{Action: action, Type: types.OrderTypeMarket, Timing: types.TimingDayOnly, Quantity: qty}
		if IsOrderValid(in) {
			t.Fatalf("unknown action %q accepted", action)
		}
	})
}

func TestHasSufficientFunds(t *testing.T) {
	t.Parallel()

	price := decimal.RequireFromString("50.00")

	tests := []struct {
		name    string
		balance string
		qty     int64
		want    bool
	}{
		{"exact", "500", 10, true},
		{"surplus", "10000", 10, true},
		{"short by a cent", "499.99", 10, false},
		{"negative quantity uses magnitude", "499.99", -10, false},
		{"negative balance", "-1", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HasSufficientFunds(decimal.RequireFromString(tt.balance), tt.qty, price)
			assert.Equal(t, tt.want, got)
		})
	}
}

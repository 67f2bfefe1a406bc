package rules

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradeplatform/types"
)

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// OrderInput is the part of a trade request that validity depends on.
type OrderInput struct {
	Action   types.OrderAction
	Type     types.OrderType
	Timing   types.OrderTiming
	Quantity int64
}

// ValidateOrder checks an inbound order and reports every problem found.
// Anything it does not recognise is a violation.
func ValidateOrder(o OrderInput) Decision {
	d := Decision{Allowed: true}

	if !o.Action.Valid() {
		d.add("UNKNOWN_ACTION", "order action must be BUY, SELL or SELLSHORT")
	}
	if o.Quantity == 0 {
		d.add("NO_QUANTITY", "quantity must be non-zero")
	} else if o.Quantity < 0 && (o.Action == types.ActionBuy || o.Action == types.ActionSell) {
		d.add("NEGATIVE_QUANTITY", "BUY and SELL require a positive quantity")
	}
	if !o.Type.Valid() {
		d.add("UNKNOWN_TYPE", "unrecognised order type")
	}
	if !o.Timing.Valid() {
		d.add("UNKNOWN_TIMING", "unrecognised order timing")
	}

	return d
}

// IsOrderValid is ValidateOrder reduced to a yes/no.
func IsOrderValid(o OrderInput) bool {
	return ValidateOrder(o).Allowed
}

// HasSufficientFunds reports whether balance covers |qty| * price.
func HasSufficientFunds(balance decimal.Decimal, qty int64, price decimal.Decimal) bool {
	return balance.GreaterThanOrEqual(OrderMarketValue(qty, price))
}

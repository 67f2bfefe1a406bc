package engine

import (
	"context"
	"fmt"

	"github.com/rustyeddy/tradeplatform/types"
)

// Action is the closed set of order actions. Only this package can add
// variants, so every dispatch over Action is exhaustive.
type Action interface {
	Kind() types.OrderAction
	apply(ctx context.Context, f *fill) (outcome, error)
}

type Buy struct{}
type Sell struct{}
type ShortSell struct{}

func (Buy) Kind() types.OrderAction       { return types.ActionBuy }
func (Sell) Kind() types.OrderAction      { return types.ActionSell }
func (ShortSell) Kind() types.OrderAction { return types.ActionSellShort }

func ParseAction(a types.OrderAction) (Action, error) {
	switch a {
	case types.ActionBuy:
		return Buy{}, nil
	case types.ActionSell:
		return Sell{}, nil
	case types.ActionSellShort:
		return ShortSell{}, nil
	}
	return nil, fmt.Errorf("unknown order action %q", a)
}

// Posting selects which stores an executed order is posted to.
type Posting interface {
	String() string
	posting()
}

// LegacyPosting writes the relational ledger and, when a real-time store is
// configured, the extended transaction.
type LegacyPosting struct{}

// RealTimePosting would post only to the real-time store. It is not
// supported; orders are answered with an error.
type RealTimePosting struct{}

// DualPosting writes both stores and requires a real-time store.
type DualPosting struct{}

func (LegacyPosting) posting()   {}
func (RealTimePosting) posting() {}
func (DualPosting) posting()     {}

func (LegacyPosting) String() string   { return "legacy" }
func (RealTimePosting) String() string { return "realtime" }
func (DualPosting) String() string     { return "dual" }

func ParsePosting(s string) (Posting, error) {
	switch s {
	case "", "legacy":
		return LegacyPosting{}, nil
	case "realtime":
		return RealTimePosting{}, nil
	case "dual":
		return DualPosting{}, nil
	}
	return nil, fmt.Errorf("unknown posting mode %q", s)
}

package types

type OrderAction string

type OrderType string

type OrderTiming string

type OrderOrigin string

type LotSide string

type TransferType string

type CloseReason string

const (
	ActionBuy       OrderAction = "BUY"
	ActionSell      OrderAction = "SELL"
	ActionSellShort OrderAction = "SELLSHORT"
)

const (
	OrderTypeMarket    OrderType = "Market"
	OrderTypeLimit     OrderType = "Limit"
	OrderTypeStop      OrderType = "Stop"
	OrderTypeStopLimit OrderType = "StopLimit"
)

const (
	TimingDayOnly    OrderTiming = "DayOnly"
	TimingAfterHours OrderTiming = "AfterHours"
)

const (
	OriginPseudoMarkets OrderOrigin = "PseudoMarkets"
	OriginPseudoXchange OrderOrigin = "PseudoXchange"
)

const (
	LotBuySide       LotSide = "BuySide"
	LotSellSide      LotSide = "SellSide"
	LotShortSellSide LotSide = "ShortSellSide"
)

const (
	TransferDebit  TransferType = "DEBIT"
	TransferCredit TransferType = "CREDIT"
)

const (
	CloseDrained   CloseReason = "drained"
	CloseCancelled CloseReason = "cancelled"
)

func (a OrderAction) Valid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionSellShort:
		return true
	}
	return false
}

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStop, OrderTypeStopLimit:
		return true
	}
	return false
}

func (t OrderTiming) Valid() bool {
	switch t {
	case TimingDayOnly, TimingAfterHours:
		return true
	}
	return false
}

// Valid reports whether o is a known origin. An empty origin is accepted and
// recorded as PseudoMarkets.
func (o OrderOrigin) Valid() bool {
	switch o {
	case "", OriginPseudoMarkets, OriginPseudoXchange:
		return true
	}
	return false
}

func (s LotSide) Valid() bool {
	switch s {
	case LotBuySide, LotSellSide, LotShortSellSide:
		return true
	}
	return false
}

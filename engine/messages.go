package engine

import (
	"fmt"

	"github.com/rustyeddy/tradeplatform/ledger"
	"github.com/rustyeddy/tradeplatform/types"
)

type StatusCode int

const (
	ExecutionOk StatusCode = iota
	ExecutionError
)

func (c StatusCode) String() string {
	switch c {
	case ExecutionOk:
		return "ExecutionOk"
	case ExecutionError:
		return "ExecutionError"
	}
	return fmt.Sprintf("StatusCode(%d)", int(c))
}

const (
	MsgExecuted            = "Order executed successfully"
	MsgFailed              = "Order could not be processed"
	MsgInvalidOrder        = "Invalid symbol or quantity"
	MsgInvalidAccount      = "Invalid account"
	MsgInsufficientBalance = "Insufficient balance"
	MsgInvalidOrderType    = "Invalid order type"
	MsgNoPosition          = "No position for symbol: "
	MsgShortAgainstLong    = "Cannot short sell against an existing long position"
	MsgExceedsPosition     = "Order quantity exceeds position"
	MsgQueued              = "Market is closed, order has been queued to be filled on next market open"
	MsgRealTimeUnsupported = "Real-time posting is not enabled"
	MsgDrained             = "Order(s) drained"
	MsgCancelled           = "Order(s) cancelled"
	MsgDrainFailed         = "Could not drain order(s), check logs for more details"
)

// TradeRequest is one inbound message. When Drainer is set the trade fields
// are ignored and the request drains or cancels queued orders instead.
type TradeRequest struct {
	AccountID              int64             `json:"accountId" msgpack:"account_id"`
	Symbol                 string            `json:"symbol" msgpack:"symbol"`
	Quantity               int64             `json:"quantity" msgpack:"quantity"`
	Action                 types.OrderAction `json:"orderAction" msgpack:"order_action"`
	Type                   types.OrderType   `json:"orderType" msgpack:"order_type"`
	Timing                 types.OrderTiming `json:"orderTiming" msgpack:"order_timing"`
	Origin                 types.OrderOrigin `json:"orderOrigin,omitempty" msgpack:"order_origin"`
	EnforceMarketOpenCheck bool              `json:"enforceMarketOpenCheck" msgpack:"enforce_market_open_check"`
	Drainer                *DrainRequest     `json:"drainer,omitempty" msgpack:"drainer,omitempty"`
}

// DrainRequest replays or cancels queued orders for a day. Date is
// YYYY-MM-DD (YYYYMMDD is also accepted); empty means the current market day.
// OrderIDs is ignored when ProcessAllOrders is set.
type DrainRequest struct {
	Date             string  `json:"date" msgpack:"date"`
	IsOrderCanceled  bool    `json:"isOrderCanceled" msgpack:"is_order_canceled"`
	OrderIDs         []int64 `json:"orderIds,omitempty" msgpack:"order_ids"`
	ProcessAllOrders bool    `json:"processAllOrders" msgpack:"process_all_orders"`
}

type TradeResponse struct {
	StatusMessage string        `json:"statusMessage" msgpack:"status_message"`
	StatusCode    StatusCode    `json:"statusCode" msgpack:"status_code"`
	Order         *ledger.Order `json:"order" msgpack:"order"`
}

func (r TradeResponse) OK() bool { return r.StatusCode == ExecutionOk }

func reject(msg string) TradeResponse {
	return TradeResponse{StatusMessage: msg, StatusCode: ExecutionError}
}

func failure() TradeResponse {
	return reject(MsgFailed)
}

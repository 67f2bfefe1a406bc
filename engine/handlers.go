package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradeplatform/costbasis"
	"github.com/rustyeddy/tradeplatform/ledger"
	"github.com/rustyeddy/tradeplatform/realtime"
	"github.com/rustyeddy/tradeplatform/rules"
	"github.com/rustyeddy/tradeplatform/types"
)

// fill is the state one handler works on: an open unit of work, the locked
// account and the order just created.
type fill struct {
	uow         ledger.UnitOfWork
	account     ledger.Account
	order       ledger.Order
	quoteSource string
	serviceUser string
}

type outcome struct {
	order   *ledger.Order
	message string
	status  StatusCode
	audit   *realtime.ExtendedTransaction
}

func (f *fill) marketValue() decimal.Decimal {
	return rules.OrderMarketValue(f.order.Quantity, f.order.Price)
}

// rejectOrder deletes the order created for this request. The transaction
// row stays.
func (f *fill) rejectOrder(ctx context.Context, msg string) (outcome, error) {
	if err := f.uow.DeleteOrder(ctx, f.order.ID); err != nil {
		return outcome{}, err
	}
	return outcome{message: msg, status: ExecutionError}, nil
}

// post records the fill: new balance, trade lot and the audit record.
func (f *fill) post(ctx context.Context, positionID int64, balance decimal.Decimal, side types.LotSide, liquidating bool, transfer types.TransferType, desc string) (outcome, error) {
	if err := f.uow.UpdateBalance(ctx, f.account.ID, balance); err != nil {
		return outcome{}, err
	}
	if _, err := f.uow.CreateTradeLot(ctx, ledger.TradeLot{
		AccountID:   f.account.ID,
		PositionID:  positionID,
		Symbol:      f.order.Symbol,
		Side:        side,
		Quantity:    f.order.Quantity,
		Price:       f.order.Price,
		TradeDate:   f.order.Timestamp,
		Liquidating: liquidating,
	}); err != nil {
		return outcome{}, err
	}

	order := f.order
	return outcome{
		order:   &order,
		message: MsgExecuted,
		status:  ExecutionOk,
		audit: &realtime.ExtendedTransaction{
			TransactionID:        f.order.TransactionID,
			OrderID:              f.order.ID,
			PositionID:           positionID,
			AccountID:            f.account.ID,
			Symbol:               f.order.Symbol,
			Side:                 f.order.Action,
			Quantity:             f.order.Quantity,
			Price:                f.order.Price,
			ExecutedAt:           f.order.Timestamp,
			ServiceUser:          f.serviceUser,
			TransferType:         transfer,
			TransactionType:      "Trade",
			Description:          desc,
			StartingBalance:      f.account.Balance,
			EndingBalance:        balance,
			IsTradingTransaction: true,
			MarketDataSource:     f.quoteSource,
			Origin:               f.order.Origin,
		},
	}, nil
}

func (Buy) apply(ctx context.Context, f *fill) (outcome, error) {
	mv := f.marketValue()
	qty := f.order.Quantity

	pos, err := f.uow.GetPosition(ctx, f.account.ID, f.order.Symbol)
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		pos, err = f.uow.CreatePosition(ctx, ledger.Position{
			AccountID: f.account.ID,
			Symbol:    f.order.Symbol,
			Quantity:  qty,
			Value:     mv,
		})
		if err != nil {
			return outcome{}, err
		}
		return f.post(ctx, pos.ID, f.account.Balance.Sub(mv),
			types.LotBuySide, false, types.TransferDebit, "NEW LONG POS BUY SIDE TRAN")

	case err != nil:
		return outcome{}, err

	case rules.IsLong(pos.Quantity):
		pos.Value = pos.Value.Add(mv)
		pos.Quantity += qty
		if err := f.uow.UpdatePosition(ctx, pos); err != nil {
			return outcome{}, err
		}
		return f.post(ctx, pos.ID, f.account.Balance.Sub(mv),
			types.LotBuySide, false, types.TransferDebit, "EXISTING LONG POS BUY SIDE TRAN")

	case rules.IsShort(pos.Quantity):
		held := -pos.Quantity
		gainOrLoss := pos.Value.Sub(mv)
		balance := f.account.Balance.Add(gainOrLoss)

		if qty == held {
			if err := f.uow.DeletePosition(ctx, pos.ID); err != nil {
				return outcome{}, err
			}
			return f.post(ctx, pos.ID, balance,
				types.LotShortSellSide, true, types.TransferCredit, "LIQ SHORT POS BUY SIDE TRAN")
		}
		if qty > held {
			return f.rejectOrder(ctx, MsgExceedsPosition)
		}

		pos.Value = gainOrLoss
		pos.Quantity += qty
		if err := f.uow.UpdatePosition(ctx, pos); err != nil {
			return outcome{}, err
		}
		return f.post(ctx, pos.ID, balance,
			types.LotBuySide, false, types.TransferCredit, "REDUCE SHARES SHORT POS BUY SIDE TRAN")
	}

	return f.rejectOrder(ctx, MsgInvalidOrderType)
}

func (Sell) apply(ctx context.Context, f *fill) (outcome, error) {
	mv := f.marketValue()
	qty := f.order.Quantity

	pos, err := f.uow.GetPosition(ctx, f.account.ID, f.order.Symbol)
	if errors.Is(err, ledger.ErrNotFound) {
		return f.rejectOrder(ctx, MsgNoPosition+f.order.Symbol)
	}
	if err != nil {
		return outcome{}, err
	}
	if !rules.IsLong(pos.Quantity) {
		return f.rejectOrder(ctx, MsgInvalidOrderType)
	}
	if qty > pos.Quantity {
		return f.rejectOrder(ctx, MsgExceedsPosition)
	}

	lots, err := f.uow.ListTradeLots(ctx, f.account.ID, f.order.Symbol)
	if err != nil {
		return outcome{}, fmt.Errorf("load trade lots: %w", err)
	}
	credit := mv
	if len(lots) > 0 {
		credit = costbasis.FIFO(lots, mv)
	}
	balance := f.account.Balance.Add(credit)

	if rules.IsLiquidating(pos.Quantity, qty) {
		if err := f.uow.DeletePosition(ctx, pos.ID); err != nil {
			return outcome{}, err
		}
		return f.post(ctx, pos.ID, balance,
			types.LotSellSide, true, types.TransferCredit, "LIQ LONG POS SELL SIDE TRAN")
	}

	pos.Value = pos.Value.Sub(mv)
	pos.Quantity -= qty
	if err := f.uow.UpdatePosition(ctx, pos); err != nil {
		return outcome{}, err
	}
	return f.post(ctx, pos.ID, balance,
		types.LotSellSide, false, types.TransferCredit, "REDUCE SHARES LONG POS SELL SIDE TRAN")
}

func (ShortSell) apply(ctx context.Context, f *fill) (outcome, error) {
	mv := f.marketValue()
	qty := f.order.Quantity

	pos, err := f.uow.GetPosition(ctx, f.account.ID, f.order.Symbol)
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		pos, err = f.uow.CreatePosition(ctx, ledger.Position{
			AccountID: f.account.ID,
			Symbol:    f.order.Symbol,
			Quantity:  -qty,
			Value:     mv,
		})
		if err != nil {
			return outcome{}, err
		}
		return f.post(ctx, pos.ID, f.account.Balance.Sub(mv),
			types.LotShortSellSide, false, types.TransferDebit, "NEW SHORT POS SELL SIDE TRAN")

	case err != nil:
		return outcome{}, err

	case rules.IsLong(pos.Quantity):
		return f.rejectOrder(ctx, MsgShortAgainstLong)

	case rules.IsShort(pos.Quantity):
		pos.Value = pos.Value.Add(mv)
		pos.Quantity -= qty
		if err := f.uow.UpdatePosition(ctx, pos); err != nil {
			return outcome{}, err
		}
		return f.post(ctx, pos.ID, f.account.Balance.Sub(mv),
			types.LotShortSellSide, false, types.TransferDebit, "EXISTING SHORT POS SELL SIDE TRAN")
	}

	return f.rejectOrder(ctx, MsgInvalidOrderType)
}

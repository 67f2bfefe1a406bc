package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradeplatform/internal/id"
	"github.com/rustyeddy/tradeplatform/ledger"
	"github.com/rustyeddy/tradeplatform/quote"
	"github.com/rustyeddy/tradeplatform/realtime"
	"github.com/rustyeddy/tradeplatform/rules"
	"github.com/rustyeddy/tradeplatform/types"
)

const defaultTimeout = 10 * time.Second

// Deps are the collaborators an Engine is built from. RealTime may be nil
// unless Posting is DualPosting.
type Deps struct {
	Ledger   ledger.Repository
	RealTime realtime.Store
	Quotes   quote.Source
	Clock    *rules.MarketClock
	Logger   *zap.SugaredLogger
	Posting  Posting

	ServiceUser  string
	Environment  string
	SecurityType string
	// Timeout bounds quote, ledger and store calls for one order.
	Timeout time.Duration
}

// Engine turns trade requests into ledger mutations. It holds no state of
// its own beyond per-account locks.
type Engine struct {
	ledger   ledger.Repository
	realtime realtime.Store
	quotes   quote.Source
	clock    *rules.MarketClock
	log      *zap.SugaredLogger
	posting  Posting

	serviceUser  string
	environment  string
	securityType string
	timeout      time.Duration

	locks *keyedMutex
	newID func() string
}

func New(d Deps) (*Engine, error) {
	if d.Ledger == nil {
		return nil, errors.New("engine: ledger is required")
	}
	if d.Quotes == nil {
		return nil, errors.New("engine: quote source is required")
	}
	if d.Clock == nil {
		return nil, errors.New("engine: market clock is required")
	}
	if d.Posting == nil {
		d.Posting = LegacyPosting{}
	}
	if _, ok := d.Posting.(DualPosting); ok && d.RealTime == nil {
		return nil, errors.New("engine: dual posting requires a real-time store")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop().Sugar()
	}
	if d.Timeout <= 0 {
		d.Timeout = defaultTimeout
	}
	if d.SecurityType == "" {
		d.SecurityType = "Stock"
	}

	return &Engine{
		ledger:       d.Ledger,
		realtime:     d.RealTime,
		quotes:       d.Quotes,
		clock:        d.Clock,
		log:          d.Logger,
		posting:      d.Posting,
		serviceUser:  d.ServiceUser,
		environment:  d.Environment,
		securityType: d.SecurityType,
		timeout:      d.Timeout,
		locks:        newKeyedMutex(),
		newID:        id.NewTransactionID,
	}, nil
}

// Process handles one inbound request and always produces a response.
// Infrastructure errors and panics are logged and reported as MsgFailed.
func (e *Engine) Process(ctx context.Context, req TradeRequest) (resp TradeResponse) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Errorw("panic while processing request",
				"panic", r,
				"account", req.AccountID,
				"symbol", req.Symbol,
				"stack", string(debug.Stack()),
			)
			resp = failure()
		}
	}()

	if req.Drainer != nil {
		return e.Drain(ctx, *req.Drainer)
	}
	return e.processTrade(ctx, req)
}

func (e *Engine) processTrade(ctx context.Context, req TradeRequest) TradeResponse {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Origin == "" {
		req.Origin = types.OriginPseudoMarkets
	}

	d := rules.ValidateOrder(rules.OrderInput{
		Action:   req.Action,
		Type:     req.Type,
		Timing:   req.Timing,
		Quantity: req.Quantity,
	})
	if req.Symbol == "" {
		d.Allowed = false
		d.Violations = append(d.Violations, rules.Violation{Code: "NO_SYMBOL", Msg: "symbol is required"})
	}
	if !req.Origin.Valid() {
		d.Allowed = false
		d.Violations = append(d.Violations, rules.Violation{Code: "UNKNOWN_ORIGIN", Msg: "unrecognised order origin"})
	}
	if !d.Allowed {
		e.log.Infow("order rejected", "account", req.AccountID, "symbol", req.Symbol, "violations", d.Violations)
		return reject(MsgInvalidOrder)
	}
	action, err := ParseAction(req.Action)
	if err != nil {
		// ValidateOrder and ParseAction disagree.
		e.log.Errorw("unhandled order action", "action", req.Action, "error", err)
		return reject(MsgInvalidOrder)
	}

	switch e.posting.(type) {
	case RealTimePosting:
		return reject(MsgRealTimeUnsupported)
	case LegacyPosting, DualPosting:
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	acct, err := e.ledger.GetAccount(ctx, req.AccountID)
	if errors.Is(err, ledger.ErrNotFound) {
		return reject(MsgInvalidAccount)
	}
	if err != nil {
		e.log.Errorw("account lookup failed", "account", req.AccountID, "error", err)
		return failure()
	}

	today := e.clock.Today()
	holiday, err := e.ledger.IsMarketHoliday(ctx, today)
	if err != nil {
		e.log.Errorw("market holiday check failed", "error", err)
		return failure()
	}

	q, err := e.quotes.GetLatestPrice(ctx, req.Symbol)
	if errors.Is(err, quote.ErrUnknownSymbol) {
		e.log.Infow("no quote for symbol", "symbol", req.Symbol)
		return reject(MsgInvalidOrder)
	}
	if err != nil {
		e.log.Errorw("quote lookup failed", "symbol", req.Symbol, "error", err)
		return failure()
	}

	if req.EnforceMarketOpenCheck && !e.clock.IsMarketOpen(holiday) {
		return e.enqueue(ctx, req, today)
	}

	unlock := e.locks.Lock(acct.ID)
	defer unlock()

	// Once the unit of work starts it runs to commit or rollback even if the
	// caller goes away.
	uowCtx, uowCancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer uowCancel()

	res, err := e.execute(uowCtx, req, action, q)
	if err != nil {
		e.log.Errorw("order failed",
			"account", req.AccountID,
			"symbol", req.Symbol,
			"action", req.Action,
			"error", err,
		)
		return failure()
	}

	if res.audit != nil {
		e.postAudit(uowCtx, *res.audit)
	}

	resp := TradeResponse{StatusMessage: res.message, StatusCode: res.status, Order: res.order}
	e.log.Infow("order processed",
		"account", req.AccountID,
		"symbol", req.Symbol,
		"action", req.Action,
		"quantity", req.Quantity,
		"price", q.Price.String(),
		"status", resp.StatusCode.String(),
		"message", resp.StatusMessage,
	)
	return resp
}

func (e *Engine) enqueue(ctx context.Context, req TradeRequest, day time.Time) TradeResponse {
	qo, err := e.ledger.CreateQueuedOrder(ctx, ledger.QueuedOrder{
		AccountID: req.AccountID,
		Symbol:    req.Symbol,
		Action:    req.Action,
		Quantity:  req.Quantity,
		Type:      req.Type,
		Timing:    req.Timing,
		Origin:    req.Origin,
		OrderDate: day,
	})
	if err != nil {
		e.log.Errorw("queue order failed", "account", req.AccountID, "symbol", req.Symbol, "error", err)
		return failure()
	}
	e.log.Infow("market closed, order queued", "queued_order", qo.ID, "account", qo.AccountID, "symbol", qo.Symbol)
	return TradeResponse{StatusMessage: MsgQueued, StatusCode: ExecutionOk}
}

// execute runs the funds check, order creation and position handling in one
// unit of work. A returned error means nothing was written.
func (e *Engine) execute(ctx context.Context, req TradeRequest, action Action, q quote.Quote) (res outcome, err error) {
	uow, err := e.ledger.Begin(ctx)
	if err != nil {
		return outcome{}, err
	}
	defer func() {
		if rbErr := uow.Rollback(); rbErr != nil {
			e.log.Warnw("rollback failed", "error", rbErr)
		}
	}()

	acct, err := uow.LockAccount(ctx, req.AccountID)
	if err != nil {
		return outcome{}, fmt.Errorf("lock account: %w", err)
	}
	if !rules.HasSufficientFunds(acct.Balance, req.Quantity, q.Price) {
		return outcome{message: MsgInsufficientBalance, status: ExecutionError}, nil
	}

	qty := req.Quantity
	if _, ok := action.(ShortSell); ok && qty < 0 {
		qty = -qty
	}

	now := e.clock.Now()
	tx, err := uow.CreateTransaction(ctx, ledger.Transaction{
		ID:          e.newID(),
		AccountID:   acct.ID,
		Origin:      req.Origin,
		Environment: e.environment,
		CreatedAt:   now,
	})
	if err != nil {
		return outcome{}, err
	}

	if _, err := uow.CreateOrder(ctx, ledger.Order{
		AccountID:     acct.ID,
		Symbol:        req.Symbol,
		Action:        action.Kind(),
		Quantity:      qty,
		Price:         q.Price,
		Type:          req.Type,
		Timing:        req.Timing,
		Timestamp:     now,
		TransactionID: tx.ID,
		Environment:   e.environment,
		Origin:        req.Origin,
		SecurityType:  e.securityType,
	}); err != nil {
		return outcome{}, err
	}

	order, err := uow.GetOrderByTransactionID(ctx, tx.ID)
	if err != nil {
		return outcome{}, fmt.Errorf("re-read order: %w", err)
	}

	f := &fill{
		uow:         uow,
		account:     acct,
		order:       order,
		quoteSource: q.Source,
		serviceUser: e.serviceUser,
	}
	res, err = action.apply(ctx, f)
	if err != nil {
		return outcome{}, err
	}

	if err := uow.Commit(); err != nil {
		return outcome{}, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

func (e *Engine) postAudit(ctx context.Context, et realtime.ExtendedTransaction) {
	if e.realtime == nil {
		return
	}
	et.Environment = e.environment
	if err := e.realtime.Upsert(ctx, et); err != nil {
		lvl := e.log.Warnw
		if _, ok := e.posting.(DualPosting); ok {
			lvl = e.log.Errorw
		}
		lvl("extended transaction write failed",
			"transaction", et.TransactionID,
			"posting", e.posting.String(),
			"error", err,
		)
	}
}

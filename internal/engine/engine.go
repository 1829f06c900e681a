package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/trogers1052/pnl-service/internal/metrics"
	"github.com/trogers1052/pnl-service/internal/models"
)

// Validation errors returned by OnTrade. Rejections are non-fatal: the
// engine state is untouched and subsequent trades are served normally.
var (
	ErrInvalidQty   = errors.New("trade qty must be positive")
	ErrInvalidPrice = errors.New("trade price must not be negative")
	ErrInvalidSide  = errors.New("trade side must be BUY or SELL")
)

// Engine maintains per-symbol positions and the realized/unrealized PnL
// split for a single trading account. Positions are created the first
// time a symbol trades and live for the lifetime of the engine.
//
// All mutation goes through OnTrade and OnPrice. Queries return value
// copies, never references into engine state. The internal lock makes
// the engine safe to drive from multiple goroutines.
type Engine struct {
	mu         sync.RWMutex
	accountID  string
	positions  map[string]*models.Position
	realized   map[string]decimal.Decimal
	lastPrices map[string]decimal.Decimal
	tradeCount int64
	log        *zap.SugaredLogger
}

// New creates an empty engine for the given account
func New(accountID string, log *zap.SugaredLogger) *Engine {
	log.Debugw("pnl engine initialized", "account_id", accountID)
	return &Engine{
		accountID:  accountID,
		positions:  make(map[string]*models.Position),
		realized:   make(map[string]decimal.Decimal),
		lastPrices: make(map[string]decimal.Decimal),
		log:        log,
	}
}

// AccountID returns the account this engine tracks
func (e *Engine) AccountID() string {
	return e.accountID
}

// OnTrade applies one executed trade to the position table. Invalid
// trades (non-positive qty, negative price, unknown side) are rejected
// with a warning and leave all state unchanged.
func (e *Engine) OnTrade(trade models.Trade) error {
	if err := validateTrade(trade); err != nil {
		e.log.Warnw("rejecting trade",
			"trade_id", trade.TradeID,
			"symbol", trade.Symbol,
			"side", trade.Side,
			"qty", trade.Qty,
			"price", trade.Price,
			"error", err)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sym := trade.Symbol
	signedQty := trade.SignedQty()

	e.log.Infow("trade received",
		"trade_id", trade.TradeID,
		"symbol", sym,
		"qty", signedQty,
		"price", trade.Price,
		"notional", trade.NotionalValue())

	pos, ok := e.positions[sym]
	if !ok {
		pos = models.NewPosition(e.accountID, sym)
		e.positions[sym] = pos
	}

	prevQty := pos.Qty

	if prevQty.Sign()*signedQty.Sign() >= 0 {
		e.applySameDirection(pos, signedQty, trade.Price)
	} else {
		e.applyOppositeDirection(pos, signedQty, trade.Price)
	}

	// The single authoritative quantity update for both branches.
	pos.Qty = prevQty.Add(signedQty)
	pos.UpdatedAt = time.Now().UTC()
	e.tradeCount++

	if prevQty.IsZero() != pos.Qty.IsZero() {
		if pos.Qty.IsZero() {
			metrics.OpenPositions.Dec()
		} else {
			metrics.OpenPositions.Inc()
		}
	}
	metrics.TradesProcessed.WithLabelValues(sym).Inc()

	e.log.Debugw("position updated",
		"symbol", sym,
		"qty", pos.Qty,
		"avg_cost", pos.AvgCost)
	return nil
}

func validateTrade(trade models.Trade) error {
	if trade.Qty.Sign() <= 0 {
		metrics.TradesRejected.WithLabelValues("invalid_qty").Inc()
		return fmt.Errorf("%w: got %s", ErrInvalidQty, trade.Qty)
	}
	if trade.Price.Sign() < 0 {
		metrics.TradesRejected.WithLabelValues("invalid_price").Inc()
		return fmt.Errorf("%w: got %s", ErrInvalidPrice, trade.Price)
	}
	if !trade.Side.Valid() {
		metrics.TradesRejected.WithLabelValues("invalid_side").Inc()
		return fmt.Errorf("%w: got %q", ErrInvalidSide, trade.Side)
	}
	return nil
}

// applySameDirection accumulates the weighted-average cost. Opening from
// flat lands here too and reduces to the trade's own price.
func (e *Engine) applySameDirection(pos *models.Position, signedQty, price decimal.Decimal) {
	prevQty := pos.Qty
	prevCost := pos.AvgCost
	newQty := prevQty.Add(signedQty)
	if newQty.IsZero() {
		return
	}
	pos.AvgCost = prevQty.Mul(prevCost).Add(signedQty.Mul(price)).Div(newQty)
	e.log.Debugw("avg cost updated", "symbol", pos.Symbol, "avg_cost", pos.AvgCost)
}

// applyOppositeDirection realizes PnL on the closed quantity, then
// settles the cost basis for whatever remains open.
func (e *Engine) applyOppositeDirection(pos *models.Position, signedQty, price decimal.Decimal) {
	prevQty := pos.Qty
	prevCost := pos.AvgCost
	closingQty := decimal.Min(prevQty.Abs(), signedQty.Abs())

	e.realize(pos.Symbol, closingQty, price, prevCost, prevQty)

	newQty := prevQty.Add(signedQty)
	switch {
	case newQty.IsZero():
		pos.AvgCost = decimal.Zero
		e.log.Debugw("position fully closed", "symbol", pos.Symbol)
	case prevQty.Sign() == newQty.Sign():
		e.log.Debugw("partial close", "symbol", pos.Symbol, "avg_cost", prevCost)
	default:
		// Direction flipped: the excess opens fresh at the execution price.
		pos.AvgCost = price
		e.log.Debugw("direction flipped",
			"symbol", pos.Symbol,
			"qty", newQty,
			"avg_cost", price)
	}
}

func (e *Engine) realize(symbol string, closingQty, price, prevCost, prevQty decimal.Decimal) {
	pnl := closingQty.Mul(price.Sub(prevCost))
	if prevQty.Sign() < 0 {
		pnl = pnl.Neg()
	}
	total := e.realized[symbol].Add(pnl)
	e.realized[symbol] = total

	metrics.RealizedPnL.WithLabelValues(symbol).Set(total.InexactFloat64())
	e.log.Infow("realized pnl",
		"symbol", symbol,
		"closed_qty", closingQty,
		"price", price,
		"cost", prevCost,
		"increment", pnl,
		"realized_pnl", total)
}

// OnPrice records the most recent market price for a symbol. Any value
// is accepted and overwrites the previous one; unrealized PnL is
// computed on demand, never eagerly.
func (e *Engine) OnPrice(symbol string, price decimal.Decimal) {
	e.mu.Lock()
	e.lastPrices[symbol] = price
	e.mu.Unlock()

	metrics.PriceUpdates.WithLabelValues(symbol).Inc()
	e.log.Debugw("price updated", "symbol", symbol, "price", price)
}

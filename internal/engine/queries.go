package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trogers1052/pnl-service/internal/models"
)

// GetPosition returns a copy of the stored position, or a fresh
// zero-valued one if the symbol has never traded. Never inserts.
func (e *Engine) GetPosition(symbol string) models.Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.positionLocked(symbol)
}

// GetRealizedPnL returns the accumulated realized PnL for a symbol,
// zero if it has never been reduced or reversed
func (e *Engine) GetRealizedPnL(symbol string) decimal.Decimal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.realizedLocked(symbol)
}

// GetUnrealizedPnL returns qty * (last_price - avg_cost) for the symbol,
// or zero when the position is flat, unknown, or no price has ever been
// observed
func (e *Engine) GetUnrealizedPnL(symbol string) decimal.Decimal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.unrealizedLocked(symbol)
}

// GetTotalPnL sums realized plus unrealized PnL over every symbol that
// has ever had a position
func (e *Engine) GetTotalPnL() decimal.Decimal {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := decimal.Zero
	for sym := range e.positions {
		total = total.Add(e.realizedLocked(sym)).Add(e.unrealizedLocked(sym))
	}
	return total
}

// GetLongPositions returns a snapshot of all positions with positive qty
func (e *Engine) GetLongPositions() map[string]models.Position {
	return e.filterPositions((*models.Position).IsLong)
}

// GetShortPositions returns a snapshot of all positions with negative qty
func (e *Engine) GetShortPositions() map[string]models.Position {
	return e.filterPositions((*models.Position).IsShort)
}

// GetOpenPositions returns a snapshot of all positions with nonzero qty
func (e *Engine) GetOpenPositions() map[string]models.Position {
	return e.filterPositions((*models.Position).IsOpen)
}

// GetPnLBySymbol returns the realized/unrealized/total split for one
// symbol, zeros if it has never traded
func (e *Engine) GetPnLBySymbol(symbol string) models.SymbolPnL {
	e.mu.RLock()
	defer e.mu.RUnlock()

	realized := e.realizedLocked(symbol)
	unrealized := e.unrealizedLocked(symbol)
	return models.SymbolPnL{
		Symbol:     symbol,
		Realized:   realized,
		Unrealized: unrealized,
		Total:      realized.Add(unrealized),
	}
}

// GetTotalNotional values every known position at the caller-supplied
// prices. Symbols missing from the map are valued at zero. The engine's
// own last observed prices are deliberately not used here, so callers
// can mark against a different price source.
func (e *Engine) GetTotalNotional(prices map[string]decimal.Decimal) decimal.Decimal {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := decimal.Zero
	for sym, pos := range e.positions {
		total = total.Add(pos.NotionalValue(prices[sym]))
	}
	return total
}

// GetLastPrice returns the most recent observed price for a symbol and
// whether one has been observed at all
func (e *Engine) GetLastPrice(symbol string) (decimal.Decimal, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	price, ok := e.lastPrices[symbol]
	return price, ok
}

// GetAccountSummary returns an aggregate snapshot across all symbols
func (e *Engine) GetAccountSummary() models.AccountSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	realized := decimal.Zero
	unrealized := decimal.Zero
	open := 0
	for sym, pos := range e.positions {
		realized = realized.Add(e.realizedLocked(sym))
		unrealized = unrealized.Add(e.unrealizedLocked(sym))
		if pos.IsOpen() {
			open++
		}
	}
	return models.AccountSummary{
		AccountID:       e.accountID,
		RealizedPnL:     realized,
		UnrealizedPnL:   unrealized,
		TotalPnL:        realized.Add(unrealized),
		OpenPositions:   open,
		TradesProcessed: e.tradeCount,
		Timestamp:       time.Now().UTC(),
	}
}

// GetSnapshots returns one persistable row per symbol that has ever had
// a position, including flat symbols that still carry realized history
func (e *Engine) GetSnapshots() []models.PnLSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := time.Now().UTC()
	snapshots := make([]models.PnLSnapshot, 0, len(e.positions))
	for sym, pos := range e.positions {
		snapshots = append(snapshots, models.PnLSnapshot{
			AccountID:     e.accountID,
			Symbol:        sym,
			Qty:           pos.Qty,
			AvgCost:       pos.AvgCost,
			LastPrice:     e.lastPrices[sym],
			RealizedPnL:   e.realizedLocked(sym),
			UnrealizedPnL: e.unrealizedLocked(sym),
			CreatedAt:     now,
		})
	}
	return snapshots
}

// LogSummary builds a one-line textual summary, emits it at info level
// and returns it. With an empty symbol the summary covers the whole
// account, otherwise the one symbol.
func (e *Engine) LogSummary(symbol string) string {
	e.mu.RLock()
	var text string
	if symbol != "" {
		pos := e.positionLocked(symbol)
		realized := e.realizedLocked(symbol)
		unrealized := e.unrealizedLocked(symbol)
		text = fmt.Sprintf(
			"PnL summary account=%s symbol=%s: qty=%s avg_cost=%s last_price=%s realized=%s unrealized=%s total=%s",
			e.accountID, symbol, pos.Qty, pos.AvgCost, e.lastPrices[symbol],
			realized, unrealized, realized.Add(unrealized))
	} else {
		realized := decimal.Zero
		unrealized := decimal.Zero
		open := 0
		for sym, pos := range e.positions {
			realized = realized.Add(e.realizedLocked(sym))
			unrealized = unrealized.Add(e.unrealizedLocked(sym))
			if pos.IsOpen() {
				open++
			}
		}
		text = fmt.Sprintf(
			"PnL summary account=%s: realized=%s unrealized=%s total=%s open_positions=%d trades=%d",
			e.accountID, realized, unrealized, realized.Add(unrealized), open, e.tradeCount)
	}
	e.mu.RUnlock()

	e.log.Info(text)
	return text
}

// positionLocked returns a value copy; callers hold at least a read lock
func (e *Engine) positionLocked(symbol string) models.Position {
	if pos, ok := e.positions[symbol]; ok {
		return *pos
	}
	return *models.NewPosition(e.accountID, symbol)
}

func (e *Engine) realizedLocked(symbol string) decimal.Decimal {
	if realized, ok := e.realized[symbol]; ok {
		return realized
	}
	return decimal.Zero
}

func (e *Engine) unrealizedLocked(symbol string) decimal.Decimal {
	pos, ok := e.positions[symbol]
	if !ok || pos.Qty.IsZero() {
		return decimal.Zero
	}
	lastPrice, ok := e.lastPrices[symbol]
	if !ok {
		return decimal.Zero
	}
	return pos.UnrealizedPnL(lastPrice)
}

func (e *Engine) filterPositions(keep func(*models.Position) bool) map[string]models.Position {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]models.Position, len(e.positions))
	for sym, pos := range e.positions {
		if keep(pos) {
			out[sym] = *pos
		}
	}
	return out
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Position represents the account's current holding in one symbol.
// Qty is signed: positive for long, negative for short. AvgCost is the
// weighted-average entry price of the open quantity and is zero whenever
// the position is flat.
type Position struct {
	PositionID uuid.UUID       `json:"position_id"`
	AccountID  string          `json:"account_id"`
	Symbol     string          `json:"symbol"`
	Qty        decimal.Decimal `json:"qty"`
	AvgCost    decimal.Decimal `json:"avg_cost"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewPosition creates a flat position for the given account and symbol
func NewPosition(accountID, symbol string) *Position {
	return &Position{
		PositionID: uuid.New(),
		AccountID:  accountID,
		Symbol:     symbol,
		Qty:        decimal.Zero,
		AvgCost:    decimal.Zero,
		UpdatedAt:  time.Now().UTC(),
	}
}

// IsLong reports whether the position holds positive quantity
func (p *Position) IsLong() bool {
	return p.Qty.IsPositive()
}

// IsShort reports whether the position holds negative quantity
func (p *Position) IsShort() bool {
	return p.Qty.IsNegative()
}

// IsOpen reports whether any quantity is held
func (p *Position) IsOpen() bool {
	return !p.Qty.IsZero()
}

// IsClosed reports whether the position is flat
func (p *Position) IsClosed() bool {
	return p.Qty.IsZero()
}

// NotionalValue returns the signed market value of the position at the
// given price: negative for shorts
func (p *Position) NotionalValue(price decimal.Decimal) decimal.Decimal {
	return p.Qty.Mul(price)
}

// UnrealizedPnL returns the mark-to-market gain or loss of the open
// quantity at the given price. Flat positions carry no unrealized PnL.
func (p *Position) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	if p.Qty.IsZero() {
		return decimal.Zero
	}
	return p.Qty.Mul(price.Sub(p.AvgCost))
}

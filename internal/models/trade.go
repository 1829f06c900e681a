package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side is the direction of a trade execution
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether the side is one of the known directions
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Trade represents a single executed fill against the account
type Trade struct {
	TradeID   uuid.UUID       `json:"trade_id"`
	OrderID   string          `json:"order_id,omitempty"`
	Symbol    string          `json:"symbol"`
	Side      Side            `json:"side"`
	Qty       decimal.Decimal `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewTrade creates a trade with a generated ID and the current timestamp
func NewTrade(symbol string, side Side, qty, price decimal.Decimal) Trade {
	return Trade{
		TradeID:   uuid.New(),
		Symbol:    symbol,
		Side:      side,
		Qty:       qty,
		Price:     price,
		Timestamp: time.Now().UTC(),
	}
}

// SignedQty returns the quantity signed by direction: positive for buys,
// negative for sells
func (t Trade) SignedQty() decimal.Decimal {
	if t.Side == SideSell {
		return t.Qty.Neg()
	}
	return t.Qty
}

// NotionalValue returns the gross cash value of the fill, |qty| * price
func (t Trade) NotionalValue() decimal.Decimal {
	return t.Qty.Abs().Mul(t.Price)
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SymbolPnL is the realized/unrealized split for one symbol
type SymbolPnL struct {
	Symbol     string          `json:"symbol"`
	Realized   decimal.Decimal `json:"realized_pnl"`
	Unrealized decimal.Decimal `json:"unrealized_pnl"`
	Total      decimal.Decimal `json:"total_pnl"`
}

// AccountSummary is an aggregate view of the account at a point in time
type AccountSummary struct {
	AccountID       string          `json:"account_id"`
	RealizedPnL     decimal.Decimal `json:"realized_pnl"`
	UnrealizedPnL   decimal.Decimal `json:"unrealized_pnl"`
	TotalPnL        decimal.Decimal `json:"total_pnl"`
	OpenPositions   int             `json:"open_positions"`
	TradesProcessed int64           `json:"trades_processed"`
	Timestamp       time.Time       `json:"timestamp"`
}

// PnLSnapshot is one persisted per-symbol row written by the snapshot worker
type PnLSnapshot struct {
	AccountID     string          `json:"account_id"`
	Symbol        string          `json:"symbol"`
	Qty           decimal.Decimal `json:"qty"`
	AvgCost       decimal.Decimal `json:"avg_cost"`
	LastPrice     decimal.Decimal `json:"last_price"`
	RealizedPnL   decimal.Decimal `json:"realized_pnl"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	CreatedAt     time.Time       `json:"created_at"`
}

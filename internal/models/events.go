package models

// Event types carried in the event_type envelope field
const (
	EventTradeExecuted = "TRADE_EXECUTED"
	EventPriceTick     = "PRICE_TICK"
	EventPnLUpdated    = "PNL_UPDATED"
)

// TradeEvent represents a Kafka message carrying one executed trade
type TradeEvent struct {
	EventType string         `json:"event_type"`
	Source    string         `json:"source"`
	Timestamp string         `json:"timestamp"`
	Data      TradeEventData `json:"data"`
}

// TradeEventData contains the trade fields. Decimal values travel as
// strings to avoid float rounding on the wire.
type TradeEventData struct {
	TradeID string `json:"trade_id"`
	OrderID string `json:"order_id,omitempty"`
	Symbol  string `json:"symbol"`
	Side    string `json:"side"`
	Qty     string `json:"qty"`
	Price   string `json:"price"`
}

// PriceEvent represents a Kafka message carrying one market price tick
type PriceEvent struct {
	EventType string         `json:"event_type"`
	Source    string         `json:"source"`
	Timestamp string         `json:"timestamp"`
	Data      PriceEventData `json:"data"`
}

// PriceEventData contains the tick fields
type PriceEventData struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// PnLUpdateEvent is published after every applied trade with the
// symbol's refreshed position and PnL state
type PnLUpdateEvent struct {
	EventType string             `json:"event_type"`
	Source    string             `json:"source"`
	Timestamp string             `json:"timestamp"`
	Data      PnLUpdateEventData `json:"data"`
}

// PnLUpdateEventData contains the per-symbol state after a trade
type PnLUpdateEventData struct {
	AccountID     string `json:"account_id"`
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	AvgCost       string `json:"avg_cost"`
	RealizedPnL   string `json:"realized_pnl"`
	UnrealizedPnL string `json:"unrealized_pnl"`
	TotalPnL      string `json:"total_pnl"`
}

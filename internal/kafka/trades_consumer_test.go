package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/pnl-service/internal/models"
	"github.com/trogers1052/pnl-service/pkg/logger"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockTradeProcessor struct {
	mu        sync.Mutex
	trades    []models.Trade
	rejectErr error
}

func (m *mockTradeProcessor) OnTrade(trade models.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rejectErr != nil {
		return m.rejectErr
	}
	m.trades = append(m.trades, trade)
	return nil
}

func (m *mockTradeProcessor) GetPosition(symbol string) models.Position {
	return *models.NewPosition("test-account", symbol)
}

func (m *mockTradeProcessor) GetPnLBySymbol(symbol string) models.SymbolPnL {
	return models.SymbolPnL{Symbol: symbol}
}

func (m *mockTradeProcessor) AccountID() string {
	return "test-account"
}

func (m *mockTradeProcessor) Trades() []models.Trade {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Trade, len(m.trades))
	copy(out, m.trades)
	return out
}

// newTestTradesConsumer builds a consumer without a reader. The Start
// loop needs a real broker, so tests drive processMessage directly.
func newTestTradesConsumer(engine TradeProcessor) *TradesConsumer {
	return &TradesConsumer{
		engine: engine,
		log:    logger.NewNop(),
	}
}

func tradePayload(t *testing.T, event models.TradeEvent) []byte {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return payload
}

// ---------------------------------------------------------------------------
// processMessage
// ---------------------------------------------------------------------------

func TestTradesConsumer_ProcessMessage_AppliesTrade(t *testing.T) {
	engine := &mockTradeProcessor{}
	consumer := newTestTradesConsumer(engine)

	tradeID := uuid.New()
	payload := tradePayload(t, models.TradeEvent{
		EventType: models.EventTradeExecuted,
		Source:    "execution-service",
		Timestamp: "2026-08-21T14:30:00Z",
		Data: models.TradeEventData{
			TradeID: tradeID.String(),
			OrderID: "ord-123",
			Symbol:  "aapl",
			Side:    "buy",
			Qty:     "100",
			Price:   "150.25",
		},
	})

	err := consumer.processMessage(context.Background(), kafkago.Message{Value: payload})
	require.NoError(t, err)

	trades := engine.Trades()
	require.Len(t, trades, 1)

	trade := trades[0]
	assert.Equal(t, tradeID, trade.TradeID)
	assert.Equal(t, "ord-123", trade.OrderID)
	assert.Equal(t, "AAPL", trade.Symbol)
	assert.Equal(t, models.SideBuy, trade.Side)
	assert.True(t, trade.Qty.Equal(decimal.RequireFromString("100")))
	assert.True(t, trade.Price.Equal(decimal.RequireFromString("150.25")))
	assert.Equal(t, 2026, trade.Timestamp.Year())
}

func TestTradesConsumer_ProcessMessage_IgnoresOtherEventTypes(t *testing.T) {
	engine := &mockTradeProcessor{}
	consumer := newTestTradesConsumer(engine)

	payload := tradePayload(t, models.TradeEvent{
		EventType: "ORDER_PLACED",
		Data:      models.TradeEventData{Symbol: "AAPL", Side: "BUY", Qty: "100", Price: "150"},
	})

	err := consumer.processMessage(context.Background(), kafkago.Message{Value: payload})
	require.NoError(t, err)
	assert.Empty(t, engine.Trades())
}

func TestTradesConsumer_ProcessMessage_InvalidJSON(t *testing.T) {
	consumer := newTestTradesConsumer(&mockTradeProcessor{})

	err := consumer.processMessage(context.Background(), kafkago.Message{Value: []byte("not json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestTradesConsumer_ProcessMessage_InvalidQty(t *testing.T) {
	engine := &mockTradeProcessor{}
	consumer := newTestTradesConsumer(engine)

	payload := tradePayload(t, models.TradeEvent{
		EventType: models.EventTradeExecuted,
		Data:      models.TradeEventData{Symbol: "AAPL", Side: "BUY", Qty: "lots", Price: "150"},
	})

	err := consumer.processMessage(context.Background(), kafkago.Message{Value: payload})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid qty")
	assert.Empty(t, engine.Trades())
}

func TestTradesConsumer_ProcessMessage_InvalidPrice(t *testing.T) {
	engine := &mockTradeProcessor{}
	consumer := newTestTradesConsumer(engine)

	payload := tradePayload(t, models.TradeEvent{
		EventType: models.EventTradeExecuted,
		Data:      models.TradeEventData{Symbol: "AAPL", Side: "BUY", Qty: "100", Price: ""},
	})

	err := consumer.processMessage(context.Background(), kafkago.Message{Value: payload})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid price")
	assert.Empty(t, engine.Trades())
}

func TestTradesConsumer_ProcessMessage_RejectedTradeIsHandled(t *testing.T) {
	engine := &mockTradeProcessor{rejectErr: assert.AnError}
	consumer := newTestTradesConsumer(engine)

	payload := tradePayload(t, models.TradeEvent{
		EventType: models.EventTradeExecuted,
		Data:      models.TradeEventData{Symbol: "AAPL", Side: "BUY", Qty: "0", Price: "150"},
	})

	// A rejection is a handled message, not a consumer failure.
	err := consumer.processMessage(context.Background(), kafkago.Message{Value: payload})
	require.NoError(t, err)
	assert.Empty(t, engine.Trades())
}

// ---------------------------------------------------------------------------
// convertTradeData
// ---------------------------------------------------------------------------

func TestConvertTradeData_GeneratesIDWhenUnparseable(t *testing.T) {
	trade, err := convertTradeData(models.TradeEvent{
		EventType: models.EventTradeExecuted,
		Timestamp: "2026-08-21T14:30:00Z",
		Data:      models.TradeEventData{TradeID: "not-a-uuid", Symbol: "AAPL", Side: "SELL", Qty: "50", Price: "160"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, trade.TradeID)
	assert.Equal(t, models.SideSell, trade.Side)
}

func TestConvertTradeData_FallsBackToNowOnBadTimestamp(t *testing.T) {
	trade, err := convertTradeData(models.TradeEvent{
		EventType: models.EventTradeExecuted,
		Timestamp: "yesterday",
		Data:      models.TradeEventData{Symbol: "AAPL", Side: "BUY", Qty: "100", Price: "150"},
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), trade.Timestamp, 5*time.Second)
}

func TestConvertTradeData_NormalizesCase(t *testing.T) {
	trade, err := convertTradeData(models.TradeEvent{
		EventType: models.EventTradeExecuted,
		Data:      models.TradeEventData{Symbol: "msft", Side: "sell", Qty: "10", Price: "300"},
	})
	require.NoError(t, err)
	assert.Equal(t, "MSFT", trade.Symbol)
	assert.Equal(t, models.SideSell, trade.Side)
}

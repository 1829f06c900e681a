package kafka

import (
	"encoding/json"
	"sync"
	"testing"

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

type priceTick struct {
	symbol string
	price  decimal.Decimal
}

type mockPriceProcessor struct {
	mu    sync.Mutex
	ticks []priceTick
}

func (m *mockPriceProcessor) OnPrice(symbol string, price decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks = append(m.ticks, priceTick{symbol: symbol, price: price})
}

func (m *mockPriceProcessor) Ticks() []priceTick {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]priceTick, len(m.ticks))
	copy(out, m.ticks)
	return out
}

func newTestPricesConsumer(engine PriceProcessor) *PricesConsumer {
	return &PricesConsumer{
		engine: engine,
		log:    logger.NewNop(),
	}
}

func pricePayload(t *testing.T, event models.PriceEvent) []byte {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return payload
}

// ---------------------------------------------------------------------------
// processMessage
// ---------------------------------------------------------------------------

func TestPricesConsumer_ProcessMessage_AppliesTick(t *testing.T) {
	engine := &mockPriceProcessor{}
	consumer := newTestPricesConsumer(engine)

	payload := pricePayload(t, models.PriceEvent{
		EventType: models.EventPriceTick,
		Source:    "market-data-service",
		Data:      models.PriceEventData{Symbol: "aapl", Price: "155.50"},
	})

	err := consumer.processMessage(kafkago.Message{Value: payload})
	require.NoError(t, err)

	ticks := engine.Ticks()
	require.Len(t, ticks, 1)
	assert.Equal(t, "AAPL", ticks[0].symbol)
	assert.True(t, ticks[0].price.Equal(decimal.RequireFromString("155.50")))
}

func TestPricesConsumer_ProcessMessage_IgnoresOtherEventTypes(t *testing.T) {
	engine := &mockPriceProcessor{}
	consumer := newTestPricesConsumer(engine)

	payload := pricePayload(t, models.PriceEvent{
		EventType: "QUOTE_REQUESTED",
		Data:      models.PriceEventData{Symbol: "AAPL", Price: "155.50"},
	})

	err := consumer.processMessage(kafkago.Message{Value: payload})
	require.NoError(t, err)
	assert.Empty(t, engine.Ticks())
}

func TestPricesConsumer_ProcessMessage_InvalidJSON(t *testing.T) {
	consumer := newTestPricesConsumer(&mockPriceProcessor{})

	err := consumer.processMessage(kafkago.Message{Value: []byte("{broken")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestPricesConsumer_ProcessMessage_InvalidPrice(t *testing.T) {
	engine := &mockPriceProcessor{}
	consumer := newTestPricesConsumer(engine)

	payload := pricePayload(t, models.PriceEvent{
		EventType: models.EventPriceTick,
		Data:      models.PriceEventData{Symbol: "AAPL", Price: "n/a"},
	})

	err := consumer.processMessage(kafkago.Message{Value: payload})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid price")
	assert.Empty(t, engine.Ticks())
}

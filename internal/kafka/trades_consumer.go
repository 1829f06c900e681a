package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/trogers1052/pnl-service/internal/metrics"
	"github.com/trogers1052/pnl-service/internal/models"
)

// TradeProcessor is the engine surface the trades consumer needs
type TradeProcessor interface {
	OnTrade(trade models.Trade) error
	GetPosition(symbol string) models.Position
	GetPnLBySymbol(symbol string) models.SymbolPnL
	AccountID() string
}

// TradesConsumer consumes trade execution events and applies them to
// the PnL engine
type TradesConsumer struct {
	reader   *kafka.Reader
	engine   TradeProcessor
	producer *Producer
	log      *zap.SugaredLogger
}

// NewTradesConsumer creates a Kafka consumer for trade executions. The
// producer is optional; when present a PnL update is published after
// every applied trade.
func NewTradesConsumer(brokers []string, topic, groupID string, engine TradeProcessor, producer *Producer, log *zap.SugaredLogger) *TradesConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID + "-trades",
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
		MaxWait:  1 * time.Second,
		// Every execution matters for position state, so start from the
		// earliest retained message rather than the tail.
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &TradesConsumer{
		reader:   reader,
		engine:   engine,
		producer: producer,
		log:      log,
	}
}

// Start begins consuming messages from Kafka
func (c *TradesConsumer) Start(ctx context.Context) error {
	c.log.Infow("starting trades consumer", "topic", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			c.log.Info("trades consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.log.Errorw("failed to read trades message", "error", err)
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				metrics.ConsumerErrors.WithLabelValues(c.reader.Config().Topic).Inc()
				c.log.Errorw("failed to process trades message",
					"partition", msg.Partition,
					"offset", msg.Offset,
					"error", err)
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *TradesConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.TradeEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal trade event: %w", err)
	}

	if event.EventType != models.EventTradeExecuted {
		c.log.Debugw("ignoring event type", "event_type", event.EventType)
		return nil
	}

	trade, err := convertTradeData(event)
	if err != nil {
		return fmt.Errorf("failed to convert trade event: %w", err)
	}

	if err := c.engine.OnTrade(trade); err != nil {
		// Rejected by validation: already warned by the engine, and the
		// message is handled as far as the consumer is concerned.
		return nil
	}

	c.publishUpdate(ctx, trade.Symbol)
	return nil
}

// publishUpdate emits the symbol's refreshed PnL state. The trade is
// already applied, so a publish failure must not fail the message.
func (c *TradesConsumer) publishUpdate(ctx context.Context, symbol string) {
	if c.producer == nil {
		return
	}

	pos := c.engine.GetPosition(symbol)
	pnl := c.engine.GetPnLBySymbol(symbol)
	if err := c.producer.PublishPnLUpdate(ctx, c.engine.AccountID(), pos, pnl); err != nil {
		c.log.Warnw("failed to publish pnl update", "symbol", symbol, "error", err)
	}
}

// convertTradeData converts event payload fields into a Trade
func convertTradeData(event models.TradeEvent) (models.Trade, error) {
	data := event.Data

	qty, err := decimal.NewFromString(data.Qty)
	if err != nil {
		return models.Trade{}, fmt.Errorf("invalid qty %q: %w", data.Qty, err)
	}

	price, err := decimal.NewFromString(data.Price)
	if err != nil {
		return models.Trade{}, fmt.Errorf("invalid price %q: %w", data.Price, err)
	}

	tradeID, err := uuid.Parse(data.TradeID)
	if err != nil {
		tradeID = uuid.New()
	}

	timestamp, err := time.Parse(time.RFC3339, event.Timestamp)
	if err != nil {
		timestamp = time.Now().UTC()
	}

	return models.Trade{
		TradeID:   tradeID,
		OrderID:   data.OrderID,
		Symbol:    strings.ToUpper(data.Symbol),
		Side:      models.Side(strings.ToUpper(data.Side)),
		Qty:       qty,
		Price:     price,
		Timestamp: timestamp,
	}, nil
}

// Close closes the Kafka consumer
func (c *TradesConsumer) Close() error {
	return c.reader.Close()
}

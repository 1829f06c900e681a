package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/trogers1052/pnl-service/internal/metrics"
	"github.com/trogers1052/pnl-service/internal/models"
)

// PriceProcessor is the engine surface the prices consumer needs
type PriceProcessor interface {
	OnPrice(symbol string, price decimal.Decimal)
}

// PricesConsumer consumes market price ticks and forwards them to the
// PnL engine
type PricesConsumer struct {
	reader *kafka.Reader
	engine PriceProcessor
	log    *zap.SugaredLogger
}

// NewPricesConsumer creates a Kafka consumer for price ticks
func NewPricesConsumer(brokers []string, topic, groupID string, engine PriceProcessor, log *zap.SugaredLogger) *PricesConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID + "-prices",
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
		MaxWait:  1 * time.Second,
		// Only the most recent mark matters, skip historical ticks.
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
	})

	return &PricesConsumer{
		reader: reader,
		engine: engine,
		log:    log,
	}
}

// Start begins consuming messages from Kafka
func (c *PricesConsumer) Start(ctx context.Context) error {
	c.log.Infow("starting prices consumer", "topic", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			c.log.Info("prices consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.log.Errorw("failed to read prices message", "error", err)
				continue
			}

			if err := c.processMessage(msg); err != nil {
				metrics.ConsumerErrors.WithLabelValues(c.reader.Config().Topic).Inc()
				c.log.Errorw("failed to process prices message",
					"partition", msg.Partition,
					"offset", msg.Offset,
					"error", err)
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *PricesConsumer) processMessage(msg kafka.Message) error {
	var event models.PriceEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal price event: %w", err)
	}

	if event.EventType != models.EventPriceTick {
		c.log.Debugw("ignoring event type", "event_type", event.EventType)
		return nil
	}

	price, err := decimal.NewFromString(event.Data.Price)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", event.Data.Price, err)
	}

	c.engine.OnPrice(strings.ToUpper(event.Data.Symbol), price)
	return nil
}

// Close closes the Kafka consumer
func (c *PricesConsumer) Close() error {
	return c.reader.Close()
}

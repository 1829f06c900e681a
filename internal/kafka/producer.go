package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/trogers1052/pnl-service/internal/models"
)

// Producer publishes PnL update events to Kafka
type Producer struct {
	writer *kafka.Writer
	source string
	log    *zap.SugaredLogger
}

// NewProducer creates a producer for the given PnL topic
func NewProducer(brokers []string, topic, source string, log *zap.SugaredLogger) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &Producer{
		writer: writer,
		source: source,
		log:    log,
	}
}

// PublishPnLUpdate emits the refreshed per-symbol state after an
// applied trade, keyed by symbol so per-symbol ordering is preserved
func (p *Producer) PublishPnLUpdate(ctx context.Context, accountID string, pos models.Position, pnl models.SymbolPnL) error {
	event := models.PnLUpdateEvent{
		EventType: models.EventPnLUpdated,
		Source:    p.source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data: models.PnLUpdateEventData{
			AccountID:     accountID,
			Symbol:        pnl.Symbol,
			Qty:           pos.Qty.String(),
			AvgCost:       pos.AvgCost.String(),
			RealizedPnL:   pnl.Realized.String(),
			UnrealizedPnL: pnl.Unrealized.String(),
			TotalPnL:      pnl.Total.String(),
		},
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal pnl update: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(pnl.Symbol),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to write pnl update: %w", err)
	}

	p.log.Debugw("published pnl update", "symbol", pnl.Symbol, "total_pnl", pnl.Total)
	return nil
}

// Close closes the underlying writer
func (p *Producer) Close() error {
	return p.writer.Close()
}

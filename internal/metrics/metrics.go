package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TradesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pnl_trades_processed_total",
		Help: "Total number of trades applied to the engine",
	}, []string{"symbol"})

	TradesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pnl_trades_rejected_total",
		Help: "Total number of trades rejected by validation",
	}, []string{"reason"})

	PriceUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pnl_price_updates_total",
		Help: "Total number of market price ticks observed",
	}, []string{"symbol"})

	RealizedPnL = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pnl_realized",
		Help: "Accumulated realized PnL per symbol",
	}, []string{"symbol"})

	OpenPositions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pnl_open_positions",
		Help: "Number of currently open positions",
	})

	ConsumerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pnl_consumer_errors_total",
		Help: "Total number of Kafka messages that failed processing",
	}, []string{"topic"})

	SnapshotsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pnl_snapshots_saved_total",
		Help: "Total number of snapshot rows persisted",
	})
)

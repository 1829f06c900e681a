package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/trogers1052/pnl-service/internal/metrics"
	"github.com/trogers1052/pnl-service/internal/models"
)

// SnapshotSource is the engine surface the worker reads
type SnapshotSource interface {
	GetSnapshots() []models.PnLSnapshot
	GetAccountSummary() models.AccountSummary
}

// SnapshotSink persists one batch of snapshot rows
type SnapshotSink interface {
	SaveSnapshots(snapshots []models.PnLSnapshot) error
}

// SummaryCache caches and broadcasts the account summary
type SummaryCache interface {
	CacheAccountSummary(ctx context.Context, summary models.AccountSummary, ttl time.Duration) error
	PublishSummaryUpdate(ctx context.Context, summary models.AccountSummary) error
}

// SnapshotWorker periodically writes engine state to the persistence
// sink and the summary cache. Failures are logged and retried on the
// next tick; the worker never takes the service down.
type SnapshotWorker struct {
	source   SnapshotSource
	sink     SnapshotSink
	cache    SummaryCache
	interval time.Duration
	cacheTTL time.Duration
	log      *zap.SugaredLogger
}

// NewSnapshotWorker creates the worker. Sink and cache may be nil, in
// which case the corresponding write is skipped.
func NewSnapshotWorker(source SnapshotSource, sink SnapshotSink, cache SummaryCache, interval, cacheTTL time.Duration, log *zap.SugaredLogger) *SnapshotWorker {
	return &SnapshotWorker{
		source:   source,
		sink:     sink,
		cache:    cache,
		interval: interval,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Start runs the ticker loop until the context is cancelled
func (w *SnapshotWorker) Start(ctx context.Context) {
	w.log.Infow("starting snapshot worker", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("snapshot worker shutting down")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce performs one snapshot pass
func (w *SnapshotWorker) runOnce(ctx context.Context) {
	if w.sink != nil {
		snapshots := w.source.GetSnapshots()
		if len(snapshots) > 0 {
			if err := w.sink.SaveSnapshots(snapshots); err != nil {
				w.log.Errorw("failed to save snapshots", "error", err)
			} else {
				metrics.SnapshotsSaved.Add(float64(len(snapshots)))
				w.log.Debugw("snapshots saved", "count", len(snapshots))
			}
		}
	}

	if w.cache != nil {
		summary := w.source.GetAccountSummary()
		if err := w.cache.CacheAccountSummary(ctx, summary, w.cacheTTL); err != nil {
			w.log.Warnw("failed to cache account summary", "error", err)
		}
		if err := w.cache.PublishSummaryUpdate(ctx, summary); err != nil {
			w.log.Warnw("failed to publish summary update", "error", err)
		}
	}
}

package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/observability"
	"github.com/spec-kit/incident-service/internal/service"
)

// SweepWorker runs the archival sweeper on a fixed interval until its
// context is cancelled.
type SweepWorker struct {
	sweeper  *service.Sweeper
	metrics  *observability.Metrics
	logger   *zap.Logger
	interval time.Duration
}

// NewSweepWorker constructs the worker.
func NewSweepWorker(sweeper *service.Sweeper, metrics *observability.Metrics, logger *zap.Logger, interval time.Duration) *SweepWorker {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &SweepWorker{sweeper: sweeper, metrics: metrics, logger: logger, interval: interval}
}

// Run blocks, sweeping once immediately and then on every tick. It returns
// when ctx is cancelled.
func (w *SweepWorker) Run(ctx context.Context) {
	w.logger.Info("sweep worker started", zap.Duration("interval", w.interval))

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sweep worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SweepWorker) sweep(ctx context.Context) {
	start := time.Now()
	report, err := w.sweeper.Run(ctx)
	if err != nil {
		w.logger.Error("sweep run aborted", zap.Error(err))
		w.metrics.RecordSweep(nil, true, time.Since(start))
		return
	}
	w.metrics.RecordSweep(report.ByDomain, len(report.Errors) > 0, time.Since(start))
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"orderreport/internal/metrics"
)

type Purger interface {
	Purge(ctx context.Context, olderThan time.Time) (int, error)
}

// Janitor periodically removes reports and stored batches older than the
// retention period.
type Janitor struct {
	log       *slog.Logger
	reports   Purger
	batches   Purger
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

func NewJanitor(log *slog.Logger, reports, batches Purger, retention, interval time.Duration) *Janitor {
	return &Janitor{
		log:       log,
		reports:   reports,
		batches:   batches,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

func (j *Janitor) Start(ctx context.Context) {
	j.log.Info("starting janitor", "interval", j.interval, "retention", j.retention)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info("janitor stopped")
			return
		case <-ticker.C:
			if err := j.sweep(ctx); err != nil {
				j.log.Error("sweep failed", "error", err)
			}
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)

	reports, reportsErr := j.reports.Purge(ctx, cutoff)
	if reportsErr != nil {
		reportsErr = fmt.Errorf("purge reports: %w", reportsErr)
	}
	batches, batchesErr := j.batches.Purge(ctx, cutoff)
	if batchesErr != nil {
		batchesErr = fmt.Errorf("purge batches: %w", batchesErr)
	}

	metrics.BatchesPurged.Add(float64(reports + batches))
	if reports+batches > 0 {
		j.log.Info("sweep done", "reports", reports, "batches", batches)
	}
	return errors.Join(reportsErr, batchesErr)
}

package scheduler

import (
	"context"
	"time"

	"chalkstone_backend/platform/logger"
)

const defaultAnalyticsRefreshInterval = 5 * time.Minute

// AnalyticsWarmer recomputes cached analytics.
type AnalyticsWarmer interface {
	Warm(ctx context.Context) error
}

// AnalyticsRefresh periodically warms the analytics cache so the staff
// dashboard rarely hits the database on a request.
type AnalyticsRefresh struct {
	warmer   AnalyticsWarmer
	log      *logger.Logger
	interval time.Duration
}

func NewAnalyticsRefresh(warmer AnalyticsWarmer, log *logger.Logger, interval time.Duration) *AnalyticsRefresh {
	if interval <= 0 {
		interval = defaultAnalyticsRefreshInterval
	}
	return &AnalyticsRefresh{
		warmer:   warmer,
		log:      log,
		interval: interval,
	}
}

func (r *AnalyticsRefresh) Run(ctx context.Context) {
	if r == nil || r.warmer == nil {
		return
	}

	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *AnalyticsRefresh) refresh(ctx context.Context) {
	start := time.Now()
	if err := r.warmer.Warm(ctx); err != nil {
		r.log.Warn("analytics refresh failed", "error", err)
		return
	}
	r.log.Debug("analytics refreshed", "took", time.Since(start))
}

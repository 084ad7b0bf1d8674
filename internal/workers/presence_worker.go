package workers

import (
	"context"
	"time"

	"carsource_backend/internal/logger"
	"carsource_backend/internal/services"
)

// PresenceWorker periodically prunes presence rows past retention.
type PresenceWorker struct {
	presence services.PresenceService
	interval time.Duration
}

func NewPresenceWorker(presence services.PresenceService, interval time.Duration) *PresenceWorker {
	return &PresenceWorker{
		presence: presence,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled. Start it in its own goroutine.
func (w *PresenceWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("presence worker started", "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			logger.Info("presence worker stopped")
			return
		case <-ticker.C:
			pruned, err := w.presence.PruneStale(ctx)
			if err != nil {
				logger.Error("presence prune failed", "error", err)
				continue
			}
			if pruned > 0 {
				logger.Debug("pruned stale presence rows", "count", pruned)
			}
		}
	}
}

package workers

import (
	"context"
	"time"

	"carsource_backend/internal/logger"
	"carsource_backend/internal/services"
)

// NotificationWorker deletes old read notifications so the table does
// not grow without bound.
type NotificationWorker struct {
	notifications services.NotificationService
	interval      time.Duration
	retention     time.Duration
}

func NewNotificationWorker(notifications services.NotificationService, interval, retention time.Duration) *NotificationWorker {
	return &NotificationWorker{
		notifications: notifications,
		interval:      interval,
		retention:     retention,
	}
}

func (w *NotificationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("notification cleanup worker started", "interval", w.interval, "retention", w.retention)
	for {
		select {
		case <-ctx.Done():
			logger.Info("notification cleanup worker stopped")
			return
		case <-ticker.C:
			deleted, err := w.notifications.CleanOld(time.Now().Add(-w.retention))
			if err != nil {
				logger.Error("notification cleanup failed", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Debug("deleted old notifications", "count", deleted)
			}
		}
	}
}

package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prakida/festival-backend/internal/service"
)

// StatusRefreshWorker periodically pulls provider order status for
// accommodation bookings that are still pending. Accommodation has no
// settlement webhook, so polling is the only reconciliation path.
type StatusRefreshWorker struct {
	accommodationService service.AccommodationService
	interval             time.Duration
	batchSize            int
}

func NewStatusRefreshWorker(accommodationService service.AccommodationService, interval time.Duration, batchSize int) *StatusRefreshWorker {
	return &StatusRefreshWorker{
		accommodationService: accommodationService,
		interval:             interval,
		batchSize:            batchSize,
	}
}

func (w *StatusRefreshWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Status refresh worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Status refresh worker stopped")
			return
		case <-ticker.C:
			w.refreshPendingStatuses(ctx)
		}
	}
}

func (w *StatusRefreshWorker) refreshPendingStatuses(ctx context.Context) {
	updated, err := w.accommodationService.RefreshPending(ctx, w.batchSize)
	if err != nil {
		logrus.Errorf("Failed to refresh pending accommodation statuses: %v", err)
		return
	}

	if updated > 0 {
		logrus.Infof("Refreshed %d pending accommodation bookings", updated)
	}
}

package worker

import (
	"context"
	"time"

	"github.com/safefam/api/internal/service/reminder"
	"github.com/safefam/api/pkg/logger"
)

type ReminderWorker struct {
	svc      *reminder.Service
	interval time.Duration
	logger   *logger.Logger
}

func NewReminderWorker(svc *reminder.Service, interval time.Duration, logger *logger.Logger) *ReminderWorker {
	return &ReminderWorker{svc: svc, interval: interval, logger: logger}
}

// Start scans once immediately, then on every tick until ctx is done.
func (w *ReminderWorker) Start(ctx context.Context) {
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *ReminderWorker) run(ctx context.Context) {
	if _, err := w.svc.Scan(ctx); err != nil {
		w.logger.Error(err, "Reminder scan failed")
	}
}

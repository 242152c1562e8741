package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/safefam/api/internal/repository"
	"github.com/safefam/api/pkg/logger"
	"github.com/safefam/api/pkg/metrics"
)

// OutboxCleanupWorker deletes published outbox rows past the retention
// window, and expired account tokens with them.
type OutboxCleanupWorker struct {
	outbox          repository.OutboxRepository
	tokens          repository.TokenRepository
	retention       time.Duration
	cleanupInterval time.Duration
	logger          *logger.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewOutboxCleanupWorker(
	outbox repository.OutboxRepository,
	tokens repository.TokenRepository,
	retention, cleanupInterval time.Duration,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxCleanupWorker {
	return &OutboxCleanupWorker{
		outbox:          outbox,
		tokens:          tokens,
		retention:       retention,
		cleanupInterval: cleanupInterval,
		logger:          logger,
		metrics:         metrics,
		now:             time.Now,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Cleanup(ctx); err != nil {
				w.logger.Error(err, "Error cleaning up outbox events")
			}
		}
	}
}

func (w *OutboxCleanupWorker) Cleanup(ctx context.Context) error {
	now := w.now()
	cutoff := now.Add(-w.retention)

	rows, err := w.outbox.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		w.metrics.DatabaseOperations.WithLabelValues("cleanup_outbox", "error").Inc()
		return fmt.Errorf("failed to cleanup outbox events: %w", err)
	}
	w.metrics.DatabaseOperations.WithLabelValues("cleanup_outbox", "success").Inc()
	w.metrics.OutboxCleanedUp.Add(float64(rows))

	tokens, err := w.tokens.DeleteExpiredBefore(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to cleanup expired tokens: %w", err)
	}

	w.logger.Info("Cleaned up outbox events", "deleted", rows, "tokens_deleted", tokens, "cutoff", cutoff)
	return nil
}

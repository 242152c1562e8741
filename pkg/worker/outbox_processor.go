package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	"github.com/safefam/api/pkg/logger"
	"github.com/safefam/api/pkg/messaging"
	"github.com/safefam/api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// OutboxProcessor publishes pending outbox events to the broker. Failed
// events are retried with linear backoff and dead-lettered after
// RetryAttempts failures.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		panic("RetryAttempts must be greater than 0")
	}
	if config.RetryDelay <= 0 {
		panic("RetryDelay must be greater than 0")
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down outbox processor")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error(err, "Failed to process events")
			}
		}
	}
}

// ProcessBatch handles one batch of due events and returns how many were
// published.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	published := 0
	err := p.repo.WithPendingEvents(ctx, p.config.BatchSize, func(tx repository.OutboxTx, events []*model.OutboxEvent) error {
		for _, event := range events {
			if err := p.processEvent(ctx, tx, event); err != nil {
				return err
			}
			if event.Status == model.OutboxStatusProcessed {
				published++
			}
		}
		return nil
	})
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("process_outbox", "error").Inc()
		return published, fmt.Errorf("failed to process pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("process_outbox", "success").Inc()
	return published, nil
}

// processEvent publishes one event. Only bookkeeping failures are returned;
// a publish failure is recorded on the row.
func (p *OutboxProcessor) processEvent(ctx context.Context, tx repository.OutboxTx, event *model.OutboxEvent) error {
	pubErr := p.broker.Publish(ctx, messaging.EventsChannel, event.Envelope())
	if pubErr == nil {
		if err := tx.MarkProcessed(ctx, event.ID); err != nil {
			return fmt.Errorf("failed to mark event %s processed: %w", event.ID, err)
		}
		event.Status = model.OutboxStatusProcessed
		p.metrics.OutboxEventsProcessed.Inc()
		return nil
	}

	p.metrics.OutboxEventsFailed.Inc()
	attempt := event.RetryCount + 1
	if attempt >= p.config.RetryAttempts {
		p.logger.Error(pubErr, "Moving event to dead letter queue",
			"event_id", event.ID.String(),
			"event_type", event.EventType,
			"attempts", attempt)
		if err := tx.MoveToDeadLetter(ctx, event, pubErr.Error()); err != nil {
			return fmt.Errorf("failed to dead-letter event %s: %w", event.ID, err)
		}
		event.Status = model.OutboxStatusFailed
		return nil
	}

	p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
	retryAt := p.now().Add(p.config.RetryDelay * time.Duration(attempt))
	p.logger.Warn("Failed to publish event, scheduling retry",
		"event_id", event.ID.String(),
		"event_type", event.EventType,
		"retry_at", retryAt,
		"error", pubErr.Error())
	if err := tx.MarkRetry(ctx, event.ID, pubErr.Error(), retryAt); err != nil {
		return fmt.Errorf("failed to schedule retry for event %s: %w", event.ID, err)
	}
	return nil
}

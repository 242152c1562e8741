package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
)

type outboxRepository struct {
	BaseRepository
}

func NewOutboxRepository(base BaseRepository) repository.OutboxRepository {
	return &outboxRepository{base}
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}

	query := `
		INSERT INTO outbox_events (
			id, event_type, family_id, payload, status, retry_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
	`
	event.ID = uuid.New()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	event.Status = model.OutboxStatusPending

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.FamilyID,
		[]byte(event.Payload),
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepository) WithPendingEvents(ctx context.Context, limit int, fn func(tx repository.OutboxTx, events []*model.OutboxEvent) error) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			SELECT id, event_type, family_id, payload, status, error_message,
				retry_count, retry_at, processed_at, created_at, updated_at
			FROM outbox_events
			WHERE status = 'PENDING'
			AND (retry_at IS NULL OR retry_at <= NOW())
			ORDER BY created_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		`
		var events []*model.OutboxEvent
		if err := tx.SelectContext(ctx, &events, query, limit); err != nil {
			return fmt.Errorf("failed to get pending events: %w", err)
		}
		if len(events) == 0 {
			return nil
		}
		return fn(&outboxTx{tx: tx}, events)
	})
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE status = 'PROCESSED'
		AND processed_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}

	return result.RowsAffected()
}

type outboxTx struct {
	tx *sqlx.Tx
}

func (t *outboxTx) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE outbox_events
		SET status = 'PROCESSED', error_message = NULL, processed_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

func (t *outboxTx) MarkRetry(ctx context.Context, id uuid.UUID, errorMessage string, retryAt time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE outbox_events
		SET error_message = $1, retry_at = $2, retry_count = retry_count + 1, updated_at = NOW()
		WHERE id = $3
	`, errorMessage, retryAt, id)
	if err != nil {
		return fmt.Errorf("failed to schedule event retry: %w", err)
	}
	return nil
}

func (t *outboxTx) MoveToDeadLetter(ctx context.Context, event *model.OutboxEvent, errorMessage string) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO outbox_events_deadletter (
			event_id, event_type, family_id, payload, error_message, retry_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, event.ID, event.EventType, event.FamilyID, []byte(event.Payload), errorMessage, event.RetryCount)
	if err != nil {
		return fmt.Errorf("failed to move event to dead letter: %w", err)
	}

	_, err = t.tx.ExecContext(ctx, `
		UPDATE outbox_events
		SET status = 'FAILED', error_message = $1, updated_at = NOW()
		WHERE id = $2
	`, errorMessage, event.ID)
	if err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	return nil
}

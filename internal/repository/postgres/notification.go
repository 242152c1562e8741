package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

func (r *notificationRepository) CreateIfAbsent(ctx context.Context, n *model.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (
			id, user_id, channel, recipient, subject, body, status,
			reference_type, reference_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (reference_type, reference_id, channel, created_on) DO NOTHING
	`
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	if n.Status == "" {
		n.Status = model.NotificationStatusPending
	}

	result, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.Channel,
		n.Recipient,
		n.Subject,
		n.Body,
		n.Status,
		n.ReferenceType,
		n.ReferenceID,
		n.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *notificationRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET status = 'sent', sent_at = $1, last_error = NULL WHERE id = $2
	`, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return expectRows(result, "notification")
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET status = 'failed', last_error = $1 WHERE id = $2
	`, reason, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}
	return expectRows(result, "notification")
}

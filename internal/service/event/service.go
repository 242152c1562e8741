package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	pkgevent "github.com/safefam/api/pkg/event"
)

// TypeReminderSent is emitted by the reminder worker, outside the HTTP tracker.
const TypeReminderSent pkgevent.EventType = "REMINDER_SENT"

// Service writes events to the outbox. Publication happens later in the
// outbox processor so a broker outage never fails a request.
type Service struct {
	outboxRepo repository.OutboxRepository
}

func NewService(outboxRepo repository.OutboxRepository) *Service {
	return &Service{outboxRepo: outboxRepo}
}

var _ pkgevent.Recorder = (*Service)(nil)

func (s *Service) Record(ctx context.Context, eventType pkgevent.EventType, familyID *uuid.UUID, payload interface{}) error {
	if eventType == "" {
		return fmt.Errorf("event type is required")
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &model.OutboxEvent{
		EventType: string(eventType),
		FamilyID:  familyID,
		Payload:   payloadJSON,
		Status:    model.OutboxStatusPending,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

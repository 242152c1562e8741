package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	FamilyID     *uuid.UUID      `db:"family_id" json:"family_id,omitempty"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// EventEnvelope is what goes out on the broker channel.
type EventEnvelope struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	FamilyID   *uuid.UUID      `json:"family_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (e *OutboxEvent) Envelope() EventEnvelope {
	return EventEnvelope{
		ID:         e.ID,
		Type:       e.EventType,
		FamilyID:   e.FamilyID,
		Payload:    e.Payload,
		OccurredAt: e.CreatedAt,
	}
}

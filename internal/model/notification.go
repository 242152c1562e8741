package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

const NotificationChannelEmail = "email"

type ReminderKind string

const (
	ReminderKindRefill      ReminderKind = "medication_refill"
	ReminderKindAppointment ReminderKind = "appointment"
	ReminderKindVaccination ReminderKind = "vaccination"
)

type Notification struct {
	ID            uuid.UUID          `db:"id" json:"id"`
	UserID        uuid.UUID          `db:"user_id" json:"user_id"`
	Channel       string             `db:"channel" json:"channel"`
	Recipient     string             `db:"recipient" json:"recipient"`
	Subject       string             `db:"subject" json:"subject"`
	Body          string             `db:"body" json:"body"`
	Status        NotificationStatus `db:"status" json:"status"`
	ReferenceType ReminderKind       `db:"reference_type" json:"reference_type"`
	ReferenceID   uuid.UUID          `db:"reference_id" json:"reference_id"`
	LastError     *string            `db:"last_error" json:"last_error,omitempty"`
	SentAt        *time.Time         `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
}

// ReminderCandidate is a row found by a reminder scan, joined with the
// family's primary account so it can be addressed.
type ReminderCandidate struct {
	Kind        ReminderKind `db:"-"`
	ReferenceID uuid.UUID    `db:"reference_id"`
	FamilyID    uuid.UUID    `db:"family_id"`
	UserID      uuid.UUID    `db:"user_id"`
	Email       string       `db:"email"`
	MemberName  string       `db:"member_name"`
	Title       string       `db:"title"`
	DueAt       time.Time    `db:"due_at"`
}

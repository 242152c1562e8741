package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
)

// MemberOrder selects how member listings are sorted.
type MemberOrder int

const (
	// MemberOrderCreated lists members by created_at ascending.
	MemberOrderCreated MemberOrder = iota
	// MemberOrderName lists members by full_name, for pickers.
	MemberOrderName
	// MemberOrderEmergency lists the primary account first, then by name.
	MemberOrderEmergency
)

// All repository interfaces in one file. Every family-scoped lookup takes the
// caller's family id; rows from another family are reported as not found.
type (
	FamilyRepository interface {
		// Onboard creates the family and its primary member atomically.
		Onboard(ctx context.Context, family *model.Family, primary *model.FamilyMember) error
		Get(ctx context.Context, id uuid.UUID) (*model.Family, error)
		Update(ctx context.Context, family *model.Family) error
	}

	MemberRepository interface {
		Create(ctx context.Context, member *model.FamilyMember) error
		Get(ctx context.Context, familyID, id uuid.UUID) (*model.FamilyMember, error)
		GetByProfile(ctx context.Context, profileID uuid.UUID) (*model.FamilyMember, error)
		Update(ctx context.Context, member *model.FamilyMember) error
		Delete(ctx context.Context, familyID, id uuid.UUID) error
		List(ctx context.Context, familyID uuid.UUID, order MemberOrder) ([]*model.FamilyMember, error)
	}

	MedicationRepository interface {
		Create(ctx context.Context, medication *model.Medication) error
		Get(ctx context.Context, familyID, id uuid.UUID) (*model.Medication, error)
		Update(ctx context.Context, medication *model.Medication) error
		Delete(ctx context.Context, familyID, id uuid.UUID) error
		List(ctx context.Context, familyID uuid.UUID, filters *model.MedicationFilters) ([]*model.Medication, error)
	}

	MedicationLogRepository interface {
		Create(ctx context.Context, log *model.MedicationLog) error
		ListByMedication(ctx context.Context, medicationID uuid.UUID, limit int) ([]*model.MedicationLog, error)
		ListBetween(ctx context.Context, medicationID uuid.UUID, from, to time.Time) ([]*model.MedicationLog, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, familyID, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
		Delete(ctx context.Context, familyID, id uuid.UUID) error
		List(ctx context.Context, familyID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ListUpcoming returns scheduled appointments at or after now, soonest first.
		ListUpcoming(ctx context.Context, familyID uuid.UUID, memberID *uuid.UUID, now time.Time, limit int) ([]*model.Appointment, error)
	}

	VaccinationRepository interface {
		Create(ctx context.Context, vaccination *model.Vaccination) error
		Get(ctx context.Context, familyID, id uuid.UUID) (*model.Vaccination, error)
		Update(ctx context.Context, vaccination *model.Vaccination) error
		Delete(ctx context.Context, familyID, id uuid.UUID) error
		// List is ordered by date_administered desc. A limit <= 0 means no limit.
		List(ctx context.Context, familyID uuid.UUID, memberID *uuid.UUID, limit int) ([]*model.Vaccination, error)
	}

	HealthRecordRepository interface {
		Create(ctx context.Context, record *model.HealthRecord) error
		Get(ctx context.Context, familyID, id uuid.UUID) (*model.HealthRecord, error)
		Update(ctx context.Context, record *model.HealthRecord) error
		Delete(ctx context.Context, familyID, id uuid.UUID) error
		List(ctx context.Context, familyID uuid.UUID, filters *model.HealthRecordFilters) ([]*model.HealthRecord, error)
	}

	InsightsRepository interface {
		Counts(ctx context.Context, familyID uuid.UUID, now time.Time) (*model.Insights, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
		UpdateEmailVerified(ctx context.Context, id uuid.UUID, verified bool) error
		UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	TokenRepository interface {
		Store(ctx context.Context, token *model.UserToken) error
		// Consume marks an unexpired, unused token as used and returns its owner.
		Consume(ctx context.Context, token string, tokenType model.TokenType) (uuid.UUID, error)
		// Revoke records a revoked refresh token. It reports false when the
		// token was already revoked.
		Revoke(ctx context.Context, token *model.UserToken) (bool, error)
		DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// WithPendingEvents locks up to limit due events and runs fn in the
		// same transaction. Rows locked by another worker are skipped.
		WithPendingEvents(ctx context.Context, limit int, fn func(tx OutboxTx, events []*model.OutboxEvent) error) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	OutboxTx interface {
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkRetry(ctx context.Context, id uuid.UUID, errorMessage string, retryAt time.Time) error
		MoveToDeadLetter(ctx context.Context, event *model.OutboxEvent, errorMessage string) error
	}

	NotificationRepository interface {
		// CreateIfAbsent inserts the notification unless one already exists
		// for the same reference, channel and day. It reports whether a row
		// was written.
		CreateIfAbsent(ctx context.Context, notification *model.Notification) (bool, error)
		MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
		MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	}

	ReminderRepository interface {
		FindRefillsDue(ctx context.Context, today time.Time) ([]*model.ReminderCandidate, error)
		FindAppointmentsBetween(ctx context.Context, from, to time.Time) ([]*model.ReminderCandidate, error)
		FindVaccinationsDue(ctx context.Context, from, to time.Time) ([]*model.ReminderCandidate, error)
	}
)

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type MedicationLogStatus string

const (
	MedicationLogStatusPending MedicationLogStatus = "pending"
	MedicationLogStatusTaken   MedicationLogStatus = "taken"
	MedicationLogStatusMissed  MedicationLogStatus = "missed"
	MedicationLogStatusSkipped MedicationLogStatus = "skipped"
)

const DefaultRefillReminderDays = 7

type Medication struct {
	Base
	FamilyMemberID     uuid.UUID      `json:"family_member_id" db:"family_member_id"`
	Name               string         `json:"name" db:"name"`
	Dosage             string         `json:"dosage" db:"dosage"`
	Frequency          string         `json:"frequency" db:"frequency"`
	TimeOfDay          pq.StringArray `json:"time_of_day" db:"time_of_day"`
	StartDate          Date           `json:"start_date" db:"start_date"`
	EndDate            *Date          `json:"end_date" db:"end_date"`
	Instructions       *string        `json:"instructions" db:"instructions"`
	PrescribingDoctor  *string        `json:"prescribing_doctor" db:"prescribing_doctor"`
	Pharmacy           *string        `json:"pharmacy" db:"pharmacy"`
	RefillReminderDays int            `json:"refill_reminder_days" db:"refill_reminder_days"`
	ReminderEnabled    bool           `json:"reminder_enabled" db:"reminder_enabled"`
	IsActive           bool           `json:"is_active" db:"is_active"`

	// Populated by family-wide listings.
	MemberName string `json:"member_name,omitempty" db:"member_name"`
}

// MedicationLog records a single dose event. Rows are only ever appended.
type MedicationLog struct {
	ID            uuid.UUID           `json:"id" db:"id"`
	MedicationID  uuid.UUID           `json:"medication_id" db:"medication_id"`
	ScheduledTime DateTime            `json:"scheduled_time" db:"scheduled_time"`
	TakenTime     *DateTime           `json:"taken_time" db:"taken_time"`
	Status        MedicationLogStatus `json:"status" db:"status"`
	Notes         *string             `json:"notes" db:"notes"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
}

// MedicationRequest is the add/edit medication form. TimeOfDay arrives as
// comma-separated text ("Morning, Evening").
type MedicationRequest struct {
	FamilyMemberID     uuid.UUID `json:"family_member_id" binding:"required"`
	Name               string    `json:"name" binding:"required,max=200"`
	Dosage             string    `json:"dosage" binding:"required,max=100"`
	Frequency          string    `json:"frequency" binding:"required,max=100"`
	TimeOfDay          string    `json:"time_of_day"`
	StartDate          string    `json:"start_date" binding:"required,isodate"`
	EndDate            string    `json:"end_date" binding:"omitempty,isodate"`
	Instructions       string    `json:"instructions"`
	PrescribingDoctor  string    `json:"prescribing_doctor"`
	Pharmacy           string    `json:"pharmacy"`
	RefillReminderDays *int      `json:"refill_reminder_days" binding:"omitempty,min=0,max=90"`
	ReminderEnabled    *bool     `json:"reminder_enabled"`
	IsActive           *bool     `json:"is_active"`
}

type LogDoseRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// MedicationList splits strictly on IsActive.
type MedicationList struct {
	Active   []*Medication `json:"active"`
	Inactive []*Medication `json:"inactive"`
}

// DoseSlot is one derived dose of a medication on a given day.
type DoseSlot struct {
	MedicationID uuid.UUID           `json:"medication_id"`
	Label        string              `json:"label"`
	Time         DateTime            `json:"time"`
	Display      string              `json:"display"`
	Status       MedicationLogStatus `json:"status"`
	LogID        *uuid.UUID          `json:"log_id,omitempty"`
}

type MedicationFilters struct {
	FamilyMemberID *uuid.UUID
	ActiveOnly     bool
}

package model

import (
	"github.com/google/uuid"
)

// Dashboard is the family home screen. DemoMode marks the static fallback
// served when the store is slow or unavailable.
type Dashboard struct {
	Family               *Family         `json:"family"`
	Members              []*FamilyMember `json:"members"`
	UpcomingAppointments []*Appointment  `json:"upcoming_appointments"`
	ActiveMedications    []*Medication   `json:"active_medications"`
	DemoMode             bool            `json:"demo_mode"`
}

type Insights struct {
	ActiveMedications    int `json:"active_medications" db:"active_medications"`
	UpcomingAppointments int `json:"upcoming_appointments" db:"upcoming_appointments"`
	Vaccinations         int `json:"vaccinations" db:"vaccinations"`
	HealthRecords        int `json:"health_records" db:"health_records"`

	Members []*MemberSummary `json:"members" db:"-"`
}

// MemberSummary is one row of the family health summary.
type MemberSummary struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Relationship *string   `json:"relationship"`
}

// EmergencyCard is the per-member view shown to first responders.
type EmergencyCard struct {
	MemberID          uuid.UUID `json:"member_id"`
	FullName          string    `json:"full_name"`
	IsPrimaryAccount  bool      `json:"is_primary_account"`
	BloodType         *string   `json:"blood_type"`
	Allergies         []string  `json:"allergies"`
	ChronicConditions []string  `json:"chronic_conditions"`
	EmergencyContact  *string   `json:"emergency_contact"`
	EmergencyPhone    *string   `json:"emergency_phone"`
}

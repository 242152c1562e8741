package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Family is a household grouping of tracked individuals.
type Family struct {
	Base
	Name      string    `json:"name" db:"name"`
	CreatedBy uuid.UUID `json:"created_by" db:"created_by"`
}

// FamilyMember is an individual whose health data is tracked. The member
// with IsPrimaryAccount set is the login account itself.
type FamilyMember struct {
	Base
	FamilyID          uuid.UUID      `json:"family_id" db:"family_id"`
	ProfileID         *uuid.UUID     `json:"profile_id,omitempty" db:"profile_id"`
	FullName          string         `json:"full_name" db:"full_name"`
	Relationship      *string        `json:"relationship" db:"relationship"`
	DateOfBirth       *Date          `json:"date_of_birth" db:"date_of_birth"`
	BloodType         *string        `json:"blood_type" db:"blood_type"`
	Allergies         pq.StringArray `json:"allergies" db:"allergies"`
	ChronicConditions pq.StringArray `json:"chronic_conditions" db:"chronic_conditions"`
	EmergencyContact  *string        `json:"emergency_contact" db:"emergency_contact"`
	EmergencyPhone    *string        `json:"emergency_phone" db:"emergency_phone"`
	IsPrimaryAccount  bool           `json:"is_primary_account" db:"is_primary_account"`
}

// FamilyContext is what the family gate resolves for an authenticated caller.
type FamilyContext struct {
	UserID   uuid.UUID `json:"user_id"`
	FamilyID uuid.UUID `json:"family_id"`
	MemberID uuid.UUID `json:"member_id"`
}

type OnboardingRequest struct {
	FamilyName       string `json:"family_name" binding:"required,max=120"`
	FullName         string `json:"full_name" binding:"required,max=120"`
	DateOfBirth      string `json:"date_of_birth" binding:"omitempty,isodate"`
	BloodType        string `json:"blood_type" binding:"omitempty,bloodtype"`
	EmergencyContact string `json:"emergency_contact"`
	EmergencyPhone   string `json:"emergency_phone"`
}

type UpdateFamilyRequest struct {
	Name string `json:"name" binding:"required,max=120"`
}

// MemberRequest is the add/edit member form. Allergies and chronic
// conditions arrive as comma-separated text.
type MemberRequest struct {
	FullName          string `json:"full_name" binding:"required,max=120"`
	Relationship      string `json:"relationship"`
	DateOfBirth       string `json:"date_of_birth" binding:"omitempty,isodate"`
	BloodType         string `json:"blood_type" binding:"omitempty,bloodtype"`
	Allergies         string `json:"allergies"`
	ChronicConditions string `json:"chronic_conditions"`
	EmergencyContact  string `json:"emergency_contact"`
	EmergencyPhone    string `json:"emergency_phone"`
}

// MemberDetail is the single-member profile page.
type MemberDetail struct {
	Member               *FamilyMember  `json:"member"`
	ActiveMedications    []*Medication  `json:"active_medications"`
	UpcomingAppointments []*Appointment `json:"upcoming_appointments"`
	RecentVaccinations   []*Vaccination `json:"recent_vaccinations"`
}

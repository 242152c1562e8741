package model

import (
	"github.com/google/uuid"
)

type Vaccination struct {
	Base
	FamilyMemberID   uuid.UUID `json:"family_member_id" db:"family_member_id"`
	VaccineName      string    `json:"vaccine_name" db:"vaccine_name"`
	DateAdministered Date      `json:"date_administered" db:"date_administered"`
	NextDoseDate     *Date     `json:"next_dose_date" db:"next_dose_date"`
	AdministeredBy   *string   `json:"administered_by" db:"administered_by"`
	Location         *string   `json:"location" db:"location"`
	BatchNumber      *string   `json:"batch_number" db:"batch_number"`
	Notes            *string   `json:"notes" db:"notes"`

	MemberName  string `json:"member_name,omitempty" db:"member_name"`
	NextDoseDue bool   `json:"next_dose_due" db:"-"`
}

type VaccinationRequest struct {
	FamilyMemberID   uuid.UUID `json:"family_member_id" binding:"required"`
	VaccineName      string    `json:"vaccine_name" binding:"required,max=200"`
	DateAdministered string    `json:"date_administered" binding:"required,isodate"`
	NextDoseDate     string    `json:"next_dose_date" binding:"omitempty,isodate"`
	AdministeredBy   string    `json:"administered_by"`
	Location         string    `json:"location"`
	BatchNumber      string    `json:"batch_number"`
	Notes            string    `json:"notes"`
}

package model

import (
	"github.com/google/uuid"
)

type HealthRecord struct {
	Base
	FamilyMemberID uuid.UUID `json:"family_member_id" db:"family_member_id"`
	RecordType     string    `json:"record_type" db:"record_type"`
	Title          string    `json:"title" db:"title"`
	Description    *string   `json:"description" db:"description"`
	Date           Date      `json:"date" db:"date"`
	DoctorName     *string   `json:"doctor_name" db:"doctor_name"`
	Facility       *string   `json:"facility" db:"facility"`
	FileURL        *string   `json:"file_url" db:"file_url"`

	MemberName string `json:"member_name,omitempty" db:"member_name"`
}

type HealthRecordRequest struct {
	FamilyMemberID uuid.UUID `json:"family_member_id" binding:"required"`
	RecordType     string    `json:"record_type" binding:"required,max=100"`
	Title          string    `json:"title" binding:"required,max=200"`
	Description    string    `json:"description"`
	Date           string    `json:"date" binding:"required,isodate"`
	DoctorName     string    `json:"doctor_name"`
	Facility       string    `json:"facility"`
	FileURL        string    `json:"file_url" binding:"omitempty,url"`
}

// HealthRecordGroup holds the records of one record_type, newest first.
type HealthRecordGroup struct {
	RecordType string          `json:"record_type"`
	Records    []*HealthRecord `json:"records"`
}

type HealthRecordFilters struct {
	FamilyMemberID *uuid.UUID
	RecordType     string
}

// HealthRecordList is the records page: the flat list plus the same rows
// grouped by type.
type HealthRecordList struct {
	Records []*HealthRecord      `json:"records"`
	Groups  []*HealthRecordGroup `json:"groups"`
}

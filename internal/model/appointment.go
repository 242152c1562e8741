package model

import (
	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

const DefaultAppointmentDuration = 30

type Appointment struct {
	Base
	FamilyMemberID  uuid.UUID         `json:"family_member_id" db:"family_member_id"`
	Title           string            `json:"title" db:"title"`
	AppointmentType string            `json:"appointment_type" db:"appointment_type"`
	DoctorName      *string           `json:"doctor_name" db:"doctor_name"`
	Location        *string           `json:"location" db:"location"`
	AppointmentDate DateTime          `json:"appointment_date" db:"appointment_date"`
	DurationMinutes int               `json:"duration_minutes" db:"duration_minutes"`
	Notes           *string           `json:"notes" db:"notes"`
	Status          AppointmentStatus `json:"status" db:"status"`

	MemberName string `json:"member_name,omitempty" db:"member_name"`

	// Display fields, filled by the service on the way out.
	DisplayDate string `json:"display_date,omitempty" db:"-"`
	DisplayTime string `json:"display_time,omitempty" db:"-"`
}

// AppointmentRequest is the add/edit form. The timestamp comes either as
// AppointmentDate or as separate Date and Time inputs.
type AppointmentRequest struct {
	FamilyMemberID  uuid.UUID `json:"family_member_id" binding:"required"`
	Title           string    `json:"title" binding:"required,max=200"`
	AppointmentType string    `json:"appointment_type" binding:"required,max=100"`
	DoctorName      string    `json:"doctor_name"`
	Location        string    `json:"location"`
	AppointmentDate string    `json:"appointment_date"`
	Date            string    `json:"date" binding:"omitempty,isodate"`
	Time            string    `json:"time" binding:"omitempty,clock"`
	DurationMinutes *int      `json:"duration_minutes" binding:"omitempty,min=5,max=1440"`
	Notes           string    `json:"notes"`
	Status          string    `json:"status" binding:"omitempty,apptstatus"`
}

type AppointmentStatusRequest struct {
	Status string `json:"status" binding:"required,apptstatus"`
}

type AppointmentFilters struct {
	FamilyMemberID *uuid.UUID
	Status         string
}

// AppointmentPartition is the render-time upcoming/past split.
type AppointmentPartition struct {
	Upcoming []*Appointment `json:"upcoming"`
	Past     []*Appointment `json:"past"`
}

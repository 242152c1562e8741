package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
)

const appointmentSelect = `
	SELECT a.id, a.family_member_id, a.title, a.appointment_type, a.doctor_name,
		a.location, a.appointment_date, a.duration_minutes, a.notes, a.status,
		a.created_at, a.updated_at, fm.full_name AS member_name
	FROM appointments a
	JOIN family_members fm ON fm.id = a.family_member_id
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, family_member_id, title, appointment_type, doctor_name, location,
			appointment_date, duration_minutes, notes, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.FamilyMemberID,
		appointment.Title,
		appointment.AppointmentType,
		appointment.DoctorName,
		appointment.Location,
		appointment.AppointmentDate,
		appointment.DurationMinutes,
		appointment.Notes,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, familyID, id uuid.UUID) (*model.Appointment, error) {
	query := appointmentSelect + ` WHERE a.id = $1 AND fm.family_id = $2`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id, familyID); err != nil {
		return nil, notFound("appointment", "get appointment", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET family_member_id = $1, title = $2, appointment_type = $3, doctor_name = $4,
			location = $5, appointment_date = $6, duration_minutes = $7, notes = $8,
			status = $9, updated_at = $10
		WHERE id = $11
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.FamilyMemberID,
		appointment.Title,
		appointment.AppointmentType,
		appointment.DoctorName,
		appointment.Location,
		appointment.AppointmentDate,
		appointment.DurationMinutes,
		appointment.Notes,
		appointment.Status,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return expectRows(result, "appointment")
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	return expectRows(result, "appointment")
}

func (r *appointmentRepository) Delete(ctx context.Context, familyID, id uuid.UUID) error {
	query := `
		DELETE FROM appointments a
		USING family_members fm
		WHERE a.id = $1 AND fm.id = a.family_member_id AND fm.family_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, familyID)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return expectRows(result, "appointment")
}

func (r *appointmentRepository) List(ctx context.Context, familyID uuid.UUID, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := appointmentSelect + ` WHERE fm.family_id = $1`
	args := []interface{}{familyID}
	argCount := 2

	if filters != nil {
		if filters.FamilyMemberID != nil {
			query += fmt.Sprintf(" AND a.family_member_id = $%d", argCount)
			args = append(args, *filters.FamilyMemberID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND a.status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
	}

	query += " ORDER BY a.appointment_date ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListUpcoming(ctx context.Context, familyID uuid.UUID, memberID *uuid.UUID, now time.Time, limit int) ([]*model.Appointment, error) {
	query := appointmentSelect + `
		WHERE fm.family_id = $1 AND a.status = 'scheduled' AND a.appointment_date >= $2
	`
	args := []interface{}{familyID, model.NewDateTime(now)}
	argCount := 3

	if memberID != nil {
		query += fmt.Sprintf(" AND a.family_member_id = $%d", argCount)
		args = append(args, *memberID)
		argCount++
	}

	query += " ORDER BY a.appointment_date ASC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, limit)
	}

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list upcoming appointments: %w", err)
	}
	return appointments, nil
}

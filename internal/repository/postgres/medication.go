package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
)

const medicationSelect = `
	SELECT md.id, md.family_member_id, md.name, md.dosage, md.frequency,
		md.time_of_day, md.start_date, md.end_date, md.instructions,
		md.prescribing_doctor, md.pharmacy, md.refill_reminder_days,
		md.reminder_enabled, md.is_active, md.created_at, md.updated_at,
		fm.full_name AS member_name
	FROM medications md
	JOIN family_members fm ON fm.id = md.family_member_id
`

func (r *medicationRepository) Create(ctx context.Context, medication *model.Medication) error {
	query := `
		INSERT INTO medications (
			id, family_member_id, name, dosage, frequency, time_of_day,
			start_date, end_date, instructions, prescribing_doctor, pharmacy,
			refill_reminder_days, reminder_enabled, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	medication.ID = uuid.New()
	medication.CreatedAt = time.Now()
	medication.UpdatedAt = medication.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		medication.ID,
		medication.FamilyMemberID,
		medication.Name,
		medication.Dosage,
		medication.Frequency,
		medication.TimeOfDay,
		medication.StartDate,
		medication.EndDate,
		medication.Instructions,
		medication.PrescribingDoctor,
		medication.Pharmacy,
		medication.RefillReminderDays,
		medication.ReminderEnabled,
		medication.IsActive,
		medication.CreatedAt,
		medication.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}
	return nil
}

func (r *medicationRepository) Get(ctx context.Context, familyID, id uuid.UUID) (*model.Medication, error) {
	query := medicationSelect + ` WHERE md.id = $1 AND fm.family_id = $2`

	var medication model.Medication
	if err := r.db.GetContext(ctx, &medication, query, id, familyID); err != nil {
		return nil, notFound("medication", "get medication", err)
	}
	return &medication, nil
}

func (r *medicationRepository) Update(ctx context.Context, medication *model.Medication) error {
	query := `
		UPDATE medications
		SET family_member_id = $1, name = $2, dosage = $3, frequency = $4,
			time_of_day = $5, start_date = $6, end_date = $7, instructions = $8,
			prescribing_doctor = $9, pharmacy = $10, refill_reminder_days = $11,
			reminder_enabled = $12, is_active = $13, updated_at = $14
		WHERE id = $15
	`
	medication.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		medication.FamilyMemberID,
		medication.Name,
		medication.Dosage,
		medication.Frequency,
		medication.TimeOfDay,
		medication.StartDate,
		medication.EndDate,
		medication.Instructions,
		medication.PrescribingDoctor,
		medication.Pharmacy,
		medication.RefillReminderDays,
		medication.ReminderEnabled,
		medication.IsActive,
		medication.UpdatedAt,
		medication.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medication: %w", err)
	}
	return expectRows(result, "medication")
}

func (r *medicationRepository) Delete(ctx context.Context, familyID, id uuid.UUID) error {
	query := `
		DELETE FROM medications md
		USING family_members fm
		WHERE md.id = $1 AND fm.id = md.family_member_id AND fm.family_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, familyID)
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	return expectRows(result, "medication")
}

func (r *medicationRepository) List(ctx context.Context, familyID uuid.UUID, filters *model.MedicationFilters) ([]*model.Medication, error) {
	query := medicationSelect + ` WHERE fm.family_id = $1`
	args := []interface{}{familyID}
	argCount := 2

	if filters != nil {
		if filters.FamilyMemberID != nil {
			query += fmt.Sprintf(" AND md.family_member_id = $%d", argCount)
			args = append(args, *filters.FamilyMemberID)
			argCount++
		}
		if filters.ActiveOnly {
			query += " AND md.is_active = true"
		}
	}

	query += " ORDER BY md.is_active DESC, md.created_at DESC"

	var medications []*model.Medication
	if err := r.db.SelectContext(ctx, &medications, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return medications, nil
}

func (r *medicationLogRepository) Create(ctx context.Context, log *model.MedicationLog) error {
	query := `
		INSERT INTO medication_logs (
			id, medication_id, scheduled_time, taken_time, status, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	log.ID = uuid.New()
	log.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.MedicationID,
		log.ScheduledTime,
		log.TakenTime,
		log.Status,
		log.Notes,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medication log: %w", err)
	}
	return nil
}

func (r *medicationLogRepository) ListByMedication(ctx context.Context, medicationID uuid.UUID, limit int) ([]*model.MedicationLog, error) {
	query := `
		SELECT id, medication_id, scheduled_time, taken_time, status, notes, created_at
		FROM medication_logs
		WHERE medication_id = $1
		ORDER BY scheduled_time DESC, created_at DESC
	`
	args := []interface{}{medicationID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	var logs []*model.MedicationLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list medication logs: %w", err)
	}
	return logs, nil
}

func (r *medicationLogRepository) ListBetween(ctx context.Context, medicationID uuid.UUID, from, to time.Time) ([]*model.MedicationLog, error) {
	query := `
		SELECT id, medication_id, scheduled_time, taken_time, status, notes, created_at
		FROM medication_logs
		WHERE medication_id = $1 AND scheduled_time >= $2 AND scheduled_time < $3
		ORDER BY scheduled_time ASC
	`
	var logs []*model.MedicationLog
	if err := r.db.SelectContext(ctx, &logs, query, medicationID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list medication logs: %w", err)
	}
	return logs, nil
}

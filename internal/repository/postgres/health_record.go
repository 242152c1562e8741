package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
)

const healthRecordSelect = `
	SELECT hr.id, hr.family_member_id, hr.record_type, hr.title, hr.description,
		hr.date, hr.doctor_name, hr.facility, hr.file_url, hr.created_at,
		hr.updated_at, fm.full_name AS member_name
	FROM health_records hr
	JOIN family_members fm ON fm.id = hr.family_member_id
`

func (r *healthRecordRepository) Create(ctx context.Context, record *model.HealthRecord) error {
	query := `
		INSERT INTO health_records (
			id, family_member_id, record_type, title, description, date,
			doctor_name, facility, file_url, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.FamilyMemberID,
		record.RecordType,
		record.Title,
		record.Description,
		record.Date,
		record.DoctorName,
		record.Facility,
		record.FileURL,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create health record: %w", err)
	}
	return nil
}

func (r *healthRecordRepository) Get(ctx context.Context, familyID, id uuid.UUID) (*model.HealthRecord, error) {
	query := healthRecordSelect + ` WHERE hr.id = $1 AND fm.family_id = $2`

	var record model.HealthRecord
	if err := r.db.GetContext(ctx, &record, query, id, familyID); err != nil {
		return nil, notFound("health record", "get health record", err)
	}
	return &record, nil
}

func (r *healthRecordRepository) Update(ctx context.Context, record *model.HealthRecord) error {
	query := `
		UPDATE health_records
		SET family_member_id = $1, record_type = $2, title = $3, description = $4,
			date = $5, doctor_name = $6, facility = $7, file_url = $8, updated_at = $9
		WHERE id = $10
	`
	record.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		record.FamilyMemberID,
		record.RecordType,
		record.Title,
		record.Description,
		record.Date,
		record.DoctorName,
		record.Facility,
		record.FileURL,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update health record: %w", err)
	}
	return expectRows(result, "health record")
}

func (r *healthRecordRepository) Delete(ctx context.Context, familyID, id uuid.UUID) error {
	query := `
		DELETE FROM health_records hr
		USING family_members fm
		WHERE hr.id = $1 AND fm.id = hr.family_member_id AND fm.family_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, familyID)
	if err != nil {
		return fmt.Errorf("failed to delete health record: %w", err)
	}
	return expectRows(result, "health record")
}

func (r *healthRecordRepository) List(ctx context.Context, familyID uuid.UUID, filters *model.HealthRecordFilters) ([]*model.HealthRecord, error) {
	query := healthRecordSelect + ` WHERE fm.family_id = $1`
	args := []interface{}{familyID}
	argCount := 2

	if filters != nil {
		if filters.FamilyMemberID != nil {
			query += fmt.Sprintf(" AND hr.family_member_id = $%d", argCount)
			args = append(args, *filters.FamilyMemberID)
			argCount++
		}
		if filters.RecordType != "" {
			query += fmt.Sprintf(" AND hr.record_type = $%d", argCount)
			args = append(args, filters.RecordType)
			argCount++
		}
	}

	query += " ORDER BY hr.date DESC, hr.created_at DESC"

	var records []*model.HealthRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list health records: %w", err)
	}
	return records, nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
)

const vaccinationSelect = `
	SELECT v.id, v.family_member_id, v.vaccine_name, v.date_administered,
		v.next_dose_date, v.administered_by, v.location, v.batch_number, v.notes,
		v.created_at, v.updated_at, fm.full_name AS member_name
	FROM vaccinations v
	JOIN family_members fm ON fm.id = v.family_member_id
`

func (r *vaccinationRepository) Create(ctx context.Context, vaccination *model.Vaccination) error {
	query := `
		INSERT INTO vaccinations (
			id, family_member_id, vaccine_name, date_administered, next_dose_date,
			administered_by, location, batch_number, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	vaccination.ID = uuid.New()
	vaccination.CreatedAt = time.Now()
	vaccination.UpdatedAt = vaccination.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		vaccination.ID,
		vaccination.FamilyMemberID,
		vaccination.VaccineName,
		vaccination.DateAdministered,
		vaccination.NextDoseDate,
		vaccination.AdministeredBy,
		vaccination.Location,
		vaccination.BatchNumber,
		vaccination.Notes,
		vaccination.CreatedAt,
		vaccination.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create vaccination: %w", err)
	}
	return nil
}

func (r *vaccinationRepository) Get(ctx context.Context, familyID, id uuid.UUID) (*model.Vaccination, error) {
	query := vaccinationSelect + ` WHERE v.id = $1 AND fm.family_id = $2`

	var vaccination model.Vaccination
	if err := r.db.GetContext(ctx, &vaccination, query, id, familyID); err != nil {
		return nil, notFound("vaccination", "get vaccination", err)
	}
	return &vaccination, nil
}

func (r *vaccinationRepository) Update(ctx context.Context, vaccination *model.Vaccination) error {
	query := `
		UPDATE vaccinations
		SET family_member_id = $1, vaccine_name = $2, date_administered = $3,
			next_dose_date = $4, administered_by = $5, location = $6,
			batch_number = $7, notes = $8, updated_at = $9
		WHERE id = $10
	`
	vaccination.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		vaccination.FamilyMemberID,
		vaccination.VaccineName,
		vaccination.DateAdministered,
		vaccination.NextDoseDate,
		vaccination.AdministeredBy,
		vaccination.Location,
		vaccination.BatchNumber,
		vaccination.Notes,
		vaccination.UpdatedAt,
		vaccination.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vaccination: %w", err)
	}
	return expectRows(result, "vaccination")
}

func (r *vaccinationRepository) Delete(ctx context.Context, familyID, id uuid.UUID) error {
	query := `
		DELETE FROM vaccinations v
		USING family_members fm
		WHERE v.id = $1 AND fm.id = v.family_member_id AND fm.family_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, familyID)
	if err != nil {
		return fmt.Errorf("failed to delete vaccination: %w", err)
	}
	return expectRows(result, "vaccination")
}

func (r *vaccinationRepository) List(ctx context.Context, familyID uuid.UUID, memberID *uuid.UUID, limit int) ([]*model.Vaccination, error) {
	query := vaccinationSelect + ` WHERE fm.family_id = $1`
	args := []interface{}{familyID}
	argCount := 2

	if memberID != nil {
		query += fmt.Sprintf(" AND v.family_member_id = $%d", argCount)
		args = append(args, *memberID)
		argCount++
	}

	query += " ORDER BY v.date_administered DESC, v.created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, limit)
	}

	var vaccinations []*model.Vaccination
	if err := r.db.SelectContext(ctx, &vaccinations, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list vaccinations: %w", err)
	}
	return vaccinations, nil
}

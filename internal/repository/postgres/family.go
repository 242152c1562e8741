package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/safefam/api/internal/model"
	apperrors "github.com/safefam/api/pkg/errors"
)

const memberColumns = `
	id, family_id, profile_id, full_name, relationship, date_of_birth,
	blood_type, allergies, chronic_conditions, emergency_contact,
	emergency_phone, is_primary_account, created_at, updated_at
`

func (r *familyRepository) Onboard(ctx context.Context, family *model.Family, primary *model.FamilyMember) error {
	now := time.Now()
	family.ID = uuid.New()
	family.CreatedAt = now
	family.UpdatedAt = now

	primary.ID = uuid.New()
	primary.FamilyID = family.ID
	primary.IsPrimaryAccount = true
	primary.CreatedAt = now
	primary.UpdatedAt = now

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO families (id, name, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, family.ID, family.Name, family.CreatedBy, family.CreatedAt, family.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create family: %w", err)
		}

		if err := insertMember(ctx, tx, primary); err != nil {
			return fmt.Errorf("failed to create primary member: %w", err)
		}
		return nil
	})

	// idx_family_members_profile: the same user onboarding twice at once.
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperrors.Conflict("family already set up for this account")
	}
	return err
}

func (r *familyRepository) Get(ctx context.Context, id uuid.UUID) (*model.Family, error) {
	query := `
		SELECT id, name, created_by, created_at, updated_at
		FROM families
		WHERE id = $1
	`
	var family model.Family
	if err := r.db.GetContext(ctx, &family, query, id); err != nil {
		return nil, notFound("family", "get family", err)
	}
	return &family, nil
}

func (r *familyRepository) Update(ctx context.Context, family *model.Family) error {
	query := `
		UPDATE families
		SET name = $1, updated_at = $2
		WHERE id = $3
	`
	family.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query, family.Name, family.UpdatedAt, family.ID)
	if err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return expectRows(result, "family")
}

func insertMember(ctx context.Context, db sqlx.ExecerContext, member *model.FamilyMember) error {
	query := `
		INSERT INTO family_members (
			id, family_id, profile_id, full_name, relationship, date_of_birth,
			blood_type, allergies, chronic_conditions, emergency_contact,
			emergency_phone, is_primary_account, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := db.ExecContext(ctx, query,
		member.ID,
		member.FamilyID,
		member.ProfileID,
		member.FullName,
		member.Relationship,
		member.DateOfBirth,
		member.BloodType,
		member.Allergies,
		member.ChronicConditions,
		member.EmergencyContact,
		member.EmergencyPhone,
		member.IsPrimaryAccount,
		member.CreatedAt,
		member.UpdatedAt,
	)
	return err
}

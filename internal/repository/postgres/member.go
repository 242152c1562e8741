package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
)

func (r *memberRepository) Create(ctx context.Context, member *model.FamilyMember) error {
	member.ID = uuid.New()
	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt

	if err := insertMember(ctx, r.db, member); err != nil {
		return fmt.Errorf("failed to create family member: %w", err)
	}
	return nil
}

func (r *memberRepository) Get(ctx context.Context, familyID, id uuid.UUID) (*model.FamilyMember, error) {
	query := `SELECT ` + memberColumns + `
		FROM family_members
		WHERE id = $1 AND family_id = $2
	`
	var member model.FamilyMember
	if err := r.db.GetContext(ctx, &member, query, id, familyID); err != nil {
		return nil, notFound("family member", "get family member", err)
	}
	return &member, nil
}

func (r *memberRepository) GetByProfile(ctx context.Context, profileID uuid.UUID) (*model.FamilyMember, error) {
	query := `SELECT ` + memberColumns + `
		FROM family_members
		WHERE profile_id = $1
		ORDER BY is_primary_account DESC, created_at ASC
		LIMIT 1
	`
	var member model.FamilyMember
	if err := r.db.GetContext(ctx, &member, query, profileID); err != nil {
		return nil, notFound("family member", "get member by profile", err)
	}
	return &member, nil
}

func (r *memberRepository) Update(ctx context.Context, member *model.FamilyMember) error {
	query := `
		UPDATE family_members
		SET full_name = $1, relationship = $2, date_of_birth = $3, blood_type = $4,
			allergies = $5, chronic_conditions = $6, emergency_contact = $7,
			emergency_phone = $8, updated_at = $9
		WHERE id = $10 AND family_id = $11
	`
	member.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		member.FullName,
		member.Relationship,
		member.DateOfBirth,
		member.BloodType,
		member.Allergies,
		member.ChronicConditions,
		member.EmergencyContact,
		member.EmergencyPhone,
		member.UpdatedAt,
		member.ID,
		member.FamilyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update family member: %w", err)
	}
	return expectRows(result, "family member")
}

// Delete removes the member and, through ON DELETE CASCADE, its clinical
// rows. The primary account member is never matched.
func (r *memberRepository) Delete(ctx context.Context, familyID, id uuid.UUID) error {
	query := `
		DELETE FROM family_members
		WHERE id = $1 AND family_id = $2 AND is_primary_account = false
	`
	result, err := r.db.ExecContext(ctx, query, id, familyID)
	if err != nil {
		return fmt.Errorf("failed to delete family member: %w", err)
	}
	return expectRows(result, "family member")
}

func (r *memberRepository) List(ctx context.Context, familyID uuid.UUID, order repository.MemberOrder) ([]*model.FamilyMember, error) {
	orderBy := "created_at ASC"
	switch order {
	case repository.MemberOrderName:
		orderBy = "full_name ASC"
	case repository.MemberOrderEmergency:
		orderBy = "is_primary_account DESC, full_name ASC"
	}

	query := `SELECT ` + memberColumns + `
		FROM family_members
		WHERE family_id = $1
		ORDER BY ` + orderBy

	var members []*model.FamilyMember
	if err := r.db.SelectContext(ctx, &members, query, familyID); err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	return members, nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
)

func (r *insightsRepository) Counts(ctx context.Context, familyID uuid.UUID, now time.Time) (*model.Insights, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM medications md
				JOIN family_members fm ON fm.id = md.family_member_id
				WHERE fm.family_id = $1 AND md.is_active = true) AS active_medications,
			(SELECT COUNT(*) FROM appointments a
				JOIN family_members fm ON fm.id = a.family_member_id
				WHERE fm.family_id = $1 AND a.status = 'scheduled'
				AND a.appointment_date >= $2) AS upcoming_appointments,
			(SELECT COUNT(*) FROM vaccinations v
				JOIN family_members fm ON fm.id = v.family_member_id
				WHERE fm.family_id = $1) AS vaccinations,
			(SELECT COUNT(*) FROM health_records hr
				JOIN family_members fm ON fm.id = hr.family_member_id
				WHERE fm.family_id = $1) AS health_records
	`
	var insights model.Insights
	if err := r.db.GetContext(ctx, &insights, query, familyID, model.NewDateTime(now)); err != nil {
		return nil, fmt.Errorf("failed to count insights: %w", err)
	}
	return &insights, nil
}

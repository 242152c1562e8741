package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/safefam/api/internal/model"
)

// Reminder scans address the family's primary account, which owns the login.
const primaryAccountJoin = `
	JOIN family_members fm ON fm.id = %s.family_member_id
	JOIN family_members pm ON pm.family_id = fm.family_id AND pm.is_primary_account = true
	JOIN users u ON u.id = pm.profile_id
`

func (r *reminderRepository) FindRefillsDue(ctx context.Context, today time.Time) ([]*model.ReminderCandidate, error) {
	query := `
		SELECT md.id AS reference_id, fm.family_id, u.id AS user_id, u.email,
			fm.full_name AS member_name, md.name || ' ' || md.dosage AS title,
			md.end_date::timestamp AS due_at
		FROM medications md` + fmt.Sprintf(primaryAccountJoin, "md") + `
		WHERE md.is_active = true
		AND md.reminder_enabled = true
		AND md.end_date IS NOT NULL
		AND md.end_date >= $1::date
		AND md.end_date <= $1::date + md.refill_reminder_days
		ORDER BY md.end_date ASC
	`
	return r.scan(ctx, model.ReminderKindRefill, query, model.DateOf(today))
}

func (r *reminderRepository) FindAppointmentsBetween(ctx context.Context, from, to time.Time) ([]*model.ReminderCandidate, error) {
	query := `
		SELECT a.id AS reference_id, fm.family_id, u.id AS user_id, u.email,
			fm.full_name AS member_name, a.title, a.appointment_date AS due_at
		FROM appointments a` + fmt.Sprintf(primaryAccountJoin, "a") + `
		WHERE a.status = 'scheduled'
		AND a.appointment_date >= $1
		AND a.appointment_date < $2
		ORDER BY a.appointment_date ASC
	`
	return r.scan(ctx, model.ReminderKindAppointment, query, model.NewDateTime(from), model.NewDateTime(to))
}

func (r *reminderRepository) FindVaccinationsDue(ctx context.Context, from, to time.Time) ([]*model.ReminderCandidate, error) {
	query := `
		SELECT v.id AS reference_id, fm.family_id, u.id AS user_id, u.email,
			fm.full_name AS member_name, v.vaccine_name AS title,
			v.next_dose_date::timestamp AS due_at
		FROM vaccinations v` + fmt.Sprintf(primaryAccountJoin, "v") + `
		WHERE v.next_dose_date IS NOT NULL
		AND v.next_dose_date >= $1::date
		AND v.next_dose_date <= $2::date
		ORDER BY v.next_dose_date ASC
	`
	return r.scan(ctx, model.ReminderKindVaccination, query, model.DateOf(from), model.DateOf(to))
}

func (r *reminderRepository) scan(ctx context.Context, kind model.ReminderKind, query string, args ...interface{}) ([]*model.ReminderCandidate, error) {
	var candidates []*model.ReminderCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find %s reminders: %w", kind, err)
	}
	for _, c := range candidates {
		c.Kind = kind
	}
	return candidates, nil
}

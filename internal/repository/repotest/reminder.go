package repotest

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
	apperrors "github.com/safefam/api/pkg/errors"
	"github.com/safefam/api/pkg/timefmt"
)

type notificationRepo struct{ s *Store }

// CreateIfAbsent dedupes on reference, channel and calendar day, like the
// unique constraint on notifications.
func (r *notificationRepo) CreateIfAbsent(_ context.Context, n *model.Notification) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}

	now := r.s.Now()
	day := model.DateOf(now)
	for _, existing := range r.s.Notifications {
		if existing.ReferenceType == n.ReferenceType &&
			existing.ReferenceID == n.ReferenceID &&
			existing.Channel == n.Channel &&
			model.DateOf(existing.CreatedAt).Equal(day.Time) {
			return false, nil
		}
	}

	n.ID = uuid.New()
	n.CreatedAt = now
	if n.Status == "" {
		n.Status = model.NotificationStatusPending
	}
	c := *n
	r.s.Notifications = append(r.s.Notifications, &c)
	return true, nil
}

func (r *notificationRepo) find(id uuid.UUID) (*model.Notification, error) {
	for _, n := range r.s.Notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, apperrors.NotFound("notification", nil)
}

func (r *notificationRepo) MarkSent(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	n, err := r.find(id)
	if err != nil {
		return err
	}
	n.Status = model.NotificationStatusSent
	n.SentAt = &at
	n.LastError = nil
	return nil
}

func (r *notificationRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	n, err := r.find(id)
	if err != nil {
		return err
	}
	n.Status = model.NotificationStatusFailed
	n.LastError = &reason
	return nil
}

type reminderRepo struct{ s *Store }

// candidate addresses a reminder to the primary account of the member's
// family. ok is false when that account has no login.
func (r *reminderRepo) candidate(kind model.ReminderKind, refID, memberID uuid.UUID, title string, due time.Time) (*model.ReminderCandidate, bool) {
	member, ok := r.s.Members[memberID]
	if !ok {
		return nil, false
	}
	for _, pm := range r.s.Members {
		if pm.FamilyID != member.FamilyID || !pm.IsPrimaryAccount || pm.ProfileID == nil {
			continue
		}
		user, ok := r.s.Users[*pm.ProfileID]
		if !ok {
			return nil, false
		}
		return &model.ReminderCandidate{
			Kind:        kind,
			ReferenceID: refID,
			FamilyID:    member.FamilyID,
			UserID:      user.ID,
			Email:       user.Email,
			MemberName:  member.FullName,
			Title:       title,
			DueAt:       due,
		}, true
	}
	return nil, false
}

func sortByDue(out []*model.ReminderCandidate) []*model.ReminderCandidate {
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out
}

func (r *reminderRepo) FindRefillsDue(_ context.Context, today time.Time) ([]*model.ReminderCandidate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	day := model.DateOf(today).Time
	var out []*model.ReminderCandidate
	for _, med := range r.s.Medications {
		if !med.IsActive || !med.ReminderEnabled || med.EndDate == nil {
			continue
		}
		end := med.EndDate.Time
		if end.Before(day) || end.After(day.AddDate(0, 0, med.RefillReminderDays)) {
			continue
		}
		if c, ok := r.candidate(model.ReminderKindRefill, med.ID, med.FamilyMemberID, med.Name+" "+med.Dosage, end); ok {
			out = append(out, c)
		}
	}
	return sortByDue(out), nil
}

func (r *reminderRepo) FindAppointmentsBetween(_ context.Context, from, to time.Time) ([]*model.ReminderCandidate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	from, to = timefmt.Wall(from), timefmt.Wall(to)
	var out []*model.ReminderCandidate
	for _, a := range r.s.Appointments {
		if a.Status != model.AppointmentStatusScheduled {
			continue
		}
		at := a.AppointmentDate.Time
		if at.Before(from) || !at.Before(to) {
			continue
		}
		if c, ok := r.candidate(model.ReminderKindAppointment, a.ID, a.FamilyMemberID, a.Title, at); ok {
			out = append(out, c)
		}
	}
	return sortByDue(out), nil
}

func (r *reminderRepo) FindVaccinationsDue(_ context.Context, from, to time.Time) ([]*model.ReminderCandidate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}

	start, end := model.DateOf(from).Time, model.DateOf(to).Time
	var out []*model.ReminderCandidate
	for _, v := range r.s.Vaccinations {
		if v.NextDoseDate == nil {
			continue
		}
		due := v.NextDoseDate.Time
		if due.Before(start) || due.After(end) {
			continue
		}
		if c, ok := r.candidate(model.ReminderKindVaccination, v.ID, v.FamilyMemberID, v.VaccineName, due); ok {
			out = append(out, c)
		}
	}
	return sortByDue(out), nil
}

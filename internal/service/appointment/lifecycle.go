package appointment

import (
	"fmt"
	"sort"
	"time"

	"github.com/safefam/api/internal/model"
	apperrors "github.com/safefam/api/pkg/errors"
	"github.com/safefam/api/pkg/timefmt"
)

var transitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentStatusScheduled: {model.AppointmentStatusCompleted, model.AppointmentStatusCancelled},
}

func ValidStatus(s model.AppointmentStatus) bool {
	switch s {
	case model.AppointmentStatusScheduled, model.AppointmentStatusCompleted, model.AppointmentStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an appointment may move from one status to
// another. Completed and cancelled are terminal.
func CanTransition(from, to model.AppointmentStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to model.AppointmentStatus) error {
	if !ValidStatus(to) {
		return apperrors.BadRequest(fmt.Sprintf("invalid appointment status %q", to), nil)
	}
	if !CanTransition(from, to) {
		return apperrors.BadRequest(fmt.Sprintf("invalid status transition from %s to %s", from, to), nil)
	}
	return nil
}

// IsUpcoming: scheduled and not yet started. now is read as wall clock.
func IsUpcoming(a *model.Appointment, now time.Time) bool {
	return a.Status == model.AppointmentStatusScheduled && !a.AppointmentDate.Before(timefmt.Wall(now))
}

// Partition splits appointments into upcoming (soonest first) and past
// (latest first). Nothing is persisted.
func Partition(appointments []*model.Appointment, now time.Time) *model.AppointmentPartition {
	p := &model.AppointmentPartition{
		Upcoming: []*model.Appointment{},
		Past:     []*model.Appointment{},
	}
	for _, a := range appointments {
		if IsUpcoming(a, now) {
			p.Upcoming = append(p.Upcoming, a)
		} else {
			p.Past = append(p.Past, a)
		}
	}

	sort.SliceStable(p.Upcoming, func(i, j int) bool {
		return p.Upcoming[i].AppointmentDate.Before(p.Upcoming[j].AppointmentDate.Time)
	})
	sort.SliceStable(p.Past, func(i, j int) bool {
		return p.Past[i].AppointmentDate.After(p.Past[j].AppointmentDate.Time)
	})
	return p
}

// Decorate fills the human-readable date and clock.
func Decorate(a *model.Appointment) *model.Appointment {
	a.DisplayDate = timefmt.FormatDate(a.AppointmentDate.Time)
	a.DisplayTime = timefmt.FormatClock(a.AppointmentDate.Time)
	return a
}

// resolveDate picks the timestamp from an add/edit form: appointment_date
// wins, otherwise date and time are composed.
func resolveDate(req *model.AppointmentRequest) (time.Time, error) {
	if req.AppointmentDate != "" {
		t, err := timefmt.ParseDateTime(req.AppointmentDate)
		if err != nil {
			return time.Time{}, apperrors.BadRequest(err.Error(), nil)
		}
		return t, nil
	}
	if req.Date == "" || req.Time == "" {
		return time.Time{}, apperrors.BadRequest("appointment date and time are required", nil)
	}

	composed, err := timefmt.ComposeDateTime(req.Date, req.Time)
	if err != nil {
		return time.Time{}, apperrors.BadRequest(err.Error(), nil)
	}
	t, err := timefmt.ParseDateTime(composed)
	if err != nil {
		return time.Time{}, apperrors.BadRequest(err.Error(), nil)
	}
	return t, nil
}

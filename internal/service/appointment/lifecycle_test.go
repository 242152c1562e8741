package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safefam/api/internal/model"
	apperrors "github.com/safefam/api/pkg/errors"
)

func at(day, hour, minute int) model.DateTime {
	return model.DateTime{Time: time.Date(2025, 6, day, hour, minute, 0, 0, time.UTC)}
}

func TestCanTransition(t *testing.T) {
	s, c, x := model.AppointmentStatusScheduled, model.AppointmentStatusCompleted, model.AppointmentStatusCancelled

	assert.True(t, CanTransition(s, c))
	assert.True(t, CanTransition(s, x))
	assert.True(t, CanTransition(c, c))

	assert.False(t, CanTransition(c, s))
	assert.False(t, CanTransition(x, s))
	assert.False(t, CanTransition(c, x))
	assert.False(t, CanTransition(x, c))
}

func TestCheckTransitionMessage(t *testing.T) {
	err := checkTransition(model.AppointmentStatusCompleted, model.AppointmentStatusScheduled)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
	assert.Equal(t, "invalid status transition from completed to scheduled", err.Error())

	err = checkTransition(model.AppointmentStatusScheduled, "postponed")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestIsUpcoming(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsUpcoming(&model.Appointment{Status: model.AppointmentStatusScheduled, AppointmentDate: at(10, 12, 0)}, now))
	assert.True(t, IsUpcoming(&model.Appointment{Status: model.AppointmentStatusScheduled, AppointmentDate: at(11, 9, 0)}, now))
	assert.False(t, IsUpcoming(&model.Appointment{Status: model.AppointmentStatusScheduled, AppointmentDate: at(10, 11, 59)}, now))
	assert.False(t, IsUpcoming(&model.Appointment{Status: model.AppointmentStatusCompleted, AppointmentDate: at(20, 9, 0)}, now))
	assert.False(t, IsUpcoming(&model.Appointment{Status: model.AppointmentStatusCancelled, AppointmentDate: at(20, 9, 0)}, now))
}

func TestPartitionOrdering(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	appts := []*model.Appointment{
		{Title: "later", Status: model.AppointmentStatusScheduled, AppointmentDate: at(20, 9, 0)},
		{Title: "missed", Status: model.AppointmentStatusScheduled, AppointmentDate: at(1, 9, 0)},
		{Title: "soon", Status: model.AppointmentStatusScheduled, AppointmentDate: at(11, 9, 0)},
		{Title: "cancelled", Status: model.AppointmentStatusCancelled, AppointmentDate: at(15, 9, 0)},
		{Title: "done", Status: model.AppointmentStatusCompleted, AppointmentDate: at(5, 9, 0)},
	}

	p := Partition(appts, now)
	titles := func(list []*model.Appointment) []string {
		out := []string{}
		for _, a := range list {
			out = append(out, a.Title)
		}
		return out
	}
	assert.Equal(t, []string{"soon", "later"}, titles(p.Upcoming))
	assert.Equal(t, []string{"cancelled", "done", "missed"}, titles(p.Past))
}

func TestPartitionEmpty(t *testing.T) {
	p := Partition(nil, time.Now())
	assert.NotNil(t, p.Upcoming)
	assert.NotNil(t, p.Past)
}

func TestResolveDate(t *testing.T) {
	got, err := resolveDate(&model.AppointmentRequest{Date: "2025-06-01", Time: "14:30"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC), got)

	got, err = resolveDate(&model.AppointmentRequest{AppointmentDate: "2025-06-01T09:15:00", Date: "2025-07-01", Time: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 9, 15, 0, 0, time.UTC), got)

	_, err = resolveDate(&model.AppointmentRequest{Date: "2025-06-01"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestDecorate(t *testing.T) {
	a := Decorate(&model.Appointment{AppointmentDate: at(1, 14, 30)})
	assert.Equal(t, "June 1, 2025", a.DisplayDate)
	assert.Equal(t, "2:30 PM", a.DisplayTime)
}

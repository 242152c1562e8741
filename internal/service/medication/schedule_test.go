package medication

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safefam/api/internal/model"
)

func activeMed(timeOfDay []string, frequency string) *model.Medication {
	return &model.Medication{
		Base:      model.Base{ID: uuid.New()},
		Name:      "Amoxicillin",
		Frequency: frequency,
		TimeOfDay: timeOfDay,
		StartDate: model.NewDate(2025, 6, 1),
		IsActive:  true,
	}
}

func clocks(slots []*model.DoseSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Time.Format("15:04"))
	}
	return out
}

func TestDosesPerDay(t *testing.T) {
	cases := map[string]int{
		"Once daily":         1,
		"Twice daily":        2,
		"Three times daily":  3,
		"Four times daily":   4,
		"As needed":          0,
		"2 times a day":      2,
		"whenever it hurts":  1,
		"":                   1,
	}
	for in, want := range cases {
		assert.Equal(t, want, DosesPerDay(in), in)
	}
}

func TestBuildScheduleFromTimeOfDay(t *testing.T) {
	med := activeMed([]string{"Evening", "Morning", "07:30", "brunch"}, "Twice daily")
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC)

	slots := BuildSchedule(med, day, nil, now)
	require.Len(t, slots, 3)
	assert.Equal(t, []string{"07:30", "08:00", "18:00"}, clocks(slots))
	assert.Equal(t, "Morning", slots[1].Label)
	assert.Equal(t, "6:00 PM", slots[2].Display)
	for _, s := range slots {
		assert.Equal(t, model.MedicationLogStatusPending, s.Status)
	}
}

func TestBuildScheduleFrequencyFallback(t *testing.T) {
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	now := day

	assert.Equal(t, []string{"08:00"}, clocks(BuildSchedule(activeMed(nil, "Once daily"), day, nil, now)))
	assert.Equal(t, []string{"08:00", "20:00"}, clocks(BuildSchedule(activeMed(nil, "Twice daily"), day, nil, now)))
	assert.Equal(t, []string{"08:00", "14:00", "20:00"}, clocks(BuildSchedule(activeMed(nil, "Three times daily"), day, nil, now)))
	assert.Equal(t, []string{"08:00", "12:00", "16:00", "20:00"}, clocks(BuildSchedule(activeMed(nil, "Four times daily"), day, nil, now)))
	assert.Empty(t, BuildSchedule(activeMed(nil, "As needed"), day, nil, now))

	slots := BuildSchedule(activeMed(nil, "Twice daily"), day, nil, now)
	assert.Equal(t, "Dose 1", slots[0].Label)
	assert.Equal(t, "Dose 2", slots[1].Label)
}

func TestBuildScheduleOutsideActiveRange(t *testing.T) {
	med := activeMed([]string{"Morning"}, "Once daily")
	end := model.NewDate(2025, 6, 5)
	med.EndDate = &end
	now := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)

	assert.Empty(t, BuildSchedule(med, time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), nil, now))
	assert.Empty(t, BuildSchedule(med, time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC), nil, now))
	assert.Len(t, BuildSchedule(med, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), nil, now), 1)

	med.IsActive = false
	assert.Empty(t, BuildSchedule(med, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), nil, now))
}

func TestBuildScheduleMatchesTakenLogs(t *testing.T) {
	med := activeMed([]string{"Morning", "Afternoon", "Evening"}, "")
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	taken := model.NewDateTime(time.Date(2025, 6, 10, 8, 40, 0, 0, time.UTC))
	late := model.NewDateTime(time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC))
	logs := []*model.MedicationLog{
		{ID: uuid.New(), MedicationID: med.ID, ScheduledTime: taken, TakenTime: &taken, Status: model.MedicationLogStatusTaken},
		{ID: uuid.New(), MedicationID: med.ID, ScheduledTime: late, TakenTime: &late, Status: model.MedicationLogStatusTaken},
	}

	slots := BuildSchedule(med, day, logs, now)
	require.Len(t, slots, 3)

	assert.Equal(t, model.MedicationLogStatusTaken, slots[0].Status)
	require.NotNil(t, slots[0].LogID)
	assert.Equal(t, logs[0].ID, *slots[0].LogID)

	// 13:00 has no log within the hour and has passed.
	assert.Equal(t, model.MedicationLogStatusMissed, slots[1].Status)
	assert.Equal(t, model.MedicationLogStatusPending, slots[2].Status)
}

func TestBuildScheduleUsesEachLogOnce(t *testing.T) {
	med := activeMed([]string{"08:00", "08:30"}, "")
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC)

	taken := model.NewDateTime(time.Date(2025, 6, 10, 8, 10, 0, 0, time.UTC))
	logs := []*model.MedicationLog{
		{ID: uuid.New(), ScheduledTime: taken, TakenTime: &taken, Status: model.MedicationLogStatusTaken},
	}

	slots := BuildSchedule(med, day, logs, now)
	require.Len(t, slots, 2)
	assert.Equal(t, model.MedicationLogStatusTaken, slots[0].Status)
	assert.Equal(t, model.MedicationLogStatusMissed, slots[1].Status)
}

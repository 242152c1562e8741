package medication

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository/repotest"
	apperrors "github.com/safefam/api/pkg/errors"
)

func newTestService(store *repotest.Store, now time.Time) *Service {
	svc := NewService(store.MedicationRepo(), store.MedicationLogRepo(), store.MemberRepo())
	svc.now = func() time.Time { return now }
	return svc
}

func medicationRequest(memberID uuid.UUID) *model.MedicationRequest {
	return &model.MedicationRequest{
		FamilyMemberID: memberID,
		Name:           "Lisinopril",
		Dosage:         "10mg",
		Frequency:      "Twice daily",
		TimeOfDay:      "Morning, Evening",
		StartDate:      "2025-06-01",
	}
}

func TestCreateMedicationDefaults(t *testing.T) {
	store := repotest.NewStore()
	_, family, member := store.SeedFamily("Garcia", "Ana Garcia")
	svc := newTestService(store, time.Now())

	med, err := svc.Create(context.Background(), family.ID, medicationRequest(member.ID))
	require.NoError(t, err)

	assert.Equal(t, []string{"Morning", "Evening"}, []string(med.TimeOfDay))
	assert.Equal(t, model.DefaultRefillReminderDays, med.RefillReminderDays)
	assert.True(t, med.IsActive)
	assert.True(t, med.ReminderEnabled)
	assert.Nil(t, med.EndDate)
	assert.Equal(t, "2025-06-01", med.StartDate.String())
}

func TestUpdateMedicationTimeOfDay(t *testing.T) {
	store := repotest.NewStore()
	_, family, member := store.SeedFamily("Garcia", "Ana Garcia")
	svc := newTestService(store, time.Now())
	ctx := context.Background()

	req := medicationRequest(member.ID)
	req.TimeOfDay = "Morning"
	med, err := svc.Create(ctx, family.ID, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Morning"}, []string(med.TimeOfDay))

	req.TimeOfDay = "Morning, Evening"
	_, err = svc.Update(ctx, family.ID, med.ID, req)
	require.NoError(t, err)

	stored, err := svc.Get(ctx, family.ID, med.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Morning", "Evening"}, []string(stored.TimeOfDay))
}

func TestCreateMedicationEmptyTimeOfDay(t *testing.T) {
	store := repotest.NewStore()
	_, family, member := store.SeedFamily("Garcia", "Ana Garcia")
	svc := newTestService(store, time.Now())

	req := medicationRequest(member.ID)
	req.TimeOfDay = ""
	med, err := svc.Create(context.Background(), family.ID, req)
	require.NoError(t, err)
	assert.NotNil(t, med.TimeOfDay)
	assert.Empty(t, med.TimeOfDay)
}

func TestCreateMedicationForeignMember(t *testing.T) {
	store := repotest.NewStore()
	_, family, _ := store.SeedFamily("Garcia", "Ana Garcia")
	_, _, stranger := store.SeedFamily("Smith", "Bob Smith")
	svc := newTestService(store, time.Now())

	_, err := svc.Create(context.Background(), family.ID, medicationRequest(stranger.ID))
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateMedicationRejectsEndBeforeStart(t *testing.T) {
	store := repotest.NewStore()
	_, family, member := store.SeedFamily("Garcia", "Ana Garcia")
	svc := newTestService(store, time.Now())

	req := medicationRequest(member.ID)
	req.EndDate = "2025-05-01"
	_, err := svc.Create(context.Background(), family.ID, req)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))
}

func TestListSplitsOnActiveFlag(t *testing.T) {
	store := repotest.NewStore()
	_, family, member := store.SeedFamily("Garcia", "Ana Garcia")
	svc := newTestService(store, time.Now())
	ctx := context.Background()

	first, err := svc.Create(ctx, family.ID, medicationRequest(member.ID))
	require.NoError(t, err)
	_, err = svc.Create(ctx, family.ID, medicationRequest(member.ID))
	require.NoError(t, err)

	// An expired end date does not deactivate on its own.
	req := medicationRequest(member.ID)
	req.EndDate = "2025-06-02"
	expired, err := svc.Create(ctx, family.ID, req)
	require.NoError(t, err)

	inactive := false
	req = medicationRequest(member.ID)
	req.IsActive = &inactive
	_, err = svc.Update(ctx, family.ID, first.ID, req)
	require.NoError(t, err)

	list := svc.List(ctx, family.ID, nil)
	assert.Len(t, list.Active, 2)
	require.Len(t, list.Inactive, 1)
	assert.Equal(t, first.ID, list.Inactive[0].ID)
	assert.Equal(t, expired.ID, list.Active[0].ID)
	assert.Equal(t, "Ana Garcia", list.Active[0].MemberName)
}

func TestListDegradesToEmpty(t *testing.T) {
	store := repotest.NewStore()
	_, family, _ := store.SeedFamily("Garcia", "Ana Garcia")
	svc := newTestService(store, time.Now())
	store.Err = errors.New("connection refused")

	list := svc.List(context.Background(), family.ID, nil)
	assert.NotNil(t, list.Active)
	assert.NotNil(t, list.Inactive)
	assert.Empty(t, list.Active)
}

func TestLogDoseAppends(t *testing.T) {
	store := repotest.NewStore()
	_, family, member := store.SeedFamily("Garcia", "Ana Garcia")
	now := time.Date(2025, 6, 10, 8, 5, 0, 0, time.UTC)
	svc := newTestService(store, now)
	ctx := context.Background()

	med, err := svc.Create(ctx, family.ID, medicationRequest(member.ID))
	require.NoError(t, err)

	first, err := svc.LogDose(ctx, family.ID, med.ID, "with breakfast")
	require.NoError(t, err)
	_, err = svc.LogDose(ctx, family.ID, med.ID, "")
	require.NoError(t, err)

	assert.Equal(t, model.MedicationLogStatusTaken, first.Status)
	assert.Equal(t, now, first.ScheduledTime.Time)
	require.NotNil(t, first.TakenTime)
	assert.Equal(t, now, first.TakenTime.Time)

	body, err := json.Marshal(first)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"scheduled_time":"2025-06-10T08:05:00"`)
	assert.Contains(t, string(body), `"taken_time":"2025-06-10T08:05:00"`)

	logs, err := svc.ListLogs(ctx, family.ID, med.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, model.MedicationLogStatusTaken, l.Status)
	}
}

func TestLogDoseForeignMedication(t *testing.T) {
	store := repotest.NewStore()
	_, family, member := store.SeedFamily("Garcia", "Ana Garcia")
	_, other, _ := store.SeedFamily("Smith", "Bob Smith")
	svc := newTestService(store, time.Now())

	med, err := svc.Create(context.Background(), family.ID, medicationRequest(member.ID))
	require.NoError(t, err)

	_, err = svc.LogDose(context.Background(), other.ID, med.ID, "")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Empty(t, store.Logs)
}

func TestDailyScheduleReflectsLoggedDose(t *testing.T) {
	store := repotest.NewStore()
	_, family, member := store.SeedFamily("Garcia", "Ana Garcia")
	now := time.Date(2025, 6, 10, 8, 20, 0, 0, time.UTC)
	svc := newTestService(store, now)
	ctx := context.Background()

	med, err := svc.Create(ctx, family.ID, medicationRequest(member.ID))
	require.NoError(t, err)
	_, err = svc.LogDose(ctx, family.ID, med.ID, "")
	require.NoError(t, err)

	slots, err := svc.DailySchedule(ctx, family.ID, med.ID, now)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, model.MedicationLogStatusTaken, slots[0].Status)
	assert.Equal(t, model.MedicationLogStatusPending, slots[1].Status)
}

func TestDeleteMedication(t *testing.T) {
	store := repotest.NewStore()
	_, family, member := store.SeedFamily("Garcia", "Ana Garcia")
	svc := newTestService(store, time.Now())
	ctx := context.Background()

	med, err := svc.Create(ctx, family.ID, medicationRequest(member.ID))
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, family.ID, med.ID)
	require.NoError(t, err)
	assert.Equal(t, med.ID, deleted.ID)

	_, err = svc.Get(ctx, family.ID, med.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

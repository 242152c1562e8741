package reminder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository/repotest"
	eventsvc "github.com/safefam/api/internal/service/event"
	"github.com/safefam/api/pkg/logger"
	"github.com/safefam/api/pkg/metrics"
)

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendVerification(ctx context.Context, email string, token string) error {
	return m.Called(ctx, email, token).Error(0)
}

func (m *MockEmailService) SendPasswordReset(ctx context.Context, email string, token string) error {
	return m.Called(ctx, email, token).Error(0)
}

func (m *MockEmailService) SendWelcome(ctx context.Context, email string, name string) error {
	return m.Called(ctx, email, name).Error(0)
}

func (m *MockEmailService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	return m.Called(ctx, to, subject, content).Error(0)
}

var now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store  *repotest.Store
	mailer *MockEmailService
	svc    *Service
	user   *model.User
	family *model.Family
	member *model.FamilyMember
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	store.Now = func() time.Time { return now }
	user, fam, member := store.SeedFamily("Smith", "John Smith")

	mailer := &MockEmailService{}
	svc := NewService(store.ReminderRepo(), store.NotificationRepo(), mailer,
		eventsvc.NewService(store.OutboxRepo()), metrics.New("test", nil), logger.Nop())
	svc.now = store.Now
	return &fixture{store: store, mailer: mailer, svc: svc, user: user, family: fam, member: member}
}

func (f *fixture) seedDue() {
	end := model.NewDate(2025, 6, 5)
	medID := uuid.New()
	f.store.Medications[medID] = &model.Medication{
		Base:               model.Base{ID: medID},
		FamilyMemberID:     f.member.ID,
		Name:               "Lisinopril",
		Dosage:             "10mg",
		EndDate:            &end,
		RefillReminderDays: 7,
		ReminderEnabled:    true,
		IsActive:           true,
	}

	apptID := uuid.New()
	f.store.Appointments[apptID] = &model.Appointment{
		Base:            model.Base{ID: apptID},
		FamilyMemberID:  f.member.ID,
		Title:           "Check-up",
		AppointmentDate: model.NewDateTime(now.Add(5 * time.Hour)),
		Status:          model.AppointmentStatusScheduled,
	}

	next := model.NewDate(2025, 6, 7)
	vaxID := uuid.New()
	f.store.Vaccinations[vaxID] = &model.Vaccination{
		Base:           model.Base{ID: vaxID},
		FamilyMemberID: f.member.ID,
		VaccineName:    "Tetanus",
		NextDoseDate:   &next,
	}
}

func TestScanSendsEachReminderOncePerDay(t *testing.T) {
	f := setup(t)
	f.seedDue()
	f.mailer.On("SendCustom", mock.Anything, f.user.Email, mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Result{Sent: 3}, result)

	require.Len(t, f.store.Notifications, 3)
	for _, n := range f.store.Notifications {
		assert.Equal(t, model.NotificationStatusSent, n.Status)
		assert.Equal(t, f.user.ID, n.UserID)
		assert.NotNil(t, n.SentAt)
	}

	require.Len(t, f.store.Outbox, 3)
	for _, ev := range f.store.Outbox {
		assert.Equal(t, string(eventsvc.TypeReminderSent), ev.EventType)
		require.NotNil(t, ev.FamilyID)
		assert.Equal(t, f.family.ID, *ev.FamilyID)
	}

	result, err = f.svc.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Result{Skipped: 3}, result)
	f.mailer.AssertNumberOfCalls(t, "SendCustom", 3)
}

func TestScanIgnoresOutOfWindowRows(t *testing.T) {
	f := setup(t)

	far := model.NewDate(2025, 7, 1)
	medID := uuid.New()
	f.store.Medications[medID] = &model.Medication{
		Base: model.Base{ID: medID}, FamilyMemberID: f.member.ID, Name: "Far",
		EndDate: &far, RefillReminderDays: 7, ReminderEnabled: true, IsActive: true,
	}
	apptID := uuid.New()
	f.store.Appointments[apptID] = &model.Appointment{
		Base: model.Base{ID: apptID}, FamilyMemberID: f.member.ID, Title: "Cancelled",
		AppointmentDate: model.NewDateTime(now.Add(time.Hour)),
		Status:          model.AppointmentStatusCancelled,
	}

	result, err := f.svc.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Result{}, result)
	f.mailer.AssertNotCalled(t, "SendCustom", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScanMarksFailedDelivery(t *testing.T) {
	f := setup(t)
	f.seedDue()
	f.mailer.On("SendCustom", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	result, err := f.svc.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Failed)
	for _, n := range f.store.Notifications {
		assert.Equal(t, model.NotificationStatusFailed, n.Status)
		require.NotNil(t, n.LastError)
		assert.Equal(t, "smtp down", *n.LastError)
	}
	assert.Empty(t, f.store.Outbox)
}

func TestScanRepositoryError(t *testing.T) {
	f := setup(t)
	f.store.Err = errors.New("db down")

	_, err := f.svc.Scan(context.Background())
	assert.Error(t, err)
}

func TestCompose(t *testing.T) {
	due := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	subject, body := Compose(&model.ReminderCandidate{
		Kind:       model.ReminderKindAppointment,
		MemberName: "Emily",
		Title:      "Check-up",
		DueAt:      due,
	})
	assert.Equal(t, "Upcoming appointment: Check-up", subject)
	assert.True(t, strings.Contains(body, "June 1, 2025 at 2:30 PM"), body)

	subject, _ = Compose(&model.ReminderCandidate{Kind: model.ReminderKindRefill, Title: "Lisinopril 10mg"})
	assert.Equal(t, "Refill reminder: Lisinopril 10mg", subject)
}

package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safefam/api/internal/email"
	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository/repotest"
	eventsvc "github.com/safefam/api/internal/service/event"
	"github.com/safefam/api/internal/service/reminder"
	"github.com/safefam/api/pkg/logger"
	"github.com/safefam/api/pkg/metrics"
)

func TestOutboxCleanupDeletesOldProcessedRows(t *testing.T) {
	store := repotest.NewStore()
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }

	old := now.Add(-10 * 24 * time.Hour)
	recent := now.Add(-time.Hour)
	store.Outbox = []*model.OutboxEvent{
		{ID: uuid.New(), Status: model.OutboxStatusProcessed, ProcessedAt: &old, Payload: json.RawMessage(`{}`)},
		{ID: uuid.New(), Status: model.OutboxStatusProcessed, ProcessedAt: &recent, Payload: json.RawMessage(`{}`)},
		{ID: uuid.New(), Status: model.OutboxStatusPending, Payload: json.RawMessage(`{}`)},
	}
	store.Tokens = []*model.UserToken{
		{UserID: uuid.New(), Token: "expired", Type: model.TokenTypeRevoked, ExpiresAt: now.Add(-time.Minute)},
		{UserID: uuid.New(), Token: "live", Type: model.TokenTypeRevoked, ExpiresAt: now.Add(time.Hour)},
	}

	w := NewOutboxCleanupWorker(store.OutboxRepo(), store.TokenRepo(), 7*24*time.Hour, time.Hour, logger.Nop(), metrics.New("test", nil))
	w.now = store.Now

	require.NoError(t, w.Cleanup(context.Background()))
	assert.Len(t, store.Outbox, 2)
	require.Len(t, store.Tokens, 1)
	assert.Equal(t, "live", store.Tokens[0].Token)
}

func TestReminderWorkerScansOnStart(t *testing.T) {
	store := repotest.NewStore()
	_, _, member := store.SeedFamily("Smith", "John Smith")
	next := model.DateOf(time.Now().AddDate(0, 0, 2))
	id := uuid.New()
	store.Vaccinations[id] = &model.Vaccination{
		Base:           model.Base{ID: id},
		FamilyMemberID: member.ID,
		VaccineName:    "Tetanus",
		NextDoseDate:   &next,
	}

	svc := reminder.NewService(store.ReminderRepo(), store.NotificationRepo(),
		email.NewService(email.NewLogSender(logger.Nop().ZL), "http://localhost"),
		eventsvc.NewService(store.OutboxRepo()), metrics.New("test", nil), logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewReminderWorker(svc, time.Hour, logger.Nop()).Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		sent := 0
		store.Locked(func() {
			for _, n := range store.Notifications {
				if n.Status == model.NotificationStatusSent {
					sent++
				}
			}
		})
		return sent == 1
	}, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}

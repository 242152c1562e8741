package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository/repotest"
)

func TestRecordWritesPendingEvent(t *testing.T) {
	store := repotest.NewStore()
	svc := NewService(store.OutboxRepo())
	familyID := uuid.New()

	err := svc.Record(context.Background(), TypeReminderSent, &familyID, map[string]string{"kind": "appointment"})
	require.NoError(t, err)

	require.Len(t, store.Outbox, 1)
	ev := store.Outbox[0]
	assert.Equal(t, "REMINDER_SENT", ev.EventType)
	assert.Equal(t, model.OutboxStatusPending, ev.Status)
	require.NotNil(t, ev.FamilyID)
	assert.Equal(t, familyID, *ev.FamilyID)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "appointment", payload["kind"])
}

func TestRecordErrors(t *testing.T) {
	store := repotest.NewStore()
	svc := NewService(store.OutboxRepo())

	assert.Error(t, svc.Record(context.Background(), "", nil, map[string]string{}))
	assert.Error(t, svc.Record(context.Background(), TypeReminderSent, nil, make(chan int)))

	store.Err = errors.New("db down")
	assert.Error(t, svc.Record(context.Background(), TypeReminderSent, nil, map[string]string{}))
	assert.Empty(t, store.Outbox)
}

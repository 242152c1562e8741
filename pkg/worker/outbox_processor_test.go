package worker

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
	"github.com/safefam/api/pkg/logger"
	"github.com/safefam/api/pkg/messaging"
	"github.com/safefam/api/pkg/metrics"
)

type failingBroker struct {
	messaging.Broker
	calls int
}

func (b *failingBroker) Publish(context.Context, string, interface{}) error {
	b.calls++
	return errors.New("connection refused")
}

func newProcessor(store *repotest.Store, broker messaging.Broker) *OutboxProcessor {
	p := NewOutboxProcessor(store.OutboxRepo(), broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Minute,
	}, logger.Nop(), metrics.New("test", nil))
	p.now = store.Now
	return p
}

func seedEvent(t *testing.T, store *repotest.Store, familyID *uuid.UUID) {
	t.Helper()
	err := store.OutboxRepo().Create(context.Background(), &model.OutboxEvent{
		EventType: "MEDICATION_CREATE",
		FamilyID:  familyID,
		Payload:   json.RawMessage(`{"name":"Aspirin"}`),
	})
	require.NoError(t, err)
}

func TestProcessBatchPublishesEnvelope(t *testing.T) {
	store := repotest.NewStore()
	broker := messaging.NewMemoryBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := broker.Subscribe(ctx, messaging.EventsChannel)
	require.NoError(t, err)

	familyID := uuid.New()
	seedEvent(t, store, &familyID)

	n, err := newProcessor(store, broker).ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	select {
	case msg := <-sub:
		var env model.EventEnvelope
		require.NoError(t, json.Unmarshal(msg, &env))
		assert.Equal(t, "MEDICATION_CREATE", env.Type)
		require.NotNil(t, env.FamilyID)
		assert.Equal(t, familyID, *env.FamilyID)
		assert.JSONEq(t, `{"name":"Aspirin"}`, string(env.Payload))
	case <-time.After(time.Second):
		t.Fatal("no message published")
	}

	assert.Equal(t, model.OutboxStatusProcessed, store.Outbox[0].Status)
	assert.NotNil(t, store.Outbox[0].ProcessedAt)

	n, err = newProcessor(store, broker).ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProcessBatchRetriesThenDeadLetters(t *testing.T) {
	store := repotest.NewStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	broker := &failingBroker{}
	p := newProcessor(store, broker)

	seedEvent(t, store, nil)

	_, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	ev := store.Outbox[0]
	assert.Equal(t, model.OutboxStatusPending, ev.Status)
	assert.Equal(t, 1, ev.RetryCount)
	require.NotNil(t, ev.RetryAt)
	assert.Equal(t, now.Add(time.Minute), *ev.RetryAt)

	// Not yet due.
	_, err = p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, broker.calls)

	now = now.Add(time.Minute)
	_, err = p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ev.RetryCount)
	assert.Equal(t, now.Add(2*time.Minute), *ev.RetryAt)

	now = now.Add(2 * time.Minute)
	_, err = p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, broker.calls)
	assert.Equal(t, model.OutboxStatusFailed, ev.Status)
	require.Len(t, store.DeadLetters, 1)
	assert.Equal(t, "connection refused", *store.DeadLetters[0].ErrorMessage)
}

func TestProcessBatchRepositoryError(t *testing.T) {
	store := repotest.NewStore()
	store.Err = errors.New("db down")

	_, err := newProcessor(store, messaging.NewMemoryBroker()).ProcessBatch(context.Background())
	assert.Error(t, err)
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	assert.Panics(t, func() {
		NewOutboxProcessor(nil, nil, OutboxProcessorConfig{}, logger.Nop(), metrics.New("test", nil))
	})
}

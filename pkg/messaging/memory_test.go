package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBroker_PublishSubscribe(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := b.Subscribe(ctx, EventsChannel)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, EventsChannel, map[string]string{"type": "MEDICATION_CREATE"}))
	require.NoError(t, b.Publish(ctx, "other", map[string]string{"type": "ignored"}))

	select {
	case msg := <-ch:
		assert.JSONEq(t, `{"type":"MEDICATION_CREATE"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}

	select {
	case msg := <-ch:
		t.Fatalf("unexpected message %s", msg)
	default:
	}
}

func TestMemoryBroker_CancelClosesSubscription(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := b.Subscribe(ctx, EventsChannel)
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryBroker_PublishAfterClose(t *testing.T) {
	b := NewMemoryBroker()
	require.NoError(t, b.Close())
	assert.Error(t, b.Publish(context.Background(), EventsChannel, "x"))
}

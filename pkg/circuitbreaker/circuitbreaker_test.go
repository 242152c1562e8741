package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 2, Timeout: time.Minute})
	boom := errors.New("boom")

	assert.Equal(t, boom, cb.Execute(func() error { return boom }))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, boom, cb.Execute(func() error { return boom }))
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 1, Timeout: time.Second})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }

	_ = cb.Execute(func() error { return errors.New("down") })
	assert.Equal(t, StateOpen, cb.State())

	now = now.Add(2 * time.Second)
	assert.Equal(t, StateHalfOpen, cb.State())

	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 3, Timeout: time.Second})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errors.New("down") })
	}
	now = now.Add(2 * time.Second)

	_ = cb.Execute(func() error { return errors.New("still down") })
	assert.Equal(t, StateOpen, cb.State())
}

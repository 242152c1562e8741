package repotest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	apperrors "github.com/safefam/api/pkg/errors"
)

type outboxRepo struct{ s *Store }

func (r *outboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}

	event.ID = uuid.New()
	event.CreatedAt = r.s.stamp()
	event.UpdatedAt = event.CreatedAt
	event.Status = model.OutboxStatusPending
	c := *event
	r.s.Outbox = append(r.s.Outbox, &c)
	return nil
}

// WithPendingEvents hands copies of due events to fn. The store lock is not
// held while fn runs so fn may call back into other fakes.
func (r *outboxRepo) WithPendingEvents(ctx context.Context, limit int, fn func(tx repository.OutboxTx, events []*model.OutboxEvent) error) error {
	r.s.mu.Lock()
	if r.s.Err != nil {
		r.s.mu.Unlock()
		return r.s.Err
	}

	now := r.s.Now()
	var events []*model.OutboxEvent
	for _, e := range r.s.Outbox {
		if e.Status != model.OutboxStatusPending {
			continue
		}
		if e.RetryAt != nil && e.RetryAt.After(now) {
			continue
		}
		c := *e
		events = append(events, &c)
	}
	r.s.mu.Unlock()

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	if len(events) == 0 {
		return nil
	}
	return fn(&outboxTx{s: r.s}, events)
}

func (r *outboxRepo) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}

	kept := r.s.Outbox[:0]
	var n int64
	for _, e := range r.s.Outbox {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.s.Outbox = kept
	return n, nil
}

type outboxTx struct{ s *Store }

func (t *outboxTx) find(id uuid.UUID) (*model.OutboxEvent, error) {
	for _, e := range t.s.Outbox {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, apperrors.NotFound("outbox event", nil)
}

func (t *outboxTx) MarkProcessed(_ context.Context, id uuid.UUID) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	e, err := t.find(id)
	if err != nil {
		return err
	}
	now := t.s.Now()
	e.Status = model.OutboxStatusProcessed
	e.ErrorMessage = nil
	e.ProcessedAt = &now
	e.UpdatedAt = now
	return nil
}

func (t *outboxTx) MarkRetry(_ context.Context, id uuid.UUID, errorMessage string, retryAt time.Time) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	e, err := t.find(id)
	if err != nil {
		return err
	}
	e.ErrorMessage = &errorMessage
	e.RetryAt = &retryAt
	e.RetryCount++
	e.UpdatedAt = t.s.Now()
	return nil
}

func (t *outboxTx) MoveToDeadLetter(_ context.Context, event *model.OutboxEvent, errorMessage string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	e, err := t.find(event.ID)
	if err != nil {
		return err
	}
	dead := *event
	dead.ErrorMessage = &errorMessage
	t.s.DeadLetters = append(t.s.DeadLetters, &dead)

	e.Status = model.OutboxStatusFailed
	e.ErrorMessage = &errorMessage
	e.UpdatedAt = t.s.Now()
	return nil
}

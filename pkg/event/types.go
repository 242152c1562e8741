package event

import (
	"context"

	"github.com/google/uuid"
)

const (
	// ContextKey holds the *EventContext of a tracked request.
	ContextKey = "eventCtx"
	// FamilyIDKey holds the caller's family uuid.UUID once the family gate ran.
	FamilyIDKey = "event_family_id"
)

type EventType string

// EventContext is filled by handlers during a tracked request. NewData is
// the resulting entity, OldData the entity before an update; Fields limits
// the change set computed between them.
type EventContext struct {
	Resource   string
	Operation  string
	OldData    interface{}
	NewData    interface{}
	Fields     []string
	Additional map[string]interface{}
}

// Recorder persists an event for later publication.
type Recorder interface {
	Record(ctx context.Context, eventType EventType, familyID *uuid.UUID, payload interface{}) error
}

type FieldExtractor interface {
	ExtractFields(obj interface{}, fields []string) map[string]interface{}
	ExtractChanges(old, new interface{}, fields []string) map[string]interface{}
}

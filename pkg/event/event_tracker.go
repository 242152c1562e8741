package event

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type EventTrackerMiddleware struct {
	recorder  Recorder
	extractor FieldExtractor
}

func NewEventTrackerMiddleware(recorder Recorder) *EventTrackerMiddleware {
	return &EventTrackerMiddleware{
		recorder:  recorder,
		extractor: &DefaultFieldExtractor{},
	}
}

// Name builds the outbox event type, e.g. MEDICATION_LOG_DOSE.
func Name(resource, action string) EventType {
	return EventType(fmt.Sprintf("%s_%s", strings.ToUpper(resource), strings.ToUpper(action)))
}

// TrackEvent records an outbox event after a successful request whose
// handler set NewData on the event context.
func (m *EventTrackerMiddleware) TrackEvent(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventCtx := &EventContext{
			Resource:  resource,
			Operation: action,
		}
		c.Set(ContextKey, eventCtx)

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest || len(c.Errors) > 0 || eventCtx.NewData == nil {
			return
		}

		payload := map[string]interface{}{
			"resource":  resource,
			"operation": action,
			"data":      eventCtx.NewData,
		}
		if eventCtx.OldData != nil && len(eventCtx.Fields) > 0 {
			payload["changes"] = m.extractor.ExtractChanges(eventCtx.OldData, eventCtx.NewData, eventCtx.Fields)
		}
		if len(eventCtx.Additional) > 0 {
			payload["additional"] = eventCtx.Additional
		}

		var familyID *uuid.UUID
		if v, ok := c.Get(FamilyIDKey); ok {
			if id, ok := v.(uuid.UUID); ok {
				familyID = &id
			}
		}

		eventType := Name(resource, action)
		if err := m.recorder.Record(c.Request.Context(), eventType, familyID, payload); err != nil {
			log.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to record event")
		}
	}
}

// FromContext returns the event context of a tracked request, or a
// throwaway one so handlers can set fields unconditionally.
func FromContext(c *gin.Context) *EventContext {
	if v, ok := c.Get(ContextKey); ok {
		if ec, ok := v.(*EventContext); ok {
			return ec
		}
	}
	return &EventContext{}
}

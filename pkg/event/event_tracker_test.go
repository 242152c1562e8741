package event

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	eventType EventType
	familyID  *uuid.UUID
	payload   map[string]interface{}
}

type fakeRecorder struct {
	events []recorded
}

func (f *fakeRecorder) Record(_ context.Context, eventType EventType, familyID *uuid.UUID, payload interface{}) error {
	f.events = append(f.events, recorded{eventType, familyID, payload.(map[string]interface{})})
	return nil
}

type item struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Secret string `json:"-"`
}

func newRouter(rec *fakeRecorder, familyID uuid.UUID, status int, setData bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tracker := NewEventTrackerMiddleware(rec)
	r.PUT("/items", func(c *gin.Context) {
		c.Set(FamilyIDKey, familyID)
		c.Next()
	}, tracker.TrackEvent("item", "update"), func(c *gin.Context) {
		if setData {
			ec := FromContext(c)
			ec.OldData = &item{ID: "1", Name: "old"}
			ec.NewData = &item{ID: "1", Name: "new"}
			ec.Fields = []string{"name"}
		}
		c.Status(status)
	})
	return r
}

func TestTrackEventRecordsSuccessfulMutation(t *testing.T) {
	rec := &fakeRecorder{}
	familyID := uuid.New()
	r := newRouter(rec, familyID, http.StatusOK, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/items", nil))

	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, EventType("ITEM_UPDATE"), ev.eventType)
	require.NotNil(t, ev.familyID)
	assert.Equal(t, familyID, *ev.familyID)
	assert.Equal(t, "item", ev.payload["resource"])

	changes := ev.payload["changes"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"old": "old", "new": "new"}, changes["name"])
}

func TestTrackEventSkipsFailuresAndEmptyData(t *testing.T) {
	rec := &fakeRecorder{}

	w := httptest.NewRecorder()
	newRouter(rec, uuid.New(), http.StatusBadRequest, true).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/items", nil))

	w = httptest.NewRecorder()
	newRouter(rec, uuid.New(), http.StatusOK, false).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/items", nil))

	assert.Empty(t, rec.events)
}

func TestFromContextWithoutTracker(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	ec := FromContext(c)
	require.NotNil(t, ec)
	ec.NewData = "ignored"
}

func TestExtractFieldsDescendsAndSkipsHidden(t *testing.T) {
	type base struct {
		ID string `json:"id"`
	}
	type wrapped struct {
		base
		Base2 struct {
			Inner string `json:"inner"`
		} `json:"base2"`
		Name   string `json:"name,omitempty"`
		Hidden string `json:"-"`
	}
	type exported struct {
		Embedded
		Hidden string `json:"-"`
	}

	e := &DefaultFieldExtractor{}
	got := e.ExtractFields(&exported{Embedded: Embedded{ID: "x"}, Hidden: "h"}, []string{"id", "-", "hidden"})
	assert.Equal(t, map[string]interface{}{"id": "x"}, got)

	got = e.ExtractFields(wrapped{Name: "n"}, []string{"name"})
	assert.Equal(t, map[string]interface{}{"name": "n"}, got)

	assert.Empty(t, e.ExtractFields((*wrapped)(nil), []string{"name"}))
}

type Embedded struct {
	ID string `json:"id"`
}

func TestName(t *testing.T) {
	assert.Equal(t, EventType("MEDICATION_LOG_DOSE"), Name("medication", "log_dose"))
}

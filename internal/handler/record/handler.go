package record

import (
	"github.com/gin-gonic/gin"

	"github.com/safefam/api/internal/handler"
	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/service/record"
	"github.com/safefam/api/pkg/event"
	"github.com/safefam/api/pkg/httputil"
)

var recordFields = []string{
	"family_member_id", "record_type", "title", "description", "date",
	"doctor_name", "facility", "file_url",
}

type Handler struct {
	service *record.Service
}

func NewHandler(service *record.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, tracker *event.EventTrackerMiddleware) {
	records := r.Group("/records")
	{
		records.GET("", h.ListRecords)
		records.POST("", tracker.TrackEvent("health_record", "create"), h.CreateRecord)
		records.GET("/:id", h.GetRecord)
		records.PUT("/:id", tracker.TrackEvent("health_record", "update"), h.UpdateRecord)
		records.DELETE("/:id", tracker.TrackEvent("health_record", "delete"), h.DeleteRecord)
	}
}

func (h *Handler) CreateRecord(c *gin.Context) {
	var req model.HealthRecordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	rec, err := h.service.Create(c.Request.Context(), handler.FamilyID(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	event.FromContext(c).NewData = rec
	httputil.RespondWithCreated(c, rec)
}

func (h *Handler) GetRecord(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "health record")
	if !ok {
		return
	}

	rec, err := h.service.Get(c.Request.Context(), handler.FamilyID(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rec)
}

// ListRecords filters by member_id and record_type.
func (h *Handler) ListRecords(c *gin.Context) {
	memberID, ok := handler.OptionalUUID(c, "member_id")
	if !ok {
		return
	}

	filters := &model.HealthRecordFilters{
		FamilyMemberID: memberID,
		RecordType:     c.Query("record_type"),
	}
	httputil.RespondWithSuccess(c, h.service.List(c.Request.Context(), handler.FamilyID(c), filters))
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "health record")
	if !ok {
		return
	}

	var req model.HealthRecordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	familyID := handler.FamilyID(c)
	old, err := h.service.Get(c.Request.Context(), familyID, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	rec, err := h.service.Update(c.Request.Context(), familyID, id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	ec := event.FromContext(c)
	ec.OldData = old
	ec.NewData = rec
	ec.Fields = recordFields
	httputil.RespondWithSuccess(c, rec)
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "health record")
	if !ok {
		return
	}

	rec, err := h.service.Delete(c.Request.Context(), handler.FamilyID(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	event.FromContext(c).NewData = rec
	httputil.RespondWithSuccess(c, gin.H{"id": rec.ID})
}

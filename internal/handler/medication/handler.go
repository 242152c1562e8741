package medication

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/safefam/api/internal/handler"
	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/service/medication"
	apperrors "github.com/safefam/api/pkg/errors"
	"github.com/safefam/api/pkg/event"
	"github.com/safefam/api/pkg/httputil"
	"github.com/safefam/api/pkg/timefmt"
)

var medicationFields = []string{
	"name", "dosage", "frequency", "time_of_day", "start_date", "end_date",
	"refill_reminder_days", "reminder_enabled", "is_active",
}

type Handler struct {
	svc *medication.Service
	now func() time.Time
}

func NewHandler(svc *medication.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, tracker *event.EventTrackerMiddleware) {
	meds := r.Group("/medications")
	{
		meds.GET("", h.ListMedications)
		meds.POST("", tracker.TrackEvent("medication", "create"), h.CreateMedication)
		meds.GET("/:id", h.GetMedication)
		meds.PUT("/:id", tracker.TrackEvent("medication", "update"), h.UpdateMedication)
		meds.DELETE("/:id", tracker.TrackEvent("medication", "delete"), h.DeleteMedication)
		meds.GET("/:id/logs", h.ListLogs)
		meds.POST("/:id/logs", tracker.TrackEvent("medication", "log_dose"), h.LogDose)
		meds.GET("/:id/schedule", h.Schedule)
	}
}

// ListMedications answers {active, inactive}, optionally for one member.
func (h *Handler) ListMedications(c *gin.Context) {
	memberID, ok := handler.OptionalUUID(c, "member_id")
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, h.svc.List(c.Request.Context(), handler.FamilyID(c), memberID))
}

func (h *Handler) CreateMedication(c *gin.Context) {
	var req model.MedicationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	med, err := h.svc.Create(c.Request.Context(), handler.FamilyID(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	event.FromContext(c).NewData = med
	httputil.RespondWithCreated(c, med)
}

func (h *Handler) GetMedication(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "medication")
	if !ok {
		return
	}

	med, err := h.svc.Get(c.Request.Context(), handler.FamilyID(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, med)
}

func (h *Handler) UpdateMedication(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "medication")
	if !ok {
		return
	}

	var req model.MedicationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	familyID := handler.FamilyID(c)
	old, err := h.svc.Get(c.Request.Context(), familyID, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	med, err := h.svc.Update(c.Request.Context(), familyID, id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	ec := event.FromContext(c)
	ec.OldData = old
	ec.NewData = med
	ec.Fields = medicationFields
	httputil.RespondWithSuccess(c, med)
}

func (h *Handler) DeleteMedication(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "medication")
	if !ok {
		return
	}

	med, err := h.svc.Delete(c.Request.Context(), handler.FamilyID(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	event.FromContext(c).NewData = med
	httputil.RespondWithSuccess(c, gin.H{"id": med.ID})
}

func (h *Handler) LogDose(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "medication")
	if !ok {
		return
	}

	var req model.LogDoseRequest
	if c.Request.ContentLength != 0 && !handler.BindJSON(c, &req) {
		return
	}

	entry, err := h.svc.LogDose(c.Request.Context(), handler.FamilyID(c), id, req.Notes)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	ec := event.FromContext(c)
	ec.NewData = entry
	ec.Additional = map[string]interface{}{"medication_id": id}
	httputil.RespondWithCreated(c, entry)
}

func (h *Handler) ListLogs(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "medication")
	if !ok {
		return
	}

	logs, err := h.svc.ListLogs(c.Request.Context(), handler.FamilyID(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, logs)
}

// Schedule derives the dose slots for ?date=YYYY-MM-DD, today by default.
func (h *Handler) Schedule(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "medication")
	if !ok {
		return
	}

	day := timefmt.Wall(h.now())
	if raw := c.Query("date"); raw != "" {
		parsed, err := timefmt.ParseDate(raw)
		if err != nil {
			handler.Fail(c, apperrors.BadRequest("date must be YYYY-MM-DD", err))
			return
		}
		day = parsed
	}

	slots, err := h.svc.DailySchedule(c.Request.Context(), handler.FamilyID(c), id, day)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slots)
}

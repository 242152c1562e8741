package appointment

import (
	"github.com/gin-gonic/gin"

	"github.com/safefam/api/internal/handler"
	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/service/appointment"
	apperrors "github.com/safefam/api/pkg/errors"
	"github.com/safefam/api/pkg/event"
	"github.com/safefam/api/pkg/httputil"
)

var appointmentFields = []string{
	"family_member_id", "title", "appointment_type", "doctor_name", "location",
	"appointment_date", "duration_minutes", "status",
}

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, tracker *event.EventTrackerMiddleware) {
	appts := r.Group("/appointments")
	{
		appts.GET("", h.ListAppointments)
		appts.POST("", tracker.TrackEvent("appointment", "create"), h.CreateAppointment)
		appts.GET("/:id", h.GetAppointment)
		appts.PUT("/:id", tracker.TrackEvent("appointment", "update"), h.UpdateAppointment)
		appts.PATCH("/:id/status", tracker.TrackEvent("appointment", "status"), h.UpdateStatus)
		appts.DELETE("/:id", tracker.TrackEvent("appointment", "delete"), h.DeleteAppointment)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.AppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appt, err := h.service.Create(c.Request.Context(), handler.FamilyID(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	ec := event.FromContext(c)
	ec.NewData = appt
	ec.Additional = map[string]interface{}{
		"family_member_id": appt.FamilyMemberID,
	}
	httputil.RespondWithCreated(c, appt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "appointment")
	if !ok {
		return
	}

	appt, err := h.service.Get(c.Request.Context(), handler.FamilyID(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

// ListAppointments answers {upcoming, past}. Filters: member_id, status.
func (h *Handler) ListAppointments(c *gin.Context) {
	memberID, ok := handler.OptionalUUID(c, "member_id")
	if !ok {
		return
	}

	filters := &model.AppointmentFilters{FamilyMemberID: memberID}
	if status := c.Query("status"); status != "" {
		if !appointment.ValidStatus(model.AppointmentStatus(status)) {
			handler.Fail(c, apperrors.BadRequest("invalid appointment status", nil))
			return
		}
		filters.Status = status
	}

	httputil.RespondWithSuccess(c, h.service.List(c.Request.Context(), handler.FamilyID(c), filters))
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "appointment")
	if !ok {
		return
	}

	var req model.AppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	familyID := handler.FamilyID(c)
	old, err := h.service.Get(c.Request.Context(), familyID, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	appt, err := h.service.Update(c.Request.Context(), familyID, id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	ec := event.FromContext(c)
	ec.OldData = old
	ec.NewData = appt
	ec.Fields = appointmentFields
	ec.Additional = map[string]interface{}{
		"appointment_id": id,
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "appointment")
	if !ok {
		return
	}

	var req model.AppointmentStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	familyID := handler.FamilyID(c)
	old, err := h.service.Get(c.Request.Context(), familyID, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	appt, err := h.service.UpdateStatus(c.Request.Context(), familyID, id, model.AppointmentStatus(req.Status))
	if err != nil {
		handler.Fail(c, err)
		return
	}

	ec := event.FromContext(c)
	ec.OldData = old
	ec.NewData = appt
	ec.Fields = []string{"status"}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "appointment")
	if !ok {
		return
	}

	appt, err := h.service.Delete(c.Request.Context(), handler.FamilyID(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	event.FromContext(c).NewData = appt
	httputil.RespondWithSuccess(c, gin.H{"id": appt.ID})
}

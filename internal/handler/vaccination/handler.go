package vaccination

import (
	"github.com/gin-gonic/gin"

	"github.com/safefam/api/internal/handler"
	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/service/vaccination"
	"github.com/safefam/api/pkg/event"
	"github.com/safefam/api/pkg/httputil"
)

var vaccinationFields = []string{
	"family_member_id", "vaccine_name", "date_administered", "next_dose_date",
	"administered_by", "location", "batch_number",
}

type Handler struct {
	service *vaccination.Service
}

func NewHandler(service *vaccination.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, tracker *event.EventTrackerMiddleware) {
	vax := r.Group("/vaccinations")
	{
		vax.GET("", h.ListVaccinations)
		vax.POST("", tracker.TrackEvent("vaccination", "create"), h.CreateVaccination)
		vax.GET("/:id", h.GetVaccination)
		vax.PUT("/:id", tracker.TrackEvent("vaccination", "update"), h.UpdateVaccination)
		vax.DELETE("/:id", tracker.TrackEvent("vaccination", "delete"), h.DeleteVaccination)
	}
}

func (h *Handler) CreateVaccination(c *gin.Context) {
	var req model.VaccinationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	v, err := h.service.Create(c.Request.Context(), handler.FamilyID(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	event.FromContext(c).NewData = v
	httputil.RespondWithCreated(c, v)
}

func (h *Handler) GetVaccination(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "vaccination")
	if !ok {
		return
	}

	v, err := h.service.Get(c.Request.Context(), handler.FamilyID(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, v)
}

func (h *Handler) ListVaccinations(c *gin.Context) {
	memberID, ok := handler.OptionalUUID(c, "member_id")
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, h.service.List(c.Request.Context(), handler.FamilyID(c), memberID))
}

func (h *Handler) UpdateVaccination(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "vaccination")
	if !ok {
		return
	}

	var req model.VaccinationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	familyID := handler.FamilyID(c)
	old, err := h.service.Get(c.Request.Context(), familyID, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	v, err := h.service.Update(c.Request.Context(), familyID, id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	ec := event.FromContext(c)
	ec.OldData = old
	ec.NewData = v
	ec.Fields = vaccinationFields
	httputil.RespondWithSuccess(c, v)
}

func (h *Handler) DeleteVaccination(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "vaccination")
	if !ok {
		return
	}

	v, err := h.service.Delete(c.Request.Context(), handler.FamilyID(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	event.FromContext(c).NewData = v
	httputil.RespondWithSuccess(c, gin.H{"id": v.ID})
}

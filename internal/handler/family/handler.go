package family

import (
	"github.com/gin-gonic/gin"

	"github.com/safefam/api/internal/handler"
	"github.com/safefam/api/internal/middleware"
	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/repository"
	"github.com/safefam/api/internal/service/family"
	apperrors "github.com/safefam/api/pkg/errors"
	"github.com/safefam/api/pkg/event"
	"github.com/safefam/api/pkg/httputil"
)

var memberFields = []string{
	"full_name", "relationship", "date_of_birth", "blood_type", "allergies",
	"chronic_conditions", "emergency_contact", "emergency_phone",
}

type Handler struct {
	svc *family.Service
}

func NewHandler(svc *family.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterOnboarding mounts POST /onboarding on a group that is
// authenticated but not family-gated.
func (h *Handler) RegisterOnboarding(r *gin.RouterGroup, tracker *event.EventTrackerMiddleware) {
	r.POST("/onboarding", tracker.TrackEvent("family", "onboard"), h.Onboard)
}

func (h *Handler) RegisterRoutesWithEvents(r *gin.RouterGroup, tracker *event.EventTrackerMiddleware) {
	r.GET("/family", h.GetFamily)
	r.PUT("/family", tracker.TrackEvent("family", "update"), h.UpdateFamily)
	r.GET("/emergency", h.Emergency)

	members := r.Group("/members")
	{
		members.GET("", h.ListMembers)
		members.POST("", tracker.TrackEvent("member", "create"), h.AddMember)
		members.GET("/:id", h.GetMember)
		members.GET("/:id/detail", h.MemberDetail)
		members.PUT("/:id", tracker.TrackEvent("member", "update"), h.UpdateMember)
		members.DELETE("/:id", tracker.TrackEvent("member", "delete"), h.DeleteMember)
	}
}

func (h *Handler) Onboard(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthorized(nil))
		return
	}

	var req model.OnboardingRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	fc, err := h.svc.Onboard(c.Request.Context(), userID, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.Set(event.FamilyIDKey, fc.FamilyID)
	event.FromContext(c).NewData = fc
	httputil.RespondWithCreated(c, fc)
}

func (h *Handler) GetFamily(c *gin.Context) {
	fam, err := h.svc.GetFamily(c.Request.Context(), handler.FamilyID(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, fam)
}

func (h *Handler) UpdateFamily(c *gin.Context) {
	var req model.UpdateFamilyRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	fam, err := h.svc.UpdateFamily(c.Request.Context(), handler.FamilyID(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	event.FromContext(c).NewData = fam
	httputil.RespondWithSuccess(c, fam)
}

// ListMembers accepts ?order=name for pickers; the default is creation
// order.
func (h *Handler) ListMembers(c *gin.Context) {
	order := repository.MemberOrderCreated
	if c.Query("order") == "name" {
		order = repository.MemberOrderName
	}
	httputil.RespondWithSuccess(c, h.svc.ListMembers(c.Request.Context(), handler.FamilyID(c), order))
}

func (h *Handler) AddMember(c *gin.Context) {
	var req model.MemberRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	member, err := h.svc.AddMember(c.Request.Context(), handler.FamilyID(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	event.FromContext(c).NewData = member
	httputil.RespondWithCreated(c, member)
}

func (h *Handler) GetMember(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "member")
	if !ok {
		return
	}

	member, err := h.svc.GetMember(c.Request.Context(), handler.FamilyID(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, member)
}

func (h *Handler) MemberDetail(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "member")
	if !ok {
		return
	}

	detail, err := h.svc.MemberDetail(c.Request.Context(), handler.FamilyID(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, detail)
}

func (h *Handler) UpdateMember(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "member")
	if !ok {
		return
	}

	var req model.MemberRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	familyID := handler.FamilyID(c)
	old, err := h.svc.GetMember(c.Request.Context(), familyID, id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	member, err := h.svc.UpdateMember(c.Request.Context(), familyID, id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	ec := event.FromContext(c)
	ec.OldData = old
	ec.NewData = member
	ec.Fields = memberFields
	httputil.RespondWithSuccess(c, member)
}

func (h *Handler) DeleteMember(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "member")
	if !ok {
		return
	}

	member, err := h.svc.DeleteMember(c.Request.Context(), handler.FamilyID(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	event.FromContext(c).NewData = member
	httputil.RespondWithSuccess(c, gin.H{"id": member.ID})
}

func (h *Handler) Emergency(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.svc.Emergency(c.Request.Context(), handler.FamilyID(c)))
}

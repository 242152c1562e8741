package dashboard

import (
	"github.com/gin-gonic/gin"

	"github.com/safefam/api/internal/handler"
	"github.com/safefam/api/internal/service/dashboard"
	"github.com/safefam/api/pkg/httputil"
)

type Handler struct {
	service *dashboard.Service
}

func NewHandler(service *dashboard.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.GetDashboard)
	r.GET("/insights", h.GetInsights)
}

// GetDashboard never fails; a slow or broken store yields the demo snapshot.
func (h *Handler) GetDashboard(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.service.Dashboard(c.Request.Context(), handler.FamilyID(c)))
}

func (h *Handler) GetInsights(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.service.Insights(c.Request.Context(), handler.FamilyID(c)))
}

package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/records-portal/internal/handler"
	"github.com/jwalitptl/records-portal/internal/middleware"
	"github.com/jwalitptl/records-portal/internal/service/records"
	"github.com/jwalitptl/records-portal/internal/view"
)

type Handler struct {
	svc *records.Service
}

func NewHandler(svc *records.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET(view.PathPatientDash, h.Dashboard)
}

func (h *Handler) Dashboard(c *gin.Context) {
	page := h.svc.PatientDashboard(c.Request.Context(), middleware.CurrentSession(c))
	handler.Render(c, handler.TemplatePatient, page)
}

package doctor

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/records-portal/internal/handler"
	"github.com/jwalitptl/records-portal/internal/middleware"
	"github.com/jwalitptl/records-portal/internal/model"
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
	r.GET(view.PathDoctorDashboard, h.Dashboard)
	r.POST(view.PathDoctorDashboard+"/records", h.AddRecord)
}

// Dashboard lists a patient's records when a patient_id query is present.
func (h *Handler) Dashboard(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	page := view.DoctorPage{Welcome: view.DoctorWelcome(sess.Username)}

	if patientID, ok := c.GetQuery("patient_id"); ok {
		page.PatientID = strings.TrimSpace(patientID)
		page.Records = h.svc.DoctorListing(c.Request.Context(), sess, patientID)
	}
	handler.Render(c, handler.TemplateDoctor, page)
}

func (h *Handler) AddRecord(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	var form model.AddRecordForm
	if alert := handler.BindForm(c, &form); alert != nil {
		handler.Render(c, handler.TemplateDoctor, view.DoctorPage{
			Welcome: view.DoctorWelcome(sess.Username),
			Alert:   alert,
		})
		return
	}

	out := h.svc.AddRecord(c.Request.Context(), sess, form)

	page := view.DoctorPage{
		Welcome: view.DoctorWelcome(sess.Username),
		Alert:   out.Alert,
	}
	if out.Done {
		page.PatientID = strings.TrimSpace(form.PatientID)
		page.Records = out.Records
	} else {
		page.AddForm = view.AddForm{PatientID: form.PatientID, Details: form.RecordDetails}
	}
	handler.Render(c, handler.TemplateDoctor, page)
}

package record

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/records-portal/internal/handler"
	"github.com/jwalitptl/records-portal/internal/middleware"
	"github.com/jwalitptl/records-portal/internal/model"
	"github.com/jwalitptl/records-portal/internal/service/records"
	"github.com/jwalitptl/records-portal/internal/view"
	apperrors "github.com/jwalitptl/records-portal/pkg/errors"
)

// Handler serves one of the doctor's record pages: update or delete. Both
// share the select-then-confirm flow.
type Handler struct {
	svc  *records.Service
	mode view.Mode
}

func NewHandler(svc *records.Service, mode view.Mode) *Handler {
	return &Handler{svc: svc, mode: mode}
}

func (h *Handler) base() string {
	if h.mode == view.ModeDelete {
		return view.PathDeleteRecord
	}
	return view.PathUpdateRecord
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET(h.base(), h.List)
	r.POST(h.base()+"/select", h.Select)
	r.POST(h.base()+"/cancel", h.Cancel)
	r.POST(h.base(), h.Submit)
}

func (h *Handler) page(sess *model.Session, patientID string) view.RecordPage {
	return view.RecordPage{
		Mode:      h.mode,
		Welcome:   view.DoctorWelcome(sess.Username),
		PatientID: strings.TrimSpace(patientID),
	}
}

func (h *Handler) renderAlert(c *gin.Context, sess *model.Session, alert *view.Alert) {
	page := h.page(sess, "")
	page.Alert = alert
	handler.Render(c, handler.TemplateRecord, page)
}

func (h *Handler) listing(c *gin.Context, sess *model.Session, patientID string) *view.RecordsPanel {
	panel := h.svc.OwnedListing(c.Request.Context(), sess, patientID)
	panel.SelectAction = h.base() + "/select"
	return panel
}

// List shows the doctor's own records for a patient. Navigating here drops
// any earlier selection.
func (h *Handler) List(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if err := h.svc.ClearSelection(c.Request.Context(), sess); err != nil {
		_ = c.Error(err)
		return
	}

	patientID, ok := c.GetQuery("patient_id")
	page := h.page(sess, patientID)
	if ok {
		page.Records = h.listing(c, sess, patientID)
	}
	handler.Render(c, handler.TemplateRecord, page)
}

func (h *Handler) Select(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	var form model.RecordActionForm
	if alert := handler.BindForm(c, &form); alert != nil {
		h.renderAlert(c, sess, alert)
		return
	}

	page := h.page(sess, form.PatientID)

	panel, err := h.svc.SelectRecord(c.Request.Context(), sess, form.PatientID, form.RecordID)
	if err != nil && apperrors.CodeOf(err) != apperrors.ErrBadRequest {
		_ = c.Error(err)
		return
	}
	panel.SelectAction = h.base() + "/select"
	page.Records = panel

	if err != nil {
		page.Alert = view.Failure(apperrors.MessageOf(err, view.MsgNoRecordSelected))
	} else {
		page.FormOpen = true
		page.SelectedID = sess.SelectedRecordID
		for _, row := range panel.Rows {
			if row.ID == page.SelectedID {
				page.Details = row.Details
			}
		}
	}
	handler.Render(c, handler.TemplateRecord, page)
}

func (h *Handler) Submit(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	var form model.UpdateRecordForm
	if alert := handler.BindForm(c, &form); alert != nil {
		h.renderAlert(c, sess, alert)
		return
	}

	selected := sess.SelectedRecordID

	var out records.Outcome
	if h.mode == view.ModeDelete {
		out = h.svc.DeleteRecord(c.Request.Context(), sess, form.PatientID)
	} else {
		out = h.svc.UpdateRecord(c.Request.Context(), sess, form)
	}

	page := h.page(sess, form.PatientID)
	page.Alert = out.Alert
	if out.Done {
		page.Records = out.Records
		if page.Records != nil {
			page.Records.SelectAction = h.base() + "/select"
		}
	} else {
		page.FormOpen = selected != ""
		page.SelectedID = selected
		page.Details = form.RecordDetails
		if page.PatientID != "" {
			page.Records = h.listing(c, sess, form.PatientID)
		}
	}
	handler.Render(c, handler.TemplateRecord, page)
}

// Cancel still clears the selection when the form cannot be read; the
// redirect then drops the patient id.
func (h *Handler) Cancel(c *gin.Context) {
	var form model.RecordActionForm
	_ = handler.BindForm(c, &form)

	sess := middleware.CurrentSession(c)
	if err := h.svc.ClearSelection(c.Request.Context(), sess); err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("failed to clear selection")
	}
	c.Redirect(http.StatusSeeOther, view.WithPatient(h.base(), strings.TrimSpace(form.PatientID)))
}

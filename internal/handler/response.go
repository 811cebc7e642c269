package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/records-portal/internal/view"
)

// Page templates.
const (
	TemplateLogin   = "login.html"
	TemplateDoctor  = "doctor.html"
	TemplatePatient = "patient.html"
	TemplateRecord  = "record.html"
	TemplateError   = "error.html"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Render writes a page template. Pages carrying a failed action still answer
// 200 so the browser shows the form with its alert.
func Render(c *gin.Context, name string, data interface{}) {
	c.HTML(http.StatusOK, name, data)
}

// BindForm binds the posted form into obj. When the body cannot be read, for
// instance because it went over the size limit, the failure is logged and
// returned as the alert to render in place of the action.
func BindForm(c *gin.Context, obj interface{}) *view.Alert {
	if err := c.ShouldBind(obj); err != nil {
		zerolog.Ctx(c.Request.Context()).Warn().
			Err(err).
			Str("path", c.Request.URL.Path).
			Msg("failed to bind form")
		return view.Failure(view.MsgBadForm)
	}
	return nil
}

// RequestOrigin returns the Origin header, or the origin the request was
// addressed to when the browser sent none.
func RequestOrigin(c *gin.Context) string {
	if origin := c.GetHeader("Origin"); origin != "" && origin != "null" {
		return origin
	}
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

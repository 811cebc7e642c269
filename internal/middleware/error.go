package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/records-portal/internal/view"
	apperrors "github.com/jwalitptl/records-portal/pkg/errors"
)

// ErrorTemplate is the template rendered for unhandled errors.
const ErrorTemplate = "error.html"

func renderError(c *gin.Context, status int, message string) {
	c.HTML(status, ErrorTemplate, view.ErrorPage{
		Status:    status,
		Message:   message,
		RequestID: c.GetString(ContextRequestID),
	})
}

// ErrorHandler renders the error page for errors handlers attached with
// c.Error and did not answer themselves.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		l := requestLogger(c)
		for _, e := range c.Errors {
			l.Error().
				Err(e.Err).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}

		status := http.StatusInternalServerError
		var appErr *apperrors.AppError
		if errors.As(c.Errors.Last().Err, &appErr) {
			status = appErr.StatusCode()
		}
		renderError(c, status, view.MsgInternalError)
	}
}

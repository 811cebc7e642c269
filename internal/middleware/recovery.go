package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/records-portal/internal/view"
)

// Recovery turns a panic into the 500 page. The stack is logged, never shown.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestLogger(c).Error().
					Interface("panic", err).
					Bytes("stack", debug.Stack()).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Msg("recovered from panic")

				if !c.Writer.Written() {
					renderError(c, http.StatusInternalServerError, view.MsgInternalError)
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}

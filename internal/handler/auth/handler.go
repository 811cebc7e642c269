package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/records-portal/internal/handler"
	"github.com/jwalitptl/records-portal/internal/middleware"
	"github.com/jwalitptl/records-portal/internal/model"
	"github.com/jwalitptl/records-portal/internal/service/auth"
	"github.com/jwalitptl/records-portal/internal/view"
	apperrors "github.com/jwalitptl/records-portal/pkg/errors"
)

type Handler struct {
	svc        *auth.Service
	loginGuard []gin.HandlerFunc
}

// NewHandler builds the login handler. loginGuard runs before login
// submissions only, e.g. the rate limiter.
func NewHandler(svc *auth.Service, loginGuard ...gin.HandlerFunc) *Handler {
	return &Handler{svc: svc, loginGuard: loginGuard}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET(view.PathLogin, h.LoginPage)
	r.POST(view.PathLogin, append(h.loginGuard, h.Login)...)
	r.GET(view.PathLogout, h.Logout)
	r.POST(view.PathLogout, h.Logout)
}

func (h *Handler) LoginPage(c *gin.Context) {
	handler.Render(c, handler.TemplateLogin, view.LoginPage{
		Notice: view.NoticeMessage(c.Query("notice")),
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if alert := handler.BindForm(c, &req); alert != nil {
		handler.Render(c, handler.TemplateLogin, view.LoginPage{Alert: alert})
		return
	}

	sess := middleware.CurrentSession(c)
	previousID := sess.ID
	path, err := h.svc.Login(c.Request.Context(), handler.RequestOrigin(c), sess, req)
	if sess.ID != previousID {
		middleware.ReissueSession(c, sess)
	}
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.ErrInternal {
			log.Error().Err(err).Str("request_id", c.GetString(middleware.ContextRequestID)).Msg("login failed")
		}
		handler.Render(c, handler.TemplateLogin, view.LoginPage{
			Email: req.Email,
			Alert: view.Failure(apperrors.MessageOf(err, view.MsgLoginFailed)),
		})
		return
	}
	c.Redirect(http.StatusSeeOther, path)
}

// Logout always lands on the login page, even if the store could not be
// reached.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.CurrentSession(c)); err != nil {
		log.Error().Err(err).Str("request_id", c.GetString(middleware.ContextRequestID)).Msg("logout failed")
	}
	c.Redirect(http.StatusSeeOther, view.LoginWithNotice(view.NoticeLogout))
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/records-portal/internal/model"
	"github.com/jwalitptl/records-portal/internal/session"
	"github.com/jwalitptl/records-portal/internal/view"
)

const (
	ContextSession      = "session"
	ContextSessionIssue = "session_issue"
)

type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthMiddleware loads the browser's session and guards role-specific pages.
type AuthMiddleware struct {
	store  session.Store
	auth   *session.Authenticator
	cookie CookieConfig
	log    zerolog.Logger
}

func NewAuthMiddleware(store session.Store, auth *session.Authenticator, cookie CookieConfig, log zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		store:  store,
		auth:   auth,
		cookie: cookie,
		log:    log,
	}
}

// CurrentSession returns the session loaded by LoadSession.
func CurrentSession(c *gin.Context) *model.Session {
	if v, ok := c.Get(ContextSession); ok {
		if sess, ok := v.(*model.Session); ok {
			return sess
		}
	}
	return session.New()
}

// LoadSession resolves the session cookie into a *model.Session on the
// context. Unknown ids get a fresh session, which is only persisted once
// something is saved into it. The cookie has no Max-Age, so it ends with the
// browser session.
func (m *AuthMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *model.Session
		if id, err := c.Cookie(m.cookie.Name); err == nil && session.ValidID(id) {
			loaded, err := m.store.Get(c.Request.Context(), id)
			switch {
			case err == nil:
				sess = loaded
			case errors.Is(err, session.ErrNotFound):
			default:
				_ = c.Error(err)
				c.Abort()
				return
			}
		}
		if sess == nil {
			sess = session.New()
		}

		m.issueCookie(c, sess)
		c.Set(ContextSession, sess)
		c.Set(ContextSessionIssue, m.issueCookie)
		c.Next()
	}
}

// issueCookie points the browser at sess, replacing a session cookie already
// queued on this response.
func (m *AuthMiddleware) issueCookie(c *gin.Context, sess *model.Session) {
	header := c.Writer.Header()
	prefix := m.cookie.Name + "="
	var kept []string
	for _, v := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie.Name, sess.ID, 0, "/", "", m.cookie.Secure, true)
}

// ReissueSession sends the current session cookie again, for handlers that
// changed the session id. It does nothing outside LoadSession.
func ReissueSession(c *gin.Context, sess *model.Session) {
	if v, ok := c.Get(ContextSessionIssue); ok {
		if issue, ok := v.(func(*gin.Context, *model.Session)); ok {
			issue(c, sess)
		}
	}
}

// RequireRole lets the request through only when the session holds a live
// token for role. Everything else is sent to the login page with a notice.
func (m *AuthMiddleware) RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if !sess.Authenticated() || sess.Role != role {
			m.log.Info().
				Str("session_id", sess.ID).
				Str("required_role", string(role)).
				Str("role", string(sess.Role)).
				Str("path", c.Request.URL.Path).
				Msg("unauthorized page access")
			redirectToLogin(c, view.NoticeUnauthorized)
			return
		}

		if _, err := m.auth.Identify(c.Request.Context(), sess); err != nil {
			switch {
			case errors.Is(err, session.ErrExpired):
				redirectToLogin(c, view.NoticeExpired)
			case errors.Is(err, session.ErrMalformed):
				redirectToLogin(c, view.NoticeInvalid)
			case errors.Is(err, session.ErrNoToken):
				redirectToLogin(c, view.NoticeUnauthorized)
			default:
				_ = c.Error(err)
				c.Abort()
			}
			return
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context, notice string) {
	c.Redirect(http.StatusSeeOther, view.LoginWithNotice(notice))
	c.Abort()
}

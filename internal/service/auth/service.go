package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/records-portal/internal/model"
	"github.com/jwalitptl/records-portal/internal/repository"
	"github.com/jwalitptl/records-portal/internal/session"
	"github.com/jwalitptl/records-portal/internal/view"
	apperrors "github.com/jwalitptl/records-portal/pkg/errors"
	"github.com/jwalitptl/records-portal/pkg/metrics"
	"github.com/jwalitptl/records-portal/pkg/validator"
)

type Service struct {
	repo      repository.AuthRepository
	store     session.Store
	validator validator.Validator
	origins   map[string]struct{}
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

// NewService builds the login service. An empty allowedOrigins disables the
// origin check.
func NewService(repo repository.AuthRepository, store session.Store, v validator.Validator,
	allowedOrigins []string, log zerolog.Logger, m *metrics.Metrics) *Service {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if n := normalizeOrigin(o); n != "" {
			origins[n] = struct{}{}
		}
	}
	return &Service{
		repo:      repo,
		store:     store,
		validator: v,
		origins:   origins,
		log:       log,
		metrics:   m,
	}
}

func normalizeOrigin(o string) string {
	u, err := url.Parse(strings.TrimSpace(o))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

// OriginAllowed reports whether a login may be submitted from origin.
func (s *Service) OriginAllowed(origin string) bool {
	if len(s.origins) == 0 {
		return true
	}
	_, ok := s.origins[normalizeOrigin(origin)]
	return ok
}

// Login posts credentials and, on success, moves sess to a new id and stores
// the token and role in it. It returns the dashboard path for the role.
// Errors carry the message to show on the login form.
func (s *Service) Login(ctx context.Context, origin string, sess *model.Session, req model.LoginRequest) (string, error) {
	if !s.OriginAllowed(origin) {
		s.log.Warn().Str("origin", origin).Msg("login from unauthorized origin")
		s.metrics.Login("origin_denied")
		return "", apperrors.Forbidden(view.MsgAccessDenied, nil)
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return "", apperrors.NewBadRequest(view.MsgCredentialsReq, err)
	}

	resp, err := s.repo.Login(ctx, req)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnavailable) {
			s.metrics.Login("network_error")
			return "", apperrors.WithMessage(err, view.MsgNetworkError)
		}
		s.metrics.Login("failed")
		s.log.Info().Int("status", apperrors.StatusOf(err)).Msg("login rejected")
		return "", apperrors.WithMessage(err, apperrors.MessageOf(err, view.MsgLoginFailed))
	}

	sess.Clear()
	if err := session.Rotate(ctx, s.store, sess); err != nil {
		return "", err
	}
	sess.Token = resp.AccessToken
	sess.Role = resp.Role
	if err := s.store.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	path, ok := view.DashboardPath(resp.Role)
	if !ok {
		s.log.Warn().Str("role", string(resp.Role)).Msg("login returned unknown role")
		s.metrics.Login("invalid_role")
		return "", apperrors.Forbidden(view.MsgInvalidRole, model.ErrInvalidRole)
	}

	s.metrics.Login(string(resp.Role))
	s.log.Info().Str("session_id", sess.ID).Str("role", string(resp.Role)).Msg("user logged in")
	return path, nil
}

// Logout drops the session from the store and clears sess.
func (s *Service) Logout(ctx context.Context, sess *model.Session) error {
	sess.Clear()
	if err := s.store.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.log.Info().Str("session_id", sess.ID).Msg("user logged out")
	return nil
}

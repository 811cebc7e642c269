package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/records-portal/internal/model"
	"github.com/jwalitptl/records-portal/pkg/metrics"
)

// Authenticator resolves the identity behind a session's token.
type Authenticator struct {
	store   Store
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewAuthenticator(store Store, log zerolog.Logger, m *metrics.Metrics) *Authenticator {
	return &Authenticator{
		store:   store,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// WithClock replaces the time source used for expiry checks.
func (a *Authenticator) WithClock(now func() time.Time) *Authenticator {
	a.now = now
	return a
}

// Identify checks the token held by sess. An expired or unreadable token
// clears the session from the store and returns ErrExpired or ErrMalformed.
// Otherwise sub and name are copied into sess and sub is returned.
func (a *Authenticator) Identify(ctx context.Context, sess *model.Session) (string, error) {
	if !sess.Authenticated() {
		return "", ErrNoToken
	}

	claims, err := DecodeClaims(sess.Token)
	if err != nil {
		a.log.Warn().Err(err).Str("session_id", sess.ID).Msg("unreadable session token")
		a.clear(ctx, sess)
		return "", err
	}

	// exp equal to the current second is still valid.
	if claims.ExpiresAt.Unix() < a.now().Unix() {
		a.log.Info().Str("session_id", sess.ID).Str("user_id", claims.Subject).Msg("session token expired")
		a.metrics.SessionExpired()
		a.clear(ctx, sess)
		return "", ErrExpired
	}

	if sess.UserID != claims.Subject || sess.Username != claims.Name {
		sess.UserID = claims.Subject
		sess.Username = claims.Name
		if err := a.store.Save(ctx, sess); err != nil {
			return "", fmt.Errorf("failed to save session: %w", err)
		}
	}
	return claims.Subject, nil
}

func (a *Authenticator) clear(ctx context.Context, sess *model.Session) {
	sess.Clear()
	if err := a.store.Delete(ctx, sess.ID); err != nil {
		a.log.Error().Err(err).Str("session_id", sess.ID).Msg("failed to clear session")
	}
}

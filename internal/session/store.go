package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/records-portal/internal/model"
	"github.com/jwalitptl/records-portal/pkg/metrics"
)

// ErrNotFound is returned by Get for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// Store persists sessions keyed by their opaque id. Implementations refresh
// the expiry on every Save.
type Store interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, sess *model.Session) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// New returns an empty session with a fresh id.
func New() *model.Session {
	now := time.Now().UTC()
	return &model.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidID reports whether id looks like one New produced. Cookies carrying
// anything else are ignored before touching the store.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Rotate moves sess to a fresh id and drops the old id from store. The caller
// saves sess and hands the new id to the browser.
func Rotate(ctx context.Context, store Store, sess *model.Session) error {
	if err := store.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	now := time.Now().UTC()
	sess.ID = uuid.NewString()
	sess.CreatedAt = now
	sess.UpdatedAt = now
	return nil
}

type instrumentedStore struct {
	next    Store
	metrics *metrics.Metrics
}

// Instrument wraps next so every call is counted and timed.
func Instrument(next Store, m *metrics.Metrics) Store {
	if m == nil {
		return next
	}
	return &instrumentedStore{next: next, metrics: m}
}

func (s *instrumentedStore) Get(ctx context.Context, id string) (*model.Session, error) {
	start := time.Now()
	sess, err := s.next.Get(ctx, id)
	observed := err
	if errors.Is(err, ErrNotFound) {
		observed = nil
	}
	s.metrics.ObserveSession("get", observed, time.Since(start))
	return sess, err
}

func (s *instrumentedStore) Save(ctx context.Context, sess *model.Session) error {
	start := time.Now()
	err := s.next.Save(ctx, sess)
	s.metrics.ObserveSession("save", err, time.Since(start))
	return err
}

func (s *instrumentedStore) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, id)
	s.metrics.ObserveSession("delete", err, time.Since(start))
	return err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

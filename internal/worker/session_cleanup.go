package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SessionCleaner removes sessions that expired before cutoff.
type SessionCleaner interface {
	Cleanup(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionCleanupWorker periodically purges expired sessions from stores that
// do not expire keys on their own.
type SessionCleanupWorker struct {
	store           SessionCleaner
	cleanupInterval time.Duration
	log             zerolog.Logger
	now             func() time.Time
}

func NewSessionCleanupWorker(store SessionCleaner, cleanupInterval time.Duration, log zerolog.Logger) *SessionCleanupWorker {
	return &SessionCleanupWorker{
		store:           store,
		cleanupInterval: cleanupInterval,
		log:             log,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Start blocks until ctx is cancelled.
func (w *SessionCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.log.Error().Err(err).Msg("failed to clean up sessions")
			}
		}
	}
}

// RunOnce performs a single cleanup pass.
func (w *SessionCleanupWorker) RunOnce(ctx context.Context) (int64, error) {
	cutoff := w.now()
	rows, err := w.store.Cleanup(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if rows > 0 {
		w.log.Info().Int64("removed", rows).Time("cutoff", cutoff).Msg("cleaned up expired sessions")
	}
	return rows, nil
}

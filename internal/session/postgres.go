package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jwalitptl/records-portal/internal/config"
	"github.com/jwalitptl/records-portal/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS portal_sessions (
	id         TEXT PRIMARY KEY,
	payload    BYTEA NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS portal_sessions_expires_at_idx ON portal_sessions (expires_at);
`

func NewDB(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// PostgresStore keeps encoded sessions in the portal_sessions table. Expired
// rows are invisible to Get and removed by Cleanup.
type PostgresStore struct {
	db    *sqlx.DB
	codec *Codec
	ttl   time.Duration
	now   func() time.Time
}

func NewPostgresStore(db *sqlx.DB, codec *Codec, ttl time.Duration) *PostgresStore {
	return &PostgresStore{
		db:    db,
		codec: codec,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Migrate creates the sessions table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate sessions table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*model.Session, error) {
	var payload []byte
	err := s.db.GetContext(ctx, &payload,
		`SELECT payload FROM portal_sessions WHERE id = $1 AND expires_at > $2`,
		id, s.now())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	sess, err := s.codec.Decode(id, payload)
	if err != nil {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *PostgresStore) Save(ctx context.Context, sess *model.Session) error {
	now := s.now()
	sess.UpdatedAt = now
	payload, err := s.codec.Encode(sess)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO portal_sessions (id, payload, expires_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`,
		sess.ID, payload, now.Add(s.ttl), now)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM portal_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Cleanup removes rows that expired before cutoff and reports how many went.
func (s *PostgresStore) Cleanup(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM portal_sessions WHERE expires_at <= $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return res.RowsAffected()
}

package session

import (
	"context"
	"fmt"
	"io"

	"github.com/jwalitptl/records-portal/internal/config"
)

// Backend is an opened session store together with the resources behind it.
type Backend struct {
	Store Store
	// Postgres is set for the postgres backend, which needs periodic cleanup.
	Postgres *PostgresStore
	closers  []io.Closer
}

func (b *Backend) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open connects the backend named in cfg.Session.Backend.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if cfg.Session.Backend == "memory" {
		return &Backend{Store: NewMemoryStore(cfg.Session.TTL, cfg.Session.CleanupInterval)}, nil
	}

	codec, err := NewCodec(cfg.Session.Secret)
	if err != nil {
		return nil, err
	}

	switch cfg.Session.Backend {
	case "redis":
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Store:   NewRedisStore(client, codec, cfg.Redis.KeyPrefix, cfg.Session.TTL),
			closers: []io.Closer{client},
		}, nil
	case "postgres":
		db, err := NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		store := NewPostgresStore(db, codec, cfg.Session.TTL)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &Backend{Store: store, Postgres: store, closers: []io.Closer{db}}, nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

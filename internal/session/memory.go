package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/records-portal/internal/model"
)

// MemoryStore keeps sessions in process. Sessions are lost on restart.
type MemoryStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewMemoryStore(ttl, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.Session, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	sess := v.(model.Session)
	return &sess, nil
}

// Save stores a copy so later mutations of sess are not visible until the
// next Save.
func (s *MemoryStore) Save(_ context.Context, sess *model.Session) error {
	sess.UpdatedAt = time.Now().UTC()
	s.cache.Set(sess.ID, *sess, s.ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}

package sessionstore

import (
	"context"
	"time"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/patrickmn/go-cache"
)

// Memory is an in-process Store backed by go-cache.
type Memory struct {
	cache *cache.Cache
}

// NewMemory creates a Memory store whose entries expire after ttl of
// inactivity. A non-positive ttl uses DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{cache: cache.New(ttl, ttl/2)}
}

func (m *Memory) Load(_ context.Context, sessionID string) (domain.SessionContext, error) {
	if cached, found := m.cache.Get(sessionID); found {
		if sc, ok := cached.(domain.SessionContext); ok {
			return sc, nil
		}
	}
	return domain.DefaultSessionContext(), nil
}

func (m *Memory) Save(_ context.Context, sessionID string, sc domain.SessionContext) error {
	m.cache.Set(sessionID, sc, cache.DefaultExpiration)
	return nil
}

func (m *Memory) Delete(_ context.Context, sessionID string) error {
	m.cache.Delete(sessionID)
	return nil
}

// Close drops every entry.
func (m *Memory) Close() error {
	m.cache.Flush()
	return nil
}

var _ Store = (*Memory)(nil)

// Package sessionstore keeps per-session context (energy, flow state, focus)
// for the lifetime of a session. Nothing here outlives the configured TTL.
package sessionstore

import (
	"context"
	"time"

	"github.com/alexanderramin/taskquest/internal/domain"
)

// DefaultTTL is how long an idle session context is kept.
const DefaultTTL = 60 * time.Minute

// Store loads and saves session contexts. Load of an unknown or expired
// session returns domain.DefaultSessionContext().
type Store interface {
	Load(ctx context.Context, sessionID string) (domain.SessionContext, error)
	Save(ctx context.Context, sessionID string, sc domain.SessionContext) error
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

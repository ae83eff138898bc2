package ports

import (
	"context"

	"github.com/leonidyasin/tablebot/pkg/domain"
)

// SessionStore persists per-chat session state. In-memory and durable
// implementations are both valid; the engine only requires read-your-writes
// within a process.
type SessionStore interface {
	// Save persists the session for the given key.
	Save(ctx context.Context, sessionID string, session *domain.Session) error

	// Load retrieves the session for the given key.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session for the given key.
	Delete(ctx context.Context, sessionID string) error

	// List returns the keys of all stored sessions.
	List(ctx context.Context) ([]string, error)
}

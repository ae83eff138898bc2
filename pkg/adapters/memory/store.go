// Package memory provides an in-process session store, suitable for tests
// and single-instance deployments without durability needs.
package memory

import (
	"context"
	"sync"

	"github.com/leonidyasin/tablebot/pkg/domain"
)

// Store implements ports.SessionStore in memory. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]*domain.Session
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Session),
	}
}

// Save persists a deep copy of the session, so later mutations by the
// caller do not leak into the store.
func (s *Store) Save(ctx context.Context, chatID string, sess *domain.Session) error {
	copied := sess.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[chatID] = copied
	return nil
}

// Load returns a copy of the stored session. Mutating the result does not
// affect the store, matching the isolation of serializing stores.
func (s *Store) Load(ctx context.Context, chatID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.data[chatID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, chatID)
	return nil
}

// List returns the chat IDs with stored sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

// Package session coordinates concurrent access to per-chat sessions.
// Updates within one chat are serialized; different chats proceed in
// parallel.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/leonidyasin/tablebot/internal/logging"
	"github.com/leonidyasin/tablebot/pkg/domain"
	"github.com/leonidyasin/tablebot/pkg/ports"
)

// lockTTL bounds how long a crashed holder can block a chat when a
// distributed locker is in use.
const lockTTL = 30 * time.Second

// lockEntry holds the per-chat mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes session reads and writes per chat. Lock entries are
// reference counted and garbage collected once the last holder leaves, so
// the map stays proportional to concurrent chats, not total chats seen.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker adds a distributed lock around every WithLock section, for
// deployments running more than one process against a shared store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for deferred errors.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager backed by the given store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release(chatID) after unlocking.
func (m *Manager) acquire(chatID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[chatID]
	if !ok {
		entry = &lockEntry{}
		m.locks[chatID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and drops the entry at zero.
func (m *Manager) release(chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[chatID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, chatID)
	}
}

// Load retrieves an existing session.
func (m *Manager) Load(ctx context.Context, chatID string) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, chatID, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, chatID)
		return err
	})
	return sess, err
}

// LoadOrStart loads the session for a chat, creating and persisting a
// fresh one at the start state if none exists yet.
func (m *Manager) LoadOrStart(ctx context.Context, chatID string) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, chatID, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, chatID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("check session existence: %w", err)
		}

		sess = domain.NewSession()
		if err := m.store.Save(ctx, chatID, sess); err != nil {
			return fmt.Errorf("initialize session: %w", err)
		}
		return nil
	})
	return sess, err
}

// Save persists the session for a chat.
func (m *Manager) Save(ctx context.Context, chatID string, sess *domain.Session) error {
	return m.WithLock(ctx, chatID, func(ctx context.Context) error {
		return m.store.Save(ctx, chatID, sess)
	})
}

// Delete removes the session for a chat.
func (m *Manager) Delete(ctx context.Context, chatID string) error {
	return m.WithLock(ctx, chatID, func(ctx context.Context) error {
		return m.store.Delete(ctx, chatID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock runs fn while holding the chat's lock, plus the distributed
// lock when one is configured. Nested WithLock calls for the same chat
// deadlock; compose work inside a single critical section instead.
func (m *Manager) WithLock(ctx context.Context, chatID string, fn func(context.Context) error) error {
	entry := m.acquire(chatID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(chatID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, chatID, lockTTL)
		if err != nil {
			return fmt.Errorf("acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("distributed lock release failed, TTL will expire it",
					"chat_id", chatID, "err", err)
			}
		}()
	}

	return fn(ctx)
}

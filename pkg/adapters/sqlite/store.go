// Package sqlite persists sessions in a SQLite database, for single-node
// deployments that need durability without a Redis instance.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/leonidyasin/tablebot/pkg/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	chat_id    TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	role       TEXT NOT NULL,
	payload    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// Store implements ports.SessionStore on SQLite. The payload column holds
// JSON, so stored sessions round-trip the same way as the Redis store.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and ensures the schema.
//
// SQLite allows a single writer; the pool is capped at one connection to
// avoid SQLITE_BUSY under concurrent chats, and WAL mode keeps reads
// flowing during writes.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect session database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply session schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts the session row.
func (s *Store) Save(ctx context.Context, chatID string, sess *domain.Session) error {
	payload, err := json.Marshal(sess.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (chat_id, state, role, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			state = excluded.state,
			role = excluded.role,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		chatID, sess.CurrentState, sess.Role, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load reads the session row and decodes the payload.
func (s *Store) Load(ctx context.Context, chatID string) (*domain.Session, error) {
	var (
		state, role string
		payload     []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT state, role, payload FROM sessions WHERE chat_id = ?`, chatID).
		Scan(&state, &role, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess := &domain.Session{
		CurrentState: state,
		Role:         role,
		Payload:      domain.Payload{},
	}
	if err := json.Unmarshal(payload, &sess.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	if sess.Payload == nil {
		sess.Payload = domain.Payload{}
	}
	return sess, nil
}

// Delete removes the session row.
func (s *Store) Delete(ctx context.Context, chatID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// List returns all stored chat IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chat_id FROM sessions ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

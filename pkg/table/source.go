package table

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/leonidyasin/tablebot/pkg/domain"
)

// Source serves the current rule snapshot from a CSV file on disk.
// Reload re-parses the file and swaps the snapshot atomically, so
// in-flight dispatches keep the table they started with.
type Source struct {
	path    string
	logger  *slog.Logger
	current atomic.Pointer[domain.Snapshot]

	// onReload callbacks run after every successful Reload, manual or
	// watcher-triggered. Register before serving; no locking.
	onReload []func(ctx context.Context, rules int)
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger used for load diagnostics and watch events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New loads the table at path and returns a Source serving it. The
// initial load must succeed; later reload failures keep the last good
// snapshot instead.
func New(path string, opts ...Option) (*Source, error) {
	s := &Source{
		path:   path,
		logger: slog.New(discardHandler()),
	}
	for _, opt := range opts {
		opt(s)
	}

	rules, err := Load(path, s.logger)
	if err != nil {
		return nil, err
	}
	s.current.Store(domain.NewSnapshot(rules))
	return s, nil
}

// Snapshot returns the rule table currently in effect.
func (s *Source) Snapshot() *domain.Snapshot {
	return s.current.Load()
}

// Reload re-reads the file and replaces the snapshot. On parse failure
// the previous snapshot stays in effect and the error is returned.
func (s *Source) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rules, err := Load(s.path, s.logger)
	if err != nil {
		s.logger.Error("rule table reload failed, keeping previous snapshot",
			"path", s.path, "err", err)
		return err
	}
	snap := domain.NewSnapshot(rules)
	s.current.Store(snap)
	s.logger.Info("rule table reloaded", "path", s.path,
		"rules", len(snap.Rules()), "states", len(snap.States()))
	for _, fn := range s.onReload {
		fn(ctx, len(snap.Rules()))
	}
	return nil
}

// OnReload registers fn to run after each successful reload. Watcher
// reloads and manual reloads both report through here.
func (s *Source) OnReload(fn func(ctx context.Context, rules int)) {
	if fn != nil {
		s.onReload = append(s.onReload, fn)
	}
}

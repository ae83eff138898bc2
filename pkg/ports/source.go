package ports

import (
	"context"

	"github.com/leonidyasin/tablebot/pkg/domain"
)

// RuleSource provides the current rule table snapshot. Snapshot must be safe
// to call concurrently and must return a consistent whole-table view; reload
// swaps the snapshot atomically, never mutates it.
type RuleSource interface {
	Snapshot() *domain.Snapshot

	// Reload re-reads the backing table and swaps the snapshot.
	Reload(ctx context.Context) error
}

// Watchable is implemented by rule sources that can notify about backend
// changes, typically for hot reload in dev mode.
type Watchable interface {
	// Watch signals on the returned channel whenever the backing table
	// changed and a Reload is warranted.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

// ReloadNotifier is implemented by rule sources that can report every
// successful reload, whichever path triggered it (manual or file watch).
// Callbacks must be registered before the source starts serving.
type ReloadNotifier interface {
	// OnReload registers fn to run after each successful reload with the
	// new snapshot's rule count.
	OnReload(fn func(ctx context.Context, rules int))
}

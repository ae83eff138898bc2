package table

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces the burst of events editors emit on save.
const debounce = 250 * time.Millisecond

// Watch reloads the table whenever the file changes on disk and emits a
// tick on the returned channel after each successful reload. The watcher
// stops when ctx is cancelled.
//
// The parent directory is watched rather than the file itself: editors
// that save via rename-and-replace would otherwise detach the watch.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create table watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	ticks := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		defer close(ticks)

		var timer *time.Timer
		var pending <-chan time.Time
		target := filepath.Clean(s.path)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
					pending = timer.C
				} else {
					timer.Reset(debounce)
				}
			case <-pending:
				timer = nil
				pending = nil
				if err := s.Reload(ctx); err != nil {
					continue
				}
				select {
				case ticks <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("table watcher error", "err", err)
			}
		}
	}()
	return ticks, nil
}

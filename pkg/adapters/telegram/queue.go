package telegram

import (
	"context"
	"sync"

	"github.com/leonidyasin/tablebot/pkg/domain"
	"github.com/leonidyasin/tablebot/pkg/ports"
)

// queueDepth bounds the backlog per chat. A full queue applies
// backpressure to the poll loop instead of dropping events.
const queueDepth = 16

// eventQueue fans updates out to one worker goroutine per chat. Events
// for the same chat are handled strictly in arrival order; different
// chats proceed in parallel, so one chat blocked on slow effect I/O
// never stalls the others.
type eventQueue struct {
	handler ports.EventHandler

	mu    sync.Mutex
	chats map[int64]chan domain.Event
	done  chan struct{}
	wg    sync.WaitGroup
}

func newEventQueue(handler ports.EventHandler) *eventQueue {
	return &eventQueue{
		handler: handler,
		chats:   make(map[int64]chan domain.Event),
		done:    make(chan struct{}),
	}
}

// dispatch enqueues the event on its chat's worker, starting the worker
// on first use. Blocks only when that chat's backlog is full.
func (q *eventQueue) dispatch(ctx context.Context, ev domain.Event) {
	q.mu.Lock()
	ch, ok := q.chats[ev.ChatID]
	if !ok {
		ch = make(chan domain.Event, queueDepth)
		q.chats[ev.ChatID] = ch
		q.wg.Add(1)
		go q.drain(ctx, ch)
	}
	q.mu.Unlock()

	select {
	case ch <- ev:
	case <-ctx.Done():
	case <-q.done:
	}
}

func (q *eventQueue) drain(ctx context.Context, ch <-chan domain.Event) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.done:
			return
		case ev := <-ch:
			q.handler(ctx, ev)
		}
	}
}

// stop shuts the workers down and blocks until they have exited.
func (q *eventQueue) stop() {
	close(q.done)
	q.wg.Wait()
}

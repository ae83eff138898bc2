package domain

import (
	"context"
	"time"
)

// DispatchEvent describes one completed dispatch for observability hooks.
type DispatchEvent struct {
	ChatID    int64
	FromState string
	ToState   string
	Outcome   Outcome
	RuleIndex int
	Duration  time.Duration
}

// Hooks are optional observability callbacks. Nil fields are skipped; hooks
// run synchronously on the dispatch path and must be cheap.
type Hooks struct {
	OnDispatch     func(context.Context, *DispatchEvent)
	OnNotification func(context.Context, Notification)
	OnReload       func(ctx context.Context, rules int)
}

package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/leonidyasin/tablebot/internal/logging"
	"github.com/leonidyasin/tablebot/pkg/domain"
	"github.com/leonidyasin/tablebot/pkg/ports"
)

const defaultGeocodeTimeout = 5 * time.Second

// Engine runs the dispatch pipeline against a rule table snapshot.
type Engine struct {
	geocoder       ports.Geocoder
	geocodeTimeout time.Duration
	hooks          domain.Hooks
	logger         *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithGeocoder enables the geocode_location action. Without a geocoder the
// action falls back to raw coordinates.
func WithGeocoder(g ports.Geocoder) Option {
	return func(e *Engine) {
		e.geocoder = g
	}
}

// WithGeocodeTimeout bounds a single reverse-geocode call.
func WithGeocodeTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.geocodeTimeout = d
		}
	}
}

// WithHooks registers observability callbacks.
func WithHooks(hooks domain.Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		geocodeTimeout: defaultGeocodeTimeout,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// resetInputs force-position the session at the start state before normal
// matching, so tables can still author rules on the same input.
func isReset(text string) bool {
	return text == "/start" || text == "/reset"
}

// Dispatch processes one inbound event. Stages run in fixed order: match,
// guard, effects, content, transition. Unmatched input and internal failures
// both leave the given session untouched.
func (e *Engine) Dispatch(ctx context.Context, snap *domain.Snapshot, sess *domain.Session, ev domain.Event) (res *domain.Result) {
	start := time.Now()
	if sess == nil {
		sess = domain.NewSession()
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("dispatch failed", "err", r, "chat_id", ev.ChatID, "state", sess.CurrentState)
			res = &domain.Result{Outcome: domain.OutcomeError, Session: sess}
		}
		e.emitDispatch(ctx, ev, sess, res, time.Since(start))
	}()

	work := sess.Clone()
	if work.CurrentState == "" {
		work.CurrentState = domain.StateStart
	}
	if work.Role == "" {
		work.Role = domain.DefaultRole
	}
	if isReset(ev.Text) {
		// Control input: reinitialize to the start state, dropping the
		// accumulated payload, then continue normal dispatch.
		work.CurrentState = domain.StateStart
		work.Payload = domain.Payload{}
	}
	seedPayload(work, ev)

	rule := e.match(snap.Rules(), work.CurrentState, work.Role, ev)
	if rule == nil {
		if isReset(ev.Text) {
			// The reset itself still commits.
			return &domain.Result{Outcome: domain.OutcomeOK, Session: work}
		}
		return &domain.Result{Outcome: domain.OutcomeUnmatched, Session: sess}
	}

	skip := e.evaluateGuard(rule.Condition, work.Payload, work.Role)

	var notifications []domain.Notification
	if !skip {
		notifications = e.executeActions(ctx, rule, work.Payload)
	}

	content := e.buildContent(rule, work.Payload)

	if next := resolveTransition(rule, skip); next != "" {
		if snap.HasState(next) {
			e.logger.Debug("transition", "from", work.CurrentState, "to", next)
			work.CurrentState = next
			work.Payload["current_state"] = next
		} else {
			// Fail-soft: an unknown target state means "stay".
			e.logger.Warn("unknown target state, staying", "to_state", next, "rule", rule.Index)
		}
	}

	outcome := domain.OutcomeOK
	if skip {
		outcome = domain.OutcomeSkipped
	}
	return &domain.Result{
		Outcome:       outcome,
		Content:       content,
		Notifications: notifications,
		Session:       work,
		Rule:          rule,
	}
}

// seedPayload exposes the inbound event to guards and templates.
func seedPayload(sess *domain.Session, ev domain.Event) {
	sess.Payload["current_state"] = sess.CurrentState
	sess.Payload["text"] = ev.Text
	sess.Payload["chat_id"] = ev.ChatID
	if ev.Location != nil {
		sess.Payload["location"] = *ev.Location
	}
}

func (e *Engine) emitDispatch(ctx context.Context, ev domain.Event, sess *domain.Session, res *domain.Result, d time.Duration) {
	if e.hooks.OnDispatch == nil || res == nil {
		return
	}
	evt := &domain.DispatchEvent{
		ChatID:    ev.ChatID,
		FromState: sess.CurrentState,
		Outcome:   res.Outcome,
		RuleIndex: -1,
		Duration:  d,
	}
	if res.Session != nil {
		evt.ToState = res.Session.CurrentState
	}
	if res.Rule != nil {
		evt.RuleIndex = res.Rule.Index
	}
	e.hooks.OnDispatch(ctx, evt)
}

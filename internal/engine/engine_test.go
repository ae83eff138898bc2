package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonidyasin/tablebot/pkg/domain"
)

func snapshotOf(rules ...domain.Rule) *domain.Snapshot {
	return domain.NewSnapshot(testRules(rules...))
}

func TestDispatchHappyPath(t *testing.T) {
	e := New()
	snap := snapshotOf(domain.Rule{
		FromState:   "start",
		Command:     domain.WildcardText,
		MessageText: "Enter address",
		ToState:     "await_address",
	})
	sess := domain.NewSession()

	res := e.Dispatch(context.Background(), snap, sess, domain.Event{ChatID: 7, Text: "hi"})

	assert.Equal(t, domain.OutcomeOK, res.Outcome)
	require.NotNil(t, res.Content)
	assert.Equal(t, "Enter address", res.Content.Text)
	assert.Equal(t, "await_address", res.Session.CurrentState)
	assert.Equal(t, "hi", res.Session.Payload["text"])

	// The input session is never mutated in place.
	assert.Equal(t, domain.StateStart, sess.CurrentState)
	assert.Empty(t, sess.Payload)
}

func TestDispatchUnmatchedLeavesSessionAlone(t *testing.T) {
	e := New()
	snap := snapshotOf(domain.Rule{
		FromState: "other", Command: "/go", MessageText: "x", ToState: "done",
	})
	sess := domain.NewSession()
	sess.Payload["kept"] = "value"

	res := e.Dispatch(context.Background(), snap, sess, domain.Event{ChatID: 1, Text: "/go"})

	assert.Equal(t, domain.OutcomeUnmatched, res.Outcome)
	assert.Nil(t, res.Content)
	assert.Same(t, sess, res.Session)
	assert.Equal(t, domain.StateStart, res.Session.CurrentState)
	assert.Equal(t, domain.Payload{"kept": "value"}, res.Session.Payload)
}

func TestDispatchGuardUsesPreEffectPayload(t *testing.T) {
	// Guard not_empty:name is false before save:name runs and would be true
	// after; pipeline order fixes evaluation on the pre-effect payload.
	e := New()
	snap := snapshotOf(domain.Rule{
		FromState: "start",
		Command:   domain.WildcardText,
		Condition: domain.ParseCondition("not_empty:name"),
		Actions:   domain.ParseActions("save:name:{text}"),
		ToState:   "named",
	})

	res := e.Dispatch(context.Background(), snap, domain.NewSession(), domain.Event{Text: "Ann"})

	assert.Equal(t, domain.OutcomeSkipped, res.Outcome,
		"guard must see the payload before effects run")
	assert.Equal(t, domain.StateStart, res.Session.CurrentState)
	_, saved := res.Session.Payload["name"]
	assert.False(t, saved, "skipped rules run no effects")
}

func TestDispatchContentUsesPostEffectPayload(t *testing.T) {
	e := New()
	snap := snapshotOf(domain.Rule{
		FromState:    "start",
		Command:      domain.WildcardText,
		Actions:      domain.ParseActions("save:name:{text}"),
		Notification: "Hi, {name}",
		ToState:      "named",
	})

	res := e.Dispatch(context.Background(), snap, domain.NewSession(), domain.Event{Text: "Ann"})

	assert.Equal(t, domain.OutcomeOK, res.Outcome)
	require.NotNil(t, res.Content)
	assert.Equal(t, "Hi, Ann", res.Content.Text)
	assert.Equal(t, "named", res.Session.CurrentState)
	assert.Equal(t, "Ann", res.Session.Payload["name"])
}

func TestDispatchSkipSuppressesTransition(t *testing.T) {
	e := New()
	snap := snapshotOf(domain.Rule{
		FromState:   "start",
		Command:     domain.WildcardText,
		Condition:   domain.ParseCondition("not_empty:address"),
		MessageText: "Need an address first",
		ToState:     "confirmed",
	})

	res := e.Dispatch(context.Background(), snap, domain.NewSession(), domain.Event{Text: "go"})

	assert.Equal(t, domain.OutcomeSkipped, res.Outcome)
	assert.Equal(t, domain.StateStart, res.Session.CurrentState)
	require.NotNil(t, res.Content, "content still renders on skip")
}

func TestDispatchEmptyToStateStays(t *testing.T) {
	e := New()
	snap := snapshotOf(domain.Rule{
		FromState:   "start",
		Command:     "/go",
		MessageText: "ok",
		ToState:     "",
	})

	res := e.Dispatch(context.Background(), snap, domain.NewSession(), domain.Event{Text: "/go"})
	assert.Equal(t, domain.OutcomeOK, res.Outcome)
	assert.Equal(t, domain.StateStart, res.Session.CurrentState, "empty to_state means stay")
}

func TestDispatchResetReinitializesSession(t *testing.T) {
	e := New()
	snap := snapshotOf(domain.Rule{
		FromState:   "start",
		Command:     "/reset",
		MessageText: "Back to square one",
		ToState:     "start",
	})
	sess := &domain.Session{
		CurrentState: "deep_state",
		Role:         "operator",
		Payload:      domain.Payload{"order": "123"},
	}

	res := e.Dispatch(context.Background(), snap, sess, domain.Event{Text: "/reset"})

	assert.Equal(t, domain.OutcomeOK, res.Outcome)
	assert.Equal(t, domain.StateStart, res.Session.CurrentState)
	assert.Equal(t, "operator", res.Session.Role, "role survives reset")
	_, ok := res.Session.Payload["order"]
	assert.False(t, ok, "reset drops accumulated payload")
	require.NotNil(t, res.Content)
	assert.Equal(t, "Back to square one", res.Content.Text)
}

func TestDispatchResetCommitsEvenWithoutRule(t *testing.T) {
	e := New()
	snap := snapshotOf(domain.Rule{
		FromState: "start", Command: "/other", MessageText: "x",
	})
	sess := &domain.Session{CurrentState: "deep_state", Role: domain.DefaultRole, Payload: domain.Payload{}}

	res := e.Dispatch(context.Background(), snap, sess, domain.Event{Text: "/reset"})

	assert.Equal(t, domain.OutcomeOK, res.Outcome)
	assert.Equal(t, domain.StateStart, res.Session.CurrentState)
	assert.Nil(t, res.Content)
}

func TestDispatchNotificationsReturnedNotSent(t *testing.T) {
	e := New()
	snap := snapshotOf(domain.Rule{
		FromState:   "start",
		Command:     domain.WildcardText,
		Actions:     domain.ParseActions("save:name:{text}|notify_user_by_chat_id:99:order from {name}"),
		MessageText: "Thanks",
		ToState:     "done",
	})

	res := e.Dispatch(context.Background(), snap, domain.NewSession(), domain.Event{ChatID: 5, Text: "Ann"})

	require.Len(t, res.Notifications, 1)
	assert.Equal(t, int64(99), res.Notifications[0].ChatID)
	assert.Equal(t, "order from Ann", res.Notifications[0].Text)
}

func TestDispatchLocationEvent(t *testing.T) {
	e := New()
	snap := snapshotOf(domain.Rule{
		FromState:   "await_location",
		Command:     domain.WildcardLocation,
		Actions:     domain.ParseActions("geocode_location"),
		MessageText: "Got it: {address}",
		ToState:     "confirm",
	})
	sess := &domain.Session{CurrentState: "await_location", Role: domain.DefaultRole, Payload: domain.Payload{}}

	res := e.Dispatch(context.Background(), snap, sess, domain.Event{
		ChatID:   3,
		Location: &domain.Location{Latitude: 55.75, Longitude: 37.61},
	})

	assert.Equal(t, domain.OutcomeOK, res.Outcome)
	require.NotNil(t, res.Content)
	// No geocoder configured: fallback to raw coordinates.
	assert.Equal(t, "Got it: Coordinates: 55.75, 37.61", res.Content.Text)
	assert.Equal(t, "confirm", res.Session.CurrentState)
}

func TestDispatchEmitsHooks(t *testing.T) {
	var got *domain.DispatchEvent
	e := New(WithHooks(domain.Hooks{
		OnDispatch: func(_ context.Context, evt *domain.DispatchEvent) { got = evt },
	}))
	snap := snapshotOf(domain.Rule{
		FromState: "start", Command: "/go", MessageText: "ok", ToState: "done",
	})

	e.Dispatch(context.Background(), snap, domain.NewSession(), domain.Event{ChatID: 11, Text: "/go"})

	require.NotNil(t, got)
	assert.Equal(t, int64(11), got.ChatID)
	assert.Equal(t, domain.OutcomeOK, got.Outcome)
	assert.Equal(t, domain.StateStart, got.FromState)
	assert.Equal(t, "done", got.ToState)
	assert.Equal(t, 0, got.RuleIndex)
}

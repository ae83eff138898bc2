package domain

// Outcome classifies how a dispatch ended. Unmatched and error outcomes are
// both safe terminal-for-this-event results that leave session state alone.
type Outcome string

const (
	// OutcomeOK means a rule fired (effects ran unless the guard skipped).
	OutcomeOK Outcome = "ok"
	// OutcomeSkipped means a rule matched but its guard suppressed the
	// effect and transition.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeUnmatched means no rule matched; unrecognized input, not an
	// error.
	OutcomeUnmatched Outcome = "unmatched"
	// OutcomeError means an unexpected internal failure; the session keeps
	// its last committed state.
	OutcomeError Outcome = "error"
)

// Result is everything one dispatch produced: the content to deliver, the
// side-channel notifications to forward, and the session to persist.
type Result struct {
	Outcome       Outcome
	Content       *Content
	Notifications []Notification

	// Session is the post-dispatch session. For unmatched and error
	// outcomes it is the untouched input session.
	Session *Session

	// Rule is the matched rule, nil when Outcome is unmatched or error.
	Rule *Rule
}

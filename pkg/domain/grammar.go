package domain

import (
	"strconv"
	"strings"
)

// ConditionKind enumerates the guard predicate grammar. Unknown predicates
// are kept as CondUnknown (fail-open at evaluation time); predicates that
// failed to parse become CondInvalid (fail-closed).
type ConditionKind int

const (
	CondNone ConditionKind = iota
	CondNotEmpty
	CondEquals
	CondRole
	CondMinLength
	CondHasLocation
	CondUnknown
	CondInvalid
)

// Condition is a parsed guard expression. The zero value is CondNone,
// meaning "never skip".
type Condition struct {
	Kind  ConditionKind
	Field string
	Value string
	Min   int

	// Raw keeps the original expression for diagnostics.
	Raw string
}

// ParseCondition parses a guard expression from the table's condition
// column. Absent or placeholder values yield CondNone.
func ParseCondition(raw string) Condition {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == Absent {
		return Condition{}
	}

	c := Condition{Raw: raw}
	switch {
	case strings.HasPrefix(raw, "not_empty:"):
		c.Kind = CondNotEmpty
		c.Field = raw[len("not_empty:"):]
		if c.Field == "" {
			c.Kind = CondInvalid
		}
	case strings.HasPrefix(raw, "equals:"):
		parts := strings.SplitN(raw[len("equals:"):], ":", 2)
		if len(parts) != 2 || parts[0] == "" {
			c.Kind = CondInvalid
			break
		}
		c.Kind = CondEquals
		c.Field = parts[0]
		c.Value = parts[1]
	case strings.HasPrefix(raw, "role:"):
		c.Kind = CondRole
		c.Value = raw[len("role:"):]
		if c.Value == "" {
			c.Kind = CondInvalid
		}
	case strings.HasPrefix(raw, "length>"):
		// length><n>:<field>
		parts := strings.SplitN(raw[len("length>"):], ":", 2)
		if len(parts) != 2 || parts[1] == "" {
			c.Kind = CondInvalid
			break
		}
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			c.Kind = CondInvalid
			break
		}
		c.Kind = CondMinLength
		c.Min = n
		c.Field = parts[1]
	case raw == "has_location":
		c.Kind = CondHasLocation
	default:
		c.Kind = CondUnknown
	}
	return c
}

// ActionKind enumerates the effect grammar.
type ActionKind int

const (
	ActionSave ActionKind = iota
	ActionClear
	ActionNotify
	ActionGeocode
	// ActionMarker covers domain-tagged no-op hooks (notify_operator,
	// assign_executor, order_done, ...) that are recorded but carry no
	// built-in behavior.
	ActionMarker
	ActionUnknown
)

// markerActions are accepted as integration hooks for external systems.
var markerActions = map[string]struct{}{
	"request_location": {},
	"notify_operator":  {},
	"notify_executor":  {},
	"notify_client":    {},
	"assign_executor":  {},
	"order_done":       {},
	"order_cancelled":  {},
}

// Action is one parsed token of the pipe-separated result_action column.
type Action struct {
	Kind         ActionKind
	Field        string
	Template     string
	TargetChatID int64

	Raw string
}

// ParseActions splits the result_action column into its ordered action list.
// Unknown tokens are kept (and later logged and ignored) so a partially
// authored table still dispatches.
func ParseActions(raw string) []Action {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == Absent {
		return nil
	}

	var actions []Action
	for _, tok := range strings.Split(raw, "|") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		actions = append(actions, parseAction(tok))
	}
	return actions
}

func parseAction(tok string) Action {
	a := Action{Raw: tok}
	switch {
	case strings.HasPrefix(tok, "save:"):
		parts := strings.SplitN(tok[len("save:"):], ":", 2)
		if len(parts) != 2 || parts[0] == "" {
			a.Kind = ActionUnknown
			break
		}
		a.Kind = ActionSave
		a.Field = parts[0]
		a.Template = parts[1]
	case strings.HasPrefix(tok, "clear:"):
		a.Kind = ActionClear
		a.Field = tok[len("clear:"):]
		if a.Field == "" {
			a.Kind = ActionUnknown
		}
	case strings.HasPrefix(tok, "notify_user_by_chat_id:"):
		parts := strings.SplitN(tok[len("notify_user_by_chat_id:"):], ":", 2)
		if len(parts) != 2 {
			a.Kind = ActionUnknown
			break
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			a.Kind = ActionUnknown
			break
		}
		a.Kind = ActionNotify
		a.TargetChatID = id
		a.Template = parts[1]
	case tok == "geocode_location":
		a.Kind = ActionGeocode
	default:
		if _, ok := markerActions[tok]; ok {
			a.Kind = ActionMarker
			break
		}
		a.Kind = ActionUnknown
	}
	return a
}

// ProgressKind enumerates the progress_config directive grammar.
type ProgressKind int

const (
	ProgressDisabled ProgressKind = iota
	ProgressManual
	ProgressTrack
	ProgressBar
	ProgressInvalid
)

// ProgressPart is one parsed part of the pipe-separated progress_config
// column.
type ProgressPart struct {
	Kind    ProgressKind
	Field   string
	Current int
	Total   int

	Raw string
}

// ParseProgress parses the progress_config column. Malformed parts are kept
// as ProgressInvalid so the builder can log them and contribute no text.
func ParseProgress(raw string) []ProgressPart {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == Absent {
		return nil
	}

	var parts []ProgressPart
	for _, tok := range strings.Split(raw, "|") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		parts = append(parts, parseProgressPart(tok))
	}
	return parts
}

func parseProgressPart(tok string) ProgressPart {
	p := ProgressPart{Raw: tok}
	switch {
	case tok == "disabled":
		p.Kind = ProgressDisabled
	case strings.HasPrefix(tok, "manual:"):
		cur, total, ok := strings.Cut(tok[len("manual:"):], "/")
		if !ok {
			p.Kind = ProgressInvalid
			break
		}
		c, err1 := strconv.Atoi(cur)
		t, err2 := strconv.Atoi(total)
		if err1 != nil || err2 != nil {
			p.Kind = ProgressInvalid
			break
		}
		p.Kind = ProgressManual
		p.Current = c
		p.Total = t
	case strings.HasPrefix(tok, "track:"):
		p.Kind = ProgressTrack
		p.Field = tok[len("track:"):]
		if p.Field == "" {
			p.Kind = ProgressInvalid
		}
	case strings.HasPrefix(tok, "bar:"):
		p.Kind = ProgressBar
		p.Field = tok[len("bar:"):]
		if p.Field == "" {
			p.Kind = ProgressInvalid
		}
	default:
		p.Kind = ProgressInvalid
	}
	return p
}

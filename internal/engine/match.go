package engine

import (
	"strings"

	"github.com/leonidyasin/tablebot/pkg/domain"
)

// match selects the rule for (state, role, event). Every satisfying rule is
// recorded for diagnosability, but the first one in table order wins — table
// order is the authoring contract, reordering rows changes bot behavior.
func (e *Engine) match(rules []domain.Rule, state, role string, ev domain.Event) *domain.Rule {
	var first *domain.Rule
	var matched []int

	for i := range rules {
		r := &rules[i]
		if !r.Valid() || !matches(r, state, role, ev) {
			continue
		}
		matched = append(matched, r.Index)
		if first == nil {
			first = r
		}
	}

	if first == nil {
		e.logger.Debug("no rule matched", "state", state, "text", ev.Text)
		return nil
	}
	if len(matched) > 1 {
		e.logger.Debug("duplicate rule match, first wins", "state", state, "text", ev.Text, "rows", matched)
	}
	e.logger.Debug("rule matched", "row", first.Index, "state", state, "command", first.Command)
	return first
}

func matches(r *domain.Rule, state, role string, ev domain.Event) bool {
	if r.FromState != state && r.FromState != domain.AnyState {
		return false
	}
	if r.Role != "" && r.Role != domain.AnyRole && r.Role != role {
		return false
	}
	switch r.Command {
	case ev.Text:
		return true
	case domain.WildcardText:
		return !strings.HasPrefix(ev.Text, domain.CommandPrefix)
	case domain.WildcardLocation:
		return ev.Location != nil
	}
	return false
}

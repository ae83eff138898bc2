package engine

import "github.com/leonidyasin/tablebot/pkg/domain"

// resolveTransition computes the next state for a matched rule. An empty
// result means "no transition". Validity of the target against the state set
// is the dispatcher's concern.
func resolveTransition(rule *domain.Rule, skip bool) string {
	if rule == nil || skip {
		return ""
	}
	return rule.ToState
}

package engine

import (
	"github.com/leonidyasin/tablebot/pkg/domain"
)

// evaluateGuard decides whether the rule's effect and transition are skipped.
// Unknown predicates fail open (do not skip); predicates that failed to parse
// fail closed (skip), to avoid running effects on malformed configuration.
func (e *Engine) evaluateGuard(cond domain.Condition, payload domain.Payload, role string) bool {
	switch cond.Kind {
	case domain.CondNone:
		return false

	case domain.CondNotEmpty:
		skip := domain.Blank(payload[cond.Field])
		e.logger.Debug("guard not_empty", "field", cond.Field, "skip", skip)
		return skip

	case domain.CondEquals:
		return domain.Stringify(payload[cond.Field]) != cond.Value

	case domain.CondRole:
		return role != cond.Value

	case domain.CondMinLength:
		return len([]rune(domain.Stringify(payload[cond.Field]))) <= cond.Min

	case domain.CondHasLocation:
		_, ok := domain.AsLocation(payload["location"])
		return !ok

	case domain.CondInvalid:
		e.logger.Warn("malformed guard, skipping rule", "condition", cond.Raw)
		return true

	default:
		e.logger.Warn("unknown guard predicate, allowing", "condition", cond.Raw)
		return false
	}
}

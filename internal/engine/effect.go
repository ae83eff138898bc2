package engine

import (
	"context"
	"fmt"

	"github.com/leonidyasin/tablebot/pkg/domain"
)

// executeActions runs the rule's ordered action list against the payload and
// collects notification requests. Actions never abort the dispatch: each one
// is isolated, an internal failure is logged and the payload keeps the
// mutations of the actions that already ran.
func (e *Engine) executeActions(ctx context.Context, rule *domain.Rule, payload domain.Payload) []domain.Notification {
	var notifications []domain.Notification
	for _, action := range rule.Actions {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("action failed", "action", action.Raw, "err", r)
				}
			}()
			if n := e.executeAction(ctx, action, payload); n != nil {
				notifications = append(notifications, *n)
			}
		}()
	}
	return notifications
}

func (e *Engine) executeAction(ctx context.Context, action domain.Action, payload domain.Payload) *domain.Notification {
	switch action.Kind {
	case domain.ActionSave:
		e.save(action, payload)

	case domain.ActionClear:
		delete(payload, action.Field)
		e.logger.Debug("cleared field", "field", action.Field)

	case domain.ActionNotify:
		text := substitute(action.Template, payload, false)
		e.logger.Debug("notification requested", "target", action.TargetChatID)
		return &domain.Notification{ChatID: action.TargetChatID, Text: text}

	case domain.ActionGeocode:
		e.geocode(ctx, payload)

	case domain.ActionMarker:
		// Integration hook: recorded for external systems, no built-in
		// behavior.
		e.logger.Info("integration marker", "action", action.Raw)

	default:
		e.logger.Warn("unknown action, ignoring", "action", action.Raw)
	}
	return nil
}

// save resolves the template against the payload and stores the result. A
// location field saved onto itself keeps the structured value instead of
// collapsing to a string.
func (e *Engine) save(action domain.Action, payload domain.Payload) {
	if loc, ok := domain.AsLocation(payload[action.Field]); ok && action.Field == "location" {
		payload[action.Field] = loc
		e.logger.Debug("kept structured location", "field", action.Field)
		return
	}
	value := substitute(action.Template, payload, false)
	payload[action.Field] = value
	e.logger.Debug("saved field", "field", action.Field, "value", value)
}

// geocode resolves the payload's location to an address, falling back to raw
// coordinates on any failure. The result lands in both address and
// from_address.
func (e *Engine) geocode(ctx context.Context, payload domain.Payload) {
	loc, ok := domain.AsLocation(payload["location"])
	if !ok {
		e.logger.Debug("geocode_location without location, skipping")
		return
	}

	address := fmt.Sprintf("Coordinates: %s", loc)
	if e.geocoder != nil {
		gctx, cancel := context.WithTimeout(ctx, e.geocodeTimeout)
		defer cancel()
		resolved, err := e.geocoder.ReverseGeocode(gctx, loc.Latitude, loc.Longitude)
		if err != nil {
			e.logger.Warn("reverse geocoding failed, using coordinates", "err", err)
		} else if resolved != "" {
			address = resolved
		}
	}

	payload["address"] = address
	payload["from_address"] = address
	e.logger.Debug("geocoded location", "address", address)
}

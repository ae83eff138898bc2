package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultRole is the baseline role assigned to new sessions.
const DefaultRole = "client"

// Payload is the per-session key/value state mutated by effects and read by
// guards and templates. Values are scalars or structured values such as a
// Location; everything used in templating must be stringifiable.
type Payload map[string]any

// Clone returns a copy of the payload. Values are copied by assignment,
// which is enough because the engine only stores immutable scalars and
// Location values.
func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Location is a structured payload value carrying a geographic point.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String renders the location the way templates expand a bare {location}
// placeholder.
func (l Location) String() string {
	return formatCoord(l.Latitude) + ", " + formatCoord(l.Longitude)
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// AsLocation extracts a Location from a payload value. It accepts both the
// native Location type and the map shape that JSON persistence produces.
func AsLocation(v any) (Location, bool) {
	switch loc := v.(type) {
	case Location:
		return loc, true
	case *Location:
		if loc == nil {
			return Location{}, false
		}
		return *loc, true
	case map[string]any:
		lat, ok1 := asFloat(loc["latitude"])
		lon, ok2 := asFloat(loc["longitude"])
		if !ok1 || !ok2 {
			return Location{}, false
		}
		return Location{Latitude: lat, Longitude: lon}, true
	}
	return Location{}, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// Stringify renders a payload value for templating and guard comparison.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case Location:
		return val.String()
	case *Location:
		if val == nil {
			return ""
		}
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case map[string]any:
		if loc, ok := AsLocation(val); ok {
			return loc.String()
		}
		return fmt.Sprint(val)
	default:
		return fmt.Sprint(val)
	}
}

// Blank reports whether a payload value is absent for guard purposes.
func Blank(v any) bool {
	return strings.TrimSpace(Stringify(v)) == ""
}

// Session is the per-chat conversation state: the current position in the
// rule table's state space plus the accumulated payload.
type Session struct {
	CurrentState string  `json:"current_state"`
	Role         string  `json:"role"`
	Payload      Payload `json:"payload"`
}

// NewSession creates a session positioned at the start state.
func NewSession() *Session {
	return &Session{
		CurrentState: StateStart,
		Role:         DefaultRole,
		Payload:      Payload{},
	}
}

// Clone returns an independent copy safe for speculative mutation.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Payload = s.Payload.Clone()
	return &out
}

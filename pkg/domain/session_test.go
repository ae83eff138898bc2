package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"int", 42, "42"},
		{"int64", int64(7), "7"},
		{"float", 3.5, "3.5"},
		{"float no trailing zeros", 55.75, "55.75"},
		{"bool", true, "true"},
		{"location", Location{Latitude: 55.75, Longitude: 37.61}, "55.75, 37.61"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.in))
		})
	}
}

func TestAsLocationFromMap(t *testing.T) {
	// The shape JSON persistence produces.
	raw := map[string]any{"latitude": 55.75, "longitude": 37.61}

	loc, ok := AsLocation(raw)
	require.True(t, ok)
	assert.Equal(t, Location{Latitude: 55.75, Longitude: 37.61}, loc)

	_, ok = AsLocation(map[string]any{"latitude": 1.0})
	assert.False(t, ok)
	_, ok = AsLocation("55.75, 37.61")
	assert.False(t, ok)
}

func TestLocationJSONRoundTrip(t *testing.T) {
	sess := NewSession()
	sess.Payload["location"] = Location{Latitude: 55.75, Longitude: 37.61}

	raw, err := json.Marshal(sess)
	require.NoError(t, err)

	var back Session
	require.NoError(t, json.Unmarshal(raw, &back))

	loc, ok := AsLocation(back.Payload["location"])
	require.True(t, ok)
	assert.InDelta(t, 55.75, loc.Latitude, 1e-9)
	assert.InDelta(t, 37.61, loc.Longitude, 1e-9)
}

func TestSessionClone(t *testing.T) {
	sess := NewSession()
	sess.Payload["name"] = "Ann"

	clone := sess.Clone()
	clone.CurrentState = "elsewhere"
	clone.Payload["name"] = "Bob"
	clone.Payload["extra"] = 1

	assert.Equal(t, StateStart, sess.CurrentState)
	assert.Equal(t, "Ann", sess.Payload["name"])
	_, ok := sess.Payload["extra"]
	assert.False(t, ok)
}

func TestBlank(t *testing.T) {
	assert.True(t, Blank(nil))
	assert.True(t, Blank(""))
	assert.True(t, Blank("   "))
	assert.False(t, Blank("x"))
	assert.False(t, Blank(0), "numeric zero is a value, not blank")
}

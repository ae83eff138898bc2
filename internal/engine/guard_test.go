package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leonidyasin/tablebot/pkg/domain"
)

func TestGuardNotEmpty(t *testing.T) {
	e := New()
	cond := domain.ParseCondition("not_empty:address")

	tests := []struct {
		name    string
		payload domain.Payload
		skip    bool
	}{
		{"absent", domain.Payload{}, true},
		{"blank", domain.Payload{"address": "  "}, true},
		{"present", domain.Payload{"address": "Main St 1"}, false},
		{"independent of other fields", domain.Payload{"address": "x", "noise": "y"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.skip, e.evaluateGuard(cond, tt.payload, domain.DefaultRole))
		})
	}
}

func TestGuardEquals(t *testing.T) {
	e := New()
	cond := domain.ParseCondition("equals:status:done")

	assert.False(t, e.evaluateGuard(cond, domain.Payload{"status": "done"}, ""))
	assert.True(t, e.evaluateGuard(cond, domain.Payload{"status": "open"}, ""))
	assert.True(t, e.evaluateGuard(cond, domain.Payload{}, ""))
}

func TestGuardRole(t *testing.T) {
	e := New()
	cond := domain.ParseCondition("role:operator")

	assert.False(t, e.evaluateGuard(cond, domain.Payload{}, "operator"))
	assert.True(t, e.evaluateGuard(cond, domain.Payload{}, "client"))
}

func TestGuardMinLength(t *testing.T) {
	e := New()
	cond := domain.ParseCondition("length>3:comment")

	assert.True(t, e.evaluateGuard(cond, domain.Payload{"comment": "abc"}, ""))
	assert.False(t, e.evaluateGuard(cond, domain.Payload{"comment": "abcd"}, ""))
	assert.True(t, e.evaluateGuard(cond, domain.Payload{}, ""))
}

func TestGuardHasLocation(t *testing.T) {
	e := New()
	cond := domain.ParseCondition("has_location")

	assert.True(t, e.evaluateGuard(cond, domain.Payload{}, ""))
	assert.False(t, e.evaluateGuard(cond, domain.Payload{
		"location": domain.Location{Latitude: 1, Longitude: 2},
	}, ""))
}

func TestGuardAbsentNeverSkips(t *testing.T) {
	e := New()
	assert.False(t, e.evaluateGuard(domain.ParseCondition(""), domain.Payload{}, ""))
	assert.False(t, e.evaluateGuard(domain.ParseCondition(domain.Absent), domain.Payload{}, ""))
}

func TestGuardUnknownFailsOpen(t *testing.T) {
	e := New()
	cond := domain.ParseCondition("sorcery:whatever")
	assert.Equal(t, domain.CondUnknown, cond.Kind)
	assert.False(t, e.evaluateGuard(cond, domain.Payload{}, ""))
}

func TestGuardMalformedFailsClosed(t *testing.T) {
	e := New()
	cond := domain.ParseCondition("length>abc:field")
	assert.Equal(t, domain.CondInvalid, cond.Kind)
	assert.True(t, e.evaluateGuard(cond, domain.Payload{"field": "value"}, ""))
}

package domain

import "strings"

// Snapshot is an immutable view of a loaded rule table. Dispatches share one
// snapshot concurrently; reload replaces the whole snapshot, never mutates
// it in place.
type Snapshot struct {
	rules    []Rule
	states   map[string]struct{}
	commands []MenuCommand
}

// NewSnapshot builds a snapshot from loaded rules, discovering the state set
// and the command menu. Rules keep their table order.
func NewSnapshot(rules []Rule) *Snapshot {
	s := &Snapshot{
		rules:  rules,
		states: map[string]struct{}{StateStart: {}},
	}
	for _, r := range rules {
		if r.FromState != "" && r.FromState != AnyState {
			s.states[r.FromState] = struct{}{}
		}
		if r.ToState != "" {
			s.states[r.ToState] = struct{}{}
		}

		cmd := strings.TrimSpace(r.BotCommand)
		desc := strings.TrimSpace(r.BotDescription)
		if cmd == "" || desc == "" || !strings.HasPrefix(cmd, CommandPrefix) {
			continue
		}
		s.commands = append(s.commands, MenuCommand{
			Command:     strings.TrimPrefix(cmd, CommandPrefix),
			Description: desc,
		})
	}
	return s
}

// Rules returns the rules in table order. Callers must not modify the slice.
func (s *Snapshot) Rules() []Rule {
	return s.rules
}

// HasState reports whether name is part of the discovered state space.
func (s *Snapshot) HasState(name string) bool {
	_, ok := s.states[name]
	return ok
}

// States returns the discovered state set, including the start state.
func (s *Snapshot) States() []string {
	out := make([]string, 0, len(s.states))
	for name := range s.states {
		out = append(out, name)
	}
	return out
}

// Commands returns the bot command menu derived from the table.
func (s *Snapshot) Commands() []MenuCommand {
	return s.commands
}

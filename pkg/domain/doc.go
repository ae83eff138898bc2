// Package domain holds the core types of the tablebot engine: rules loaded
// from the configuration table, per-chat session state, inbound events and
// the platform-agnostic description of outbound content.
//
// Types here carry no behavior beyond construction and accessors; the
// decision logic lives in internal/engine.
package domain

// Package engine implements the rule dispatch pipeline: row matching, guard
// evaluation, effect execution, content building and transition resolution.
//
// The engine is stateless between calls. Dispatch receives an immutable
// table snapshot and the current session, and returns the rendered content,
// requested notifications and the session to persist. It never talks to the
// transport; delivery is the host's job.
package engine

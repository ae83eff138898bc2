package domain

// Event is one inbound trigger: a chat message, a button callback replayed
// as text, or a shared location.
type Event struct {
	ChatID   int64
	Text     string
	Location *Location
}

// Notification is a cross-session outbound message requested by an effect.
// It is returned from dispatch for the host to deliver; the engine never
// talks to the transport directly.
type Notification struct {
	ChatID int64
	Text   string
}

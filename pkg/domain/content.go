package domain

// ContentKind classifies the outbound message for the transport layer.
type ContentKind string

const (
	KindText            ContentKind = "text"
	KindPhoto           ContentKind = "photo"
	KindDocument        ContentKind = "document"
	KindVideo           ContentKind = "video"
	KindAudio           ContentKind = "audio"
	KindPoll            ContentKind = "poll"
	KindLocationRequest ContentKind = "location_request"
)

// Content is the engine's platform-agnostic description of an outbound
// message. The transport decides how to deliver it (keyboards, media upload
// vs URL, parse mode).
type Content struct {
	Kind    ContentKind
	Text    string
	Caption string

	// MediaFile is a local path or URL; Kind is inferred from its extension.
	MediaFile string

	// ReplyButtons / InlineButtons carry the raw button specs from the
	// table; the transport parses them into platform keyboards.
	ReplyButtons  string
	InlineButtons string

	PollOptions []string

	// IntegrationTag is passed through from the rule's integrations column
	// for the transport or host to act on.
	IntegrationTag string
}

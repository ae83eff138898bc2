package ports

import (
	"context"

	"github.com/leonidyasin/tablebot/pkg/domain"
)

// Transport delivers rendered content to a chat platform. It owns every
// platform-specific concern: keyboards, media upload vs URL reference and
// parse-mode detection.
type Transport interface {
	// Send delivers a content description to the target chat.
	Send(ctx context.Context, chatID int64, content *domain.Content) error

	// SendText delivers a plain text message, used for notifications and
	// fixed service replies.
	SendText(ctx context.Context, chatID int64, text string) error
}

// CommandRegistry registers the bot command menu derived from the table.
type CommandRegistry interface {
	RegisterCommands(ctx context.Context, commands []domain.MenuCommand) error
}

// EventHandler consumes inbound events produced by a transport listener.
type EventHandler func(ctx context.Context, ev domain.Event)

// Listener is implemented by transports that can produce inbound events
// (long polling, webhooks).
type Listener interface {
	// Listen blocks delivering events to the handler until ctx is done.
	Listen(ctx context.Context, handler EventHandler) error
}

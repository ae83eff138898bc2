// Package telegram delivers rendered content through the Telegram Bot API
// and feeds inbound messages, callbacks and locations to the dispatcher.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/leonidyasin/tablebot/internal/logging"
	"github.com/leonidyasin/tablebot/pkg/domain"
)

// Adapter implements ports.Transport, ports.CommandRegistry and
// ports.Listener on the Telegram Bot API.
type Adapter struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New authenticates against the Bot API with the given token.
func New(token string, opts ...Option) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return NewFromBot(bot, opts...), nil
}

// NewFromBot wraps an existing bot client.
func NewFromBot(bot *tgbotapi.BotAPI, opts ...Option) *Adapter {
	a := &Adapter{
		bot:    bot,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Send delivers content to a chat, choosing the message type from the
// content kind.
func (a *Adapter) Send(ctx context.Context, chatID int64, content *domain.Content) error {
	if content == nil {
		return nil
	}
	msg, err := a.build(chatID, content)
	if err != nil {
		return err
	}
	if _, err := a.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send to %d: %w", chatID, err)
	}
	return nil
}

// SendText delivers a plain text message without keyboards or formatting.
func (a *Adapter) SendText(ctx context.Context, chatID int64, text string) error {
	if text == "" {
		return nil
	}
	if _, err := a.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram send to %d: %w", chatID, err)
	}
	return nil
}

func (a *Adapter) build(chatID int64, content *domain.Content) (tgbotapi.Chattable, error) {
	switch content.Kind {
	case domain.KindText, "":
		msg := tgbotapi.NewMessage(chatID, content.Text)
		msg.ParseMode = parseMode(content.Text)
		msg.ReplyMarkup = a.markup(content)
		return msg, nil

	case domain.KindLocationRequest:
		msg := tgbotapi.NewMessage(chatID, content.Text)
		msg.ParseMode = parseMode(content.Text)
		msg.ReplyMarkup = locationKeyboard()
		return msg, nil

	case domain.KindPoll:
		if len(content.PollOptions) < 2 {
			return nil, fmt.Errorf("poll for %d needs at least two options", chatID)
		}
		return tgbotapi.NewPoll(chatID, content.Text, content.PollOptions...), nil

	case domain.KindPhoto:
		msg := tgbotapi.NewPhoto(chatID, mediaFile(content.MediaFile))
		msg.Caption = content.Caption
		msg.ReplyMarkup = a.markup(content)
		return msg, nil

	case domain.KindVideo:
		msg := tgbotapi.NewVideo(chatID, mediaFile(content.MediaFile))
		msg.Caption = content.Caption
		msg.ReplyMarkup = a.markup(content)
		return msg, nil

	case domain.KindDocument:
		msg := tgbotapi.NewDocument(chatID, mediaFile(content.MediaFile))
		msg.Caption = content.Caption
		msg.ReplyMarkup = a.markup(content)
		return msg, nil

	case domain.KindAudio:
		msg := tgbotapi.NewAudio(chatID, mediaFile(content.MediaFile))
		msg.Caption = content.Caption
		msg.ReplyMarkup = a.markup(content)
		return msg, nil

	default:
		return nil, fmt.Errorf("unsupported content kind %q", content.Kind)
	}
}

// markup picks the keyboard for a message. Inline buttons win over reply
// buttons when a rule sets both.
func (a *Adapter) markup(content *domain.Content) any {
	if kb := inlineKeyboard(content.InlineButtons); kb != nil {
		return kb
	}
	if kb := replyKeyboard(content.ReplyButtons); kb != nil {
		return kb
	}
	return nil
}

func mediaFile(ref string) tgbotapi.RequestFileData {
	if isURL(ref) {
		return tgbotapi.FileURL(ref)
	}
	return tgbotapi.FilePath(ref)
}

// RegisterCommands publishes the bot command menu derived from the table.
func (a *Adapter) RegisterCommands(ctx context.Context, commands []domain.MenuCommand) error {
	if len(commands) == 0 {
		return nil
	}
	list := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, c := range commands {
		list = append(list, tgbotapi.BotCommand{
			Command:     c.Command,
			Description: c.Description,
		})
	}
	if _, err := a.bot.Request(tgbotapi.NewSetMyCommands(list...)); err != nil {
		return fmt.Errorf("register command menu: %w", err)
	}
	a.logger.Info("command menu registered", "commands", len(list))
	return nil
}

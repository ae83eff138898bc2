package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/leonidyasin/tablebot/pkg/domain"
	"github.com/leonidyasin/tablebot/pkg/ports"
)

// pollTimeout is the long-poll timeout in seconds.
const pollTimeout = 60

// Listen long-polls for updates and feeds them to the handler until ctx
// is done. Button callbacks are replayed as text events carrying the
// callback data, so table rules match them like typed commands.
//
// Updates are dispatched through per-chat serial queues: one chat's
// events stay ordered, while chats run concurrently.
func (a *Adapter) Listen(ctx context.Context, handler ports.EventHandler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := a.bot.GetUpdatesChan(u)
	queue := newEventQueue(handler)

	for {
		select {
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			queue.stop()
			return ctx.Err()

		case update, ok := <-updates:
			if !ok {
				queue.stop()
				return nil
			}
			ev, ok := a.toEvent(ctx, update)
			if !ok {
				continue
			}
			queue.dispatch(ctx, ev)
		}
	}
}

func (a *Adapter) toEvent(ctx context.Context, update tgbotapi.Update) (domain.Event, bool) {
	if cb := update.CallbackQuery; cb != nil {
		// Acknowledge so the client stops its spinner.
		if _, err := a.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			a.logger.Warn("callback ack failed", "err", err)
		}
		if cb.Message == nil {
			return domain.Event{}, false
		}
		return domain.Event{
			ChatID: cb.Message.Chat.ID,
			Text:   cb.Data,
		}, true
	}

	msg := update.Message
	if msg == nil {
		return domain.Event{}, false
	}

	ev := domain.Event{
		ChatID: msg.Chat.ID,
		Text:   msg.Text,
	}
	if msg.Location != nil {
		ev.Location = &domain.Location{
			Latitude:  msg.Location.Latitude,
			Longitude: msg.Location.Longitude,
		}
	}
	return ev, true
}

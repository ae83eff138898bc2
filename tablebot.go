package tablebot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/leonidyasin/tablebot/internal/engine"
	"github.com/leonidyasin/tablebot/internal/logging"
	"github.com/leonidyasin/tablebot/pkg/domain"
	"github.com/leonidyasin/tablebot/pkg/ports"
	"github.com/leonidyasin/tablebot/pkg/session"
)

// Fixed service replies for inputs the table does not cover and for
// internal failures.
const (
	MsgUnrecognized    = "Command not recognized"
	MsgProcessingError = "Processing error"
)

// reloadCommand re-reads the table and re-registers the command menu.
const reloadCommand = "/reload_menu"

const defaultNotifyTimeout = 10 * time.Second

// Bot wires the rule source, session manager, dispatch engine and
// transport into a running conversational bot.
type Bot struct {
	source    ports.RuleSource
	sessions  *session.Manager
	engine    *engine.Engine
	transport ports.Transport
	registry  ports.CommandRegistry

	hooks         domain.Hooks
	notifyTimeout time.Duration
	logger        *slog.Logger

	// reloadHooked is set when the source reports reloads itself, so
	// manual Reload does not emit the hook a second time.
	reloadHooked bool

	// Collected by options, consumed once in New.
	geocoder       ports.Geocoder
	geocodeTimeout time.Duration
	locker         ports.DistributedLocker
}

// Option configures the Bot.
type Option func(*Bot)

// WithLogger sets the structured logger shared by the bot and its engine.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithGeocoder enables the geocode_location action.
func WithGeocoder(g ports.Geocoder) Option {
	return func(b *Bot) {
		b.geocoder = g
	}
}

// WithGeocodeTimeout bounds one reverse-geocode call.
func WithGeocodeTimeout(d time.Duration) Option {
	return func(b *Bot) {
		b.geocodeTimeout = d
	}
}

// WithLocker serializes sessions across instances sharing one store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(b *Bot) {
		b.locker = locker
	}
}

// WithHooks registers observability callbacks for dispatches, reloads and
// notifications.
func WithHooks(hooks domain.Hooks) Option {
	return func(b *Bot) {
		b.hooks = hooks
	}
}

// WithCommandRegistry sets the registry used to publish the command menu.
// The Telegram adapter implements it; RegisterMenu is a no-op without one.
func WithCommandRegistry(r ports.CommandRegistry) Option {
	return func(b *Bot) {
		b.registry = r
	}
}

// WithNotifyTimeout bounds delivering one cross-chat notification.
func WithNotifyTimeout(d time.Duration) Option {
	return func(b *Bot) {
		if d > 0 {
			b.notifyTimeout = d
		}
	}
}

// New assembles a Bot from a rule source, a session store and a transport.
func New(source ports.RuleSource, store ports.SessionStore, transport ports.Transport, opts ...Option) *Bot {
	b := &Bot{
		source:        source,
		transport:     transport,
		notifyTimeout: defaultNotifyTimeout,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	sessionOpts := []session.Option{session.WithLogger(b.logger)}
	if b.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(b.locker))
	}
	b.sessions = session.NewManager(store, sessionOpts...)

	engineOpts := []engine.Option{
		engine.WithLogger(b.logger),
		engine.WithHooks(b.hooks),
	}
	if b.geocoder != nil {
		engineOpts = append(engineOpts, engine.WithGeocoder(b.geocoder))
	}
	if b.geocodeTimeout > 0 {
		engineOpts = append(engineOpts, engine.WithGeocodeTimeout(b.geocodeTimeout))
	}
	b.engine = engine.New(engineOpts...)

	// Sources that report their own reloads cover the watcher path too;
	// registering there keeps file-change reloads visible to the hook.
	if notifier, ok := source.(ports.ReloadNotifier); ok && b.hooks.OnReload != nil {
		notifier.OnReload(b.hooks.OnReload)
		b.reloadHooked = true
	}
	return b
}

// HandleEvent processes one inbound event end to end: dispatch under the
// chat's lock, persist the session, then deliver content and forward
// notifications.
func (b *Bot) HandleEvent(ctx context.Context, ev domain.Event) {
	if ev.Text == reloadCommand {
		b.handleReload(ctx, ev.ChatID)
		return
	}

	chatKey := strconv.FormatInt(ev.ChatID, 10)
	var res *domain.Result

	err := b.sessions.WithLock(ctx, chatKey, func(ctx context.Context) error {
		sess, err := b.loadOrStart(ctx, chatKey)
		if err != nil {
			return err
		}
		res = b.engine.Dispatch(ctx, b.source.Snapshot(), sess, ev)

		switch res.Outcome {
		case domain.OutcomeOK, domain.OutcomeSkipped:
			return b.sessions.Store().Save(ctx, chatKey, res.Session)
		default:
			// Unmatched and error outcomes leave the stored session alone.
			return nil
		}
	})
	if err != nil {
		b.logger.Error("event handling failed", "chat_id", ev.ChatID, "err", err)
		b.sendText(ctx, ev.ChatID, MsgProcessingError)
		return
	}

	b.deliver(ctx, ev.ChatID, res)
}

// loadOrStart mirrors Manager.LoadOrStart without taking the chat lock,
// which HandleEvent already holds.
func (b *Bot) loadOrStart(ctx context.Context, chatKey string) (*domain.Session, error) {
	sess, err := b.sessions.Store().Load(ctx, chatKey)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, err
	}
	return domain.NewSession(), nil
}

// deliver sends the rendered content plus the fixed fallbacks, then
// forwards notifications off the critical path of the originating chat.
func (b *Bot) deliver(ctx context.Context, chatID int64, res *domain.Result) {
	switch res.Outcome {
	case domain.OutcomeUnmatched:
		b.sendText(ctx, chatID, MsgUnrecognized)
	case domain.OutcomeError:
		b.sendText(ctx, chatID, MsgProcessingError)
	default:
		if res.Content != nil {
			if err := b.transport.Send(ctx, chatID, res.Content); err != nil {
				b.logger.Error("send failed", "chat_id", chatID, "err", err)
			}
		}
	}

	for _, n := range res.Notifications {
		if b.hooks.OnNotification != nil {
			b.hooks.OnNotification(ctx, n)
		}
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.notifyTimeout)
		if err := b.transport.SendText(nctx, n.ChatID, n.Text); err != nil {
			b.logger.Error("notification delivery failed", "chat_id", n.ChatID, "err", err)
		}
		cancel()
	}
}

func (b *Bot) sendText(ctx context.Context, chatID int64, text string) {
	if err := b.transport.SendText(ctx, chatID, text); err != nil {
		b.logger.Error("send failed", "chat_id", chatID, "err", err)
	}
}

// handleReload serves the operator control input.
func (b *Bot) handleReload(ctx context.Context, chatID int64) {
	if err := b.Reload(ctx); err != nil {
		b.sendText(ctx, chatID, "Reload failed: "+err.Error())
		return
	}
	snap := b.source.Snapshot()
	b.sendText(ctx, chatID, "Menu reloaded: "+strconv.Itoa(len(snap.Commands()))+" commands")
}

// Reload re-reads the rule table and re-registers the command menu.
func (b *Bot) Reload(ctx context.Context) error {
	if err := b.source.Reload(ctx); err != nil {
		return err
	}
	if !b.reloadHooked && b.hooks.OnReload != nil {
		b.hooks.OnReload(ctx, len(b.source.Snapshot().Rules()))
	}
	return b.RegisterMenu(ctx)
}

// RegisterMenu publishes the command menu derived from the current table.
func (b *Bot) RegisterMenu(ctx context.Context) error {
	if b.registry == nil {
		return nil
	}
	return b.registry.RegisterCommands(ctx, b.source.Snapshot().Commands())
}

// Sessions exposes the session manager, for hosts that need direct access.
func (b *Bot) Sessions() *session.Manager {
	return b.sessions
}

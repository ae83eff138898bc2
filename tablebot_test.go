package tablebot_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonidyasin/tablebot"
	"github.com/leonidyasin/tablebot/pkg/adapters/memory"
	"github.com/leonidyasin/tablebot/pkg/domain"
	"github.com/leonidyasin/tablebot/pkg/table"
)

type sentMessage struct {
	ChatID  int64
	Text    string
	Content *domain.Content
}

// fakeTransport records outbound traffic instead of talking to a chat API.
type fakeTransport struct {
	mu       sync.Mutex
	sent     []sentMessage
	commands []domain.MenuCommand
}

func (f *fakeTransport) Send(ctx context.Context, chatID int64, content *domain.Content) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Text: content.Text, Content: content})
	return nil
}

func (f *fakeTransport) SendText(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeTransport) RegisterCommands(ctx context.Context, commands []domain.MenuCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = commands
	return nil
}

func (f *fakeTransport) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func (f *fakeTransport) lastText() string {
	msgs := f.messages()
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Text
}

const orderTable = `from_state,command,condition,result_action,message_text,notification,to_state,bot_command,bot_description
start,/start,—,—,Welcome! Send /order to begin.,—,main_menu,/start,Start the bot
main_menu,/order,—,clear:address,Where should we deliver?,—,awaiting_address,/order,Place an order
awaiting_address,<text>,—,save:address:{text}|notify_user_by_chat_id:99:New order to {address},Got it: {address},—,confirmed,—,—
`

func newTestBot(t *testing.T, opts ...tablebot.Option) (*tablebot.Bot, *fakeTransport) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(path, []byte(orderTable), 0o644))

	source, err := table.New(path)
	require.NoError(t, err)

	transport := &fakeTransport{}
	opts = append([]tablebot.Option{tablebot.WithCommandRegistry(transport)}, opts...)
	bot := tablebot.New(source, memory.NewStore(), transport, opts...)
	return bot, transport
}

func TestBotHappyPath(t *testing.T) {
	bot, transport := newTestBot(t)
	ctx := context.Background()

	bot.HandleEvent(ctx, domain.Event{ChatID: 7, Text: "/start"})
	bot.HandleEvent(ctx, domain.Event{ChatID: 7, Text: "/order"})
	bot.HandleEvent(ctx, domain.Event{ChatID: 7, Text: "Baker Street 221b"})

	msgs := transport.messages()
	require.Len(t, msgs, 4, "three replies plus one notification")
	assert.Equal(t, "Welcome! Send /order to begin.", msgs[0].Text)
	assert.Equal(t, "Where should we deliver?", msgs[1].Text)
	assert.Equal(t, "Got it: Baker Street 221b", msgs[2].Text)

	assert.Equal(t, int64(99), msgs[3].ChatID)
	assert.Equal(t, "New order to Baker Street 221b", msgs[3].Text)
}

func TestBotUnrecognizedInput(t *testing.T) {
	bot, transport := newTestBot(t)
	ctx := context.Background()

	bot.HandleEvent(ctx, domain.Event{ChatID: 7, Text: "gibberish"})
	assert.Equal(t, tablebot.MsgUnrecognized, transport.lastText())
}

func TestBotUnmatchedDoesNotAdvanceState(t *testing.T) {
	bot, transport := newTestBot(t)
	ctx := context.Background()

	bot.HandleEvent(ctx, domain.Event{ChatID: 7, Text: "/start"})
	bot.HandleEvent(ctx, domain.Event{ChatID: 7, Text: "gibberish"})
	// Still in main_menu: /order must match.
	bot.HandleEvent(ctx, domain.Event{ChatID: 7, Text: "/order"})

	assert.Equal(t, "Where should we deliver?", transport.lastText())
}

func TestBotResetMidFlow(t *testing.T) {
	bot, transport := newTestBot(t)
	ctx := context.Background()

	bot.HandleEvent(ctx, domain.Event{ChatID: 7, Text: "/start"})
	bot.HandleEvent(ctx, domain.Event{ChatID: 7, Text: "/order"})
	bot.HandleEvent(ctx, domain.Event{ChatID: 7, Text: "/start"})

	assert.Equal(t, "Welcome! Send /order to begin.", transport.lastText())
}

func TestBotRegisterMenu(t *testing.T) {
	bot, transport := newTestBot(t)

	require.NoError(t, bot.RegisterMenu(context.Background()))
	require.Len(t, transport.commands, 2)
	assert.Equal(t, "start", transport.commands[0].Command)
	assert.Equal(t, "order", transport.commands[1].Command)
}

func TestBotReloadMenuCommand(t *testing.T) {
	bot, transport := newTestBot(t)

	bot.HandleEvent(context.Background(), domain.Event{ChatID: 7, Text: "/reload_menu"})
	require.Len(t, transport.commands, 2)
	assert.Contains(t, transport.lastText(), "Menu reloaded")
}

func TestBotSessionsAreIsolatedPerChat(t *testing.T) {
	bot, transport := newTestBot(t)
	ctx := context.Background()

	bot.HandleEvent(ctx, domain.Event{ChatID: 1, Text: "/start"})
	bot.HandleEvent(ctx, domain.Event{ChatID: 2, Text: "/start"})
	bot.HandleEvent(ctx, domain.Event{ChatID: 1, Text: "/order"})
	// Chat 2 is still in main_menu; free text must not match there.
	bot.HandleEvent(ctx, domain.Event{ChatID: 2, Text: "Baker Street"})

	assert.Equal(t, tablebot.MsgUnrecognized, transport.lastText())
}

func TestBotReloadHookFiresOnce(t *testing.T) {
	var reloads []int
	bot, _ := newTestBot(t, tablebot.WithHooks(domain.Hooks{
		OnReload: func(_ context.Context, rules int) {
			reloads = append(reloads, rules)
		},
	}))

	require.NoError(t, bot.Reload(context.Background()))
	assert.Equal(t, []int{3}, reloads, "one reload reports exactly once")
}

func TestBotNotificationHook(t *testing.T) {
	var notified []domain.Notification
	bot, _ := newTestBot(t, tablebot.WithHooks(domain.Hooks{
		OnNotification: func(_ context.Context, n domain.Notification) {
			notified = append(notified, n)
		},
	}))
	ctx := context.Background()

	bot.HandleEvent(ctx, domain.Event{ChatID: 7, Text: "/start"})
	bot.HandleEvent(ctx, domain.Event{ChatID: 7, Text: "/order"})
	bot.HandleEvent(ctx, domain.Event{ChatID: 7, Text: "Baker Street"})

	require.Len(t, notified, 1)
	assert.Equal(t, int64(99), notified[0].ChatID)
}

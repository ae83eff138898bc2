package domain

// Authoring sentinels used in the rule table. A literal em-dash or an empty
// cell both mean "absent"; wildcards widen the matching predicate.
const (
	// Absent is the placeholder authors put into cells they want empty.
	Absent = "—"

	// AnyState matches every current state.
	AnyState = "any"
	// AnyRole matches every session role.
	AnyRole = "any"

	// WildcardText matches any free-text input that is not a command
	// (does not start with CommandPrefix).
	WildcardText = "<text>"
	// WildcardLocation matches any event carrying a location.
	WildcardLocation = "<location>"

	// CommandPrefix marks bot commands in user input.
	CommandPrefix = "/"

	// StateStart is the initial state of every new session.
	StateStart = "start"
)

// Rule is one row of the configuration table: a (state, trigger) pair mapped
// to guard, effects, outbound content and the next state. Rules are immutable
// once loaded; table order is significant, the first satisfying rule wins.
type Rule struct {
	// Index is the zero-based position in the loaded table, kept for
	// diagnostics (duplicate-match logging).
	Index int

	FromState string
	Command   string
	Role      string

	Condition Condition
	Actions   []Action

	MessageText  string
	Notification string
	Caption      string
	MediaFile    string
	ReplyMarkup  string
	InlineMarkup string
	Entities     string
	Integrations string
	Progress     []ProgressPart

	// ToState is the transition target; empty means "no transition".
	ToState string

	// BotCommand / BotDescription feed the command-menu registration and
	// play no part in dispatch.
	BotCommand     string
	BotDescription string
}

// Valid reports whether the rule may participate in matching. Rows with an
// empty from_state or command are authoring mistakes and are excluded.
func (r *Rule) Valid() bool {
	return r.FromState != "" && r.Command != ""
}

// MenuCommand is one entry of the bot command menu derived from the table's
// bot_command/bot_description columns.
type MenuCommand struct {
	Command     string
	Description string
}

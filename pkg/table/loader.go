// Package table loads conversation rule tables from CSV files and
// serves parsed snapshots to the dispatch engine.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/leonidyasin/tablebot/pkg/domain"
)

// rawRow mirrors a CSV record keyed by header name. All cells arrive as
// strings; grammar parsing happens after decoding.
type rawRow struct {
	FromState      string `mapstructure:"from_state"`
	Command        string `mapstructure:"command"`
	Role           string `mapstructure:"role"`
	Condition      string `mapstructure:"condition"`
	Action         string `mapstructure:"result_action"`
	MessageText    string `mapstructure:"message_text"`
	Notification   string `mapstructure:"notification"`
	Caption        string `mapstructure:"caption"`
	MediaFile      string `mapstructure:"media_file"`
	ReplyMarkup    string `mapstructure:"reply_markup"`
	InlineMarkup   string `mapstructure:"inline_markup"`
	Entities       string `mapstructure:"entities"`
	Integrations   string `mapstructure:"integrations"`
	Progress       string `mapstructure:"progress_config"`
	ToState        string `mapstructure:"to_state"`
	BotCommand     string `mapstructure:"bot_command"`
	BotDescription string `mapstructure:"bot_description"`
}

// Load reads and parses the rule table at path. Rows missing a state or
// trigger are excluded with a warning rather than failing the whole load.
func Load(path string, logger *slog.Logger) ([]domain.Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rule table: %w", err)
	}
	defer f.Close()
	return Parse(f, logger)
}

// Parse decodes CSV rule rows from r. The header row names the columns;
// column order in the file does not matter, row order does.
func Parse(r io.Reader, logger *slog.Logger) ([]domain.Rule, error) {
	if logger == nil {
		logger = slog.New(discardHandler())
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty table", domain.ErrTableFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTableFormat, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.ToLower(header[i]))
	}

	var rules []domain.Rule
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrTableFormat, line+1, err)
		}
		line++

		cells := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" || i >= len(record) {
				continue
			}
			cells[name] = normalizeCell(record[i])
		}

		var raw rawRow
		if err := mapstructure.Decode(cells, &raw); err != nil {
			logger.Warn("skipping undecodable row", "line", line, "err", err)
			continue
		}

		rule := buildRule(raw, len(rules))
		if !rule.Valid() {
			logger.Warn("skipping rule without state or trigger", "line", line,
				"from_state", rule.FromState, "command", rule.Command)
			continue
		}
		if rule.Condition.Kind == domain.CondInvalid {
			logger.Warn("rule carries malformed condition, guard will fail closed",
				"line", line, "condition", rule.Condition.Raw)
		}
		rules = append(rules, rule)
	}

	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: no usable rules", domain.ErrTableFormat)
	}
	return rules, nil
}

func discardHandler() slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}

// normalizeCell maps the authoring sentinel for "absent" to the empty
// string so the rest of the engine only deals with one representation.
func normalizeCell(s string) string {
	s = strings.TrimSpace(s)
	if s == domain.Absent {
		return ""
	}
	return s
}

func buildRule(raw rawRow, index int) domain.Rule {
	return domain.Rule{
		Index:          index,
		FromState:      raw.FromState,
		Command:        raw.Command,
		Role:           raw.Role,
		Condition:      domain.ParseCondition(raw.Condition),
		Actions:        domain.ParseActions(raw.Action),
		MessageText:    raw.MessageText,
		Notification:   raw.Notification,
		Caption:        raw.Caption,
		MediaFile:      raw.MediaFile,
		ReplyMarkup:    raw.ReplyMarkup,
		InlineMarkup:   raw.InlineMarkup,
		Entities:       raw.Entities,
		Integrations:   raw.Integrations,
		Progress:       domain.ParseProgress(raw.Progress),
		ToState:        raw.ToState,
		BotCommand:     raw.BotCommand,
		BotDescription: raw.BotDescription,
	}
}

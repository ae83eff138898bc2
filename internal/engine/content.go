package engine

import (
	"fmt"
	"strings"

	"github.com/leonidyasin/tablebot/pkg/domain"
)

const (
	barGlyphFilled = "█"
	barGlyphEmpty  = "░"
	barDefaultLen  = 8

	// integrationRequestLocation reclassifies text content into a
	// location-sharing prompt.
	integrationRequestLocation = "request_location"
)

// buildContent renders the outbound message description for a matched rule.
// Returns nil when the rule produces nothing to send.
func (e *Engine) buildContent(rule *domain.Rule, payload domain.Payload) *domain.Content {
	content := &domain.Content{Kind: domain.KindText}

	text := e.baseText(rule, payload)
	if progress := e.progressText(rule.Progress, payload); progress != "" {
		text = progress + text
	}
	if text != "" {
		content.Text = substitute(text, payload, true)
	}

	if rule.Caption != "" {
		content.Caption = rule.Caption
	}
	if rule.MediaFile != "" {
		content.MediaFile = rule.MediaFile
		content.Kind = mediaKind(rule.MediaFile)
	}
	if rule.ReplyMarkup != "" {
		content.ReplyButtons = rule.ReplyMarkup
	}
	if rule.InlineMarkup != "" {
		content.InlineButtons = rule.InlineMarkup
	}
	if rule.Integrations != "" {
		content.IntegrationTag = rule.Integrations
		if rule.Integrations == integrationRequestLocation && content.Kind == domain.KindText {
			content.Kind = domain.KindLocationRequest
		}
	}

	// A poll only reclassifies a rule that is still plain text.
	if rule.Entities != "" && content.Kind == domain.KindText {
		content.Kind = domain.KindPoll
		for _, opt := range strings.Split(rule.Entities, ",") {
			if opt = strings.TrimSpace(opt); opt != "" {
				content.PollOptions = append(content.PollOptions, opt)
			}
		}
	}

	if emptyContent(content) {
		return nil
	}
	e.logger.Debug("content built", "kind", content.Kind, "has_text", content.Text != "", "media", content.MediaFile)
	return content
}

// baseText picks message_text when present, else the notification template.
func (e *Engine) baseText(rule *domain.Rule, payload domain.Payload) string {
	if rule.MessageText != "" {
		return rule.MessageText
	}
	if rule.Notification != "" {
		return substitute(rule.Notification, payload, true)
	}
	return ""
}

// progressText computes the progress indicator prefix from the rule's parsed
// progress_config. Malformed parts contribute no text; a disabled part
// suppresses the whole indicator.
func (e *Engine) progressText(parts []domain.ProgressPart, payload domain.Payload) string {
	var b strings.Builder
	for _, part := range parts {
		switch part.Kind {
		case domain.ProgressDisabled:
			return ""

		case domain.ProgressManual:
			fmt.Fprintf(&b, "[Step %d/%d] ", part.Current, part.Total)

		case domain.ProgressTrack:
			n, ok := payloadInt(payload, part.Field)
			if !ok {
				e.logger.Warn("progress track field is not numeric", "field", part.Field)
				continue
			}
			fmt.Fprintf(&b, "[Progress: %d] ", n)

		case domain.ProgressBar:
			n, ok := payloadInt(payload, part.Field)
			if !ok {
				e.logger.Warn("progress bar field is not numeric", "field", part.Field)
				continue
			}
			b.WriteString(renderBar(n, barTotal(payload)))

		default:
			e.logger.Warn("malformed progress part", "part", part.Raw)
		}
	}
	return b.String()
}

// barTotal resolves the bar width from the payload, defaulting to 8.
func barTotal(payload domain.Payload) int {
	if n, ok := payloadInt(payload, "max_steps"); ok && n > 0 {
		return n
	}
	if n, ok := payloadInt(payload, "total_steps_for_bar"); ok && n > 0 {
		return n
	}
	return barDefaultLen
}

func renderBar(step, total int) string {
	if step < 0 {
		step = 0
	}
	if step > total {
		step = total
	}
	return "[" + strings.Repeat(barGlyphFilled, step) + strings.Repeat(barGlyphEmpty, total-step) + "]"
}

func payloadInt(payload domain.Payload, field string) (int, bool) {
	v, ok := payload[field]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	var n int
	if _, err := fmt.Sscanf(domain.Stringify(v), "%d", &n); err != nil {
		return 0, false
	}
	return n, true
}

func emptyContent(c *domain.Content) bool {
	return c.Text == "" && c.Caption == "" && c.MediaFile == "" &&
		len(c.PollOptions) == 0 && c.ReplyButtons == "" && c.InlineButtons == "" &&
		c.IntegrationTag == ""
}

// mediaKind classifies a media reference by its file extension. The checks
// run in a fixed order so ambiguous names resolve deterministically.
func mediaKind(file string) domain.ContentKind {
	name := strings.ToLower(file)
	switch {
	case containsAny(name, ".jpg", ".jpeg", ".png", ".gif", ".webp"):
		return domain.KindPhoto
	case containsAny(name, ".mp4", ".avi", ".mov", ".mkv"):
		return domain.KindVideo
	case containsAny(name, ".pdf", ".doc", ".docx", ".txt"):
		return domain.KindDocument
	case containsAny(name, ".mp3", ".wav", ".ogg"):
		return domain.KindAudio
	}
	return domain.KindText
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

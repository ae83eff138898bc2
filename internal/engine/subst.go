package engine

import (
	"strings"

	"github.com/leonidyasin/tablebot/pkg/domain"
)

// htmlEscaper escapes exactly the characters that matter for HTML parse
// mode. Substitution is idempotent: escaping applies to substituted values
// only, never to the surrounding template text.
var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// substitute replaces {field} placeholders in text with stringified payload
// values. Location-typed fields additionally expose {field[latitude]} and
// {field[longitude]} sub-keys. With escape set, substituted values are
// HTML-escaped to keep rich-text rendering safe.
func substitute(text string, payload domain.Payload, escape bool) string {
	if !strings.Contains(text, "{") {
		return text
	}
	for key, val := range payload {
		if loc, ok := domain.AsLocation(val); ok {
			text = strings.ReplaceAll(text, "{"+key+"[latitude]}", domain.Stringify(loc.Latitude))
			text = strings.ReplaceAll(text, "{"+key+"[longitude]}", domain.Stringify(loc.Longitude))
		}
		placeholder := "{" + key + "}"
		if !strings.Contains(text, placeholder) {
			continue
		}
		value := domain.Stringify(val)
		if escape {
			value = htmlEscaper.Replace(value)
		}
		text = strings.ReplaceAll(text, placeholder, value)
	}
	return text
}

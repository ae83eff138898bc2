package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// shareLocationLabel is the button text for location-request keyboards.
const shareLocationLabel = "Share location"

// splitButtons parses the pipe-separated button spec from a table cell.
func splitButtons(spec string) []string {
	var out []string
	for _, part := range strings.Split(spec, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// replyKeyboard builds a one-button-per-row reply keyboard from a spec
// like "New order|My orders|Help".
func replyKeyboard(spec string) *tgbotapi.ReplyKeyboardMarkup {
	labels := splitButtons(spec)
	if len(labels) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return &kb
}

// inlineKeyboard builds an inline keyboard from "label:callback" pairs
// separated by pipes. A pair without a callback reuses the label as its
// callback data.
func inlineKeyboard(spec string) *tgbotapi.InlineKeyboardMarkup {
	pairs := splitButtons(spec)
	if len(pairs) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(pairs))
	for _, pair := range pairs {
		label, data, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(data) == "" {
			data = pair
			label = pair
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(strings.TrimSpace(label), strings.TrimSpace(data))))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

// locationKeyboard is a one-tap reply keyboard asking the user to share
// their location.
func locationKeyboard() *tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonLocation(shareLocationLabel)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return &kb
}

// parseMode picks the Telegram parse mode from the rendered text. The
// content builder escapes &, < and > in substituted values, so angle
// brackets that remain belong to authored HTML tags.
func parseMode(text string) string {
	if strings.Contains(text, "&lt;") || strings.Contains(text, "&gt;") || strings.Contains(text, "&amp;") {
		return tgbotapi.ModeHTML
	}
	if strings.Contains(text, "<") && strings.Contains(text, ">") {
		return tgbotapi.ModeHTML
	}
	if strings.Contains(text, "**") || strings.Contains(text, "__") || strings.Contains(text, "`") {
		return tgbotapi.ModeMarkdownV2
	}
	return ""
}

// isURL reports whether the media reference points at a remote file.
func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

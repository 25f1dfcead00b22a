package ask

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/muratoffalex/errorer/internal/markdown"
	"github.com/muratoffalex/errorer/internal/telegram"
)

// TextPrefixes start a generation request in plain messages.
var TextPrefixes = []string{".ai", ".ии"}

const previewLength = 50

// StripPrefix returns the request following a generation prefix.
func StripPrefix(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, p := range TextPrefixes {
		if strings.HasPrefix(lower, p) {
			return strings.TrimSpace(text[len(p):]), true
		}
	}
	return "", false
}

// Request is a generation request with the reply context resolved.
type Request struct {
	// Prompt goes to the model.
	Prompt string
	// QuoteName and QuoteText are shown above the answer.
	QuoteName string
	QuoteText string
}

// BuildRequest combines the user's text with the message it replies to.
// A reply to another user quotes that user; a reply to the bot carries the
// previous answer as context.
func BuildRequest(msg *telegram.MessageOriginal, text string, botID int64) Request {
	from := msg.From
	req := Request{
		Prompt:    text,
		QuoteName: telegram.DisplayName(from.FirstName, from.UserName),
		QuoteText: text,
	}

	reply := msg.ReplyToMessage
	if reply == nil || reply.From == nil {
		return req
	}
	replyText := reply.Text
	if replyText == "" {
		replyText = reply.Caption
	}

	switch {
	case reply.From.ID == botID || reply.From.IsBot:
		if replyText != "" {
			req.Prompt = fmt.Sprintf("Previous answer: '%s'\n\nNew request: %s", markdown.StripHTML(replyText), text)
		}
	case reply.From.ID != from.ID:
		if replyText == "" {
			return req
		}
		name := telegram.DisplayName(reply.From.FirstName, reply.From.UserName)
		if text == "" {
			req.Prompt = replyText
		} else {
			req.Prompt = fmt.Sprintf("Message from %s: '%s'\n\nQuestion: %s", name, replyText, text)
		}
		req.QuoteName = name
		req.QuoteText = replyText
	}
	return req
}

// Preview shortens a request for the status message.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	return string([]rune(text)[:previewLength]) + "..."
}

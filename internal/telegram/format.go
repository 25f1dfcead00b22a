package telegram

import (
	"fmt"

	"github.com/muratoffalex/errorer/internal/markdown"
)

// FormatQuotedResponse quotes the asker and their question above the model
// answer. name and query are plain text, response is model markdown.
func FormatQuotedResponse(name, query, response string) string {
	return fmt.Sprintf(
		"<blockquote>%s: %s</blockquote>\n\n<b>💬 %s</b>",
		markdown.EscapeHTML(name),
		markdown.EscapeHTML(query),
		markdown.ToHTML(response),
	)
}

// DisplayName prefers the first name, then @username.
func DisplayName(firstName, userName string) string {
	if firstName != "" {
		return firstName
	}
	if userName != "" {
		return "@" + userName
	}
	return "user"
}

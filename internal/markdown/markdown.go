// Package markdown converts the loose markdown LLMs produce into the HTML
// subset Telegram accepts.
package markdown

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeHTML escapes the three characters Telegram's HTML parser requires.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(strings.ToValidUTF8(text, ""))
}

var (
	fencedCode  = regexp.MustCompile("```(?:[\\w+-]*\\n)?([\\s\\S]*?)```")
	inlineCode  = regexp.MustCompile("`([^`\\n]+?)`")
	escapedChar = regexp.MustCompile(`\\([^\w\s])`)
	header      = regexp.MustCompile(`(?m)^#{1,6}[ \t]+(.+?)[ \t#]*$`)
	boldStars   = regexp.MustCompile(`\*\*([^\n]+?)\*\*`)
	boldUnders  = regexp.MustCompile(`__([^\n]+?)__`)
	italicStar  = regexp.MustCompile(`\*([^*\s](?:[^*\n]*?[^*\s])?)\*`)
	// underscores inside identifiers like snake_case stay literal
	italicUnder = regexp.MustCompile(`(^|[^\p{L}\p{N}_])_([^_\s](?:[^_\n]*?[^_\s])?)_($|[^\p{L}\p{N}_])`)
	extraBlank  = regexp.MustCompile(`\n[ \t]*\n[ \t\n]*\n`)
	placeholder = regexp.MustCompile("\x00(\\d+)\x00")
)

type protector struct {
	saved []string
}

func (p *protector) protect(s string) string {
	p.saved = append(p.saved, s)
	return fmt.Sprintf("\x00%d\x00", len(p.saved)-1)
}

func (p *protector) restore(text string) string {
	// nested placeholders (escaped char inside code) need a second round
	for range 2 {
		text = placeholder.ReplaceAllStringFunc(text, func(m string) string {
			i, err := strconv.Atoi(m[1 : len(m)-1])
			if err != nil || i >= len(p.saved) {
				return ""
			}
			return p.saved[i]
		})
	}
	return text
}

// ToHTML renders model output as Telegram HTML. The input is treated as
// untrusted text: everything is escaped before markup is introduced.
func ToHTML(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\x00", ""))
	if text == "" {
		return ""
	}
	text = EscapeHTML(text)

	p := &protector{}
	text = fencedCode.ReplaceAllStringFunc(text, func(m string) string {
		body := fencedCode.FindStringSubmatch(m)[1]
		return p.protect("<code>" + strings.TrimRight(body, "\n") + "</code>")
	})
	text = inlineCode.ReplaceAllStringFunc(text, func(m string) string {
		return p.protect("<code>" + m[1:len(m)-1] + "</code>")
	})
	text = escapedChar.ReplaceAllStringFunc(text, func(m string) string {
		return p.protect(m[1:])
	})

	text = header.ReplaceAllString(text, "<b>$1</b>")
	text = boldStars.ReplaceAllString(text, "<b>$1</b>")
	text = boldUnders.ReplaceAllString(text, "<b>$1</b>")
	text = italicStar.ReplaceAllString(text, "<i>$1</i>")
	// adjacent matches share a boundary char, so a second pass picks up the rest
	for range 2 {
		text = italicUnder.ReplaceAllString(text, "$1<i>$2</i>$3")
	}
	text = extraBlank.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(p.restore(text))
}

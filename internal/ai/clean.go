package ai

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var thinkingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)<think>.*?</think>`),
	regexp.MustCompile(`(?s)\[thinking\].*?\[/thinking\]`),
	regexp.MustCompile(`(?s)<reasoning>.*?</reasoning>`),
	regexp.MustCompile("(?s)```(?:thinking|reasoning)\n.*?```"),
	// closing tag whose opening was cut off upstream
	regexp.MustCompile(`(?s)^.*?</think>`),
	regexp.MustCompile(`(?m)^思考：.*$`),
	regexp.MustCompile(`(?m)^Let me think.*$`),
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// repeatedTailMin is the shortest trailing run of one character that gets
// collapsed. Three is left alone so an ellipsis survives.
const repeatedTailMin = 4

// Clean normalizes raw model output: drops reasoning markup, squeezes blank
// lines, caps the length at maxLen runes (0 disables) and collapses a
// pathological repeated tail. Clean(Clean(x)) == Clean(x).
func Clean(text string, maxLen int) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)

	for {
		prev := text
		for _, re := range thinkingPatterns {
			text = re.ReplaceAllString(text, "")
		}
		if text == prev {
			break
		}
	}

	text = blankLines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if maxLen > 3 && utf8.RuneCountInString(text) > maxLen {
		runes := []rune(text)
		head := strings.TrimRightFunc(string(runes[:maxLen-3]), func(r rune) bool {
			return unicode.IsSpace(r) || r == '.'
		})
		text = head + "..."
	}

	text = trimRepeatedTail(text)
	return strings.TrimSpace(text)
}

func trimRepeatedTail(text string) string {
	last, size := utf8.DecodeLastRuneInString(text)
	if size == 0 {
		return text
	}
	end := len(text)
	start := end - size
	count := 1
	for start > 0 {
		r, s := utf8.DecodeLastRuneInString(text[:start])
		if r != last {
			break
		}
		start -= s
		count++
	}
	if count < repeatedTailMin {
		return text
	}
	return text[:start] + string(last)
}

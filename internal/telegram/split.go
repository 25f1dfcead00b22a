package telegram

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is Telegram's limit for a text message, in characters.
const MaxMessageLength = 4096

const ellipsis = "..."

// PartLabel renders the prefix put in front of part i of n.
type PartLabel func(i, n int) string

func DefaultPartLabel(i, n int) string {
	return fmt.Sprintf("<i>[Part %d/%d]</i>\n\n", i, n)
}

var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// SplitMessage cuts text into parts of at most maxLen characters, preferring
// paragraph, line, sentence and then word boundaries. It returns at least one part. When more than one part
// is produced every part is prefixed with label, and the prefix is counted
// against maxLen.
func SplitMessage(text string, maxLen int, label PartLabel) []string {
	if maxLen <= 0 {
		maxLen = MaxMessageLength
	}
	if utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}
	if label == nil {
		label = DefaultPartLabel
	}

	// the label grows with the part count, so re-split until the reserve fits
	n := 2
	var parts []string
	for range 4 {
		reserve := utf8.RuneCountInString(label(n, n))
		parts = splitParts(text, max(maxLen-reserve, len(ellipsis)*2+1))
		if utf8.RuneCountInString(label(len(parts), len(parts))) <= reserve {
			break
		}
		n = len(parts)
	}
	if len(parts) == 0 {
		// nothing but whitespace
		return []string{truncateRunes(text, maxLen)}
	}

	if len(parts) > 1 {
		for i := range parts {
			parts[i] = label(i+1, len(parts)) + parts[i]
		}
	}
	return parts
}

func splitParts(text string, limit int) []string {
	var (
		parts   []string
		current string
	)
	flush := func() {
		if current != "" {
			parts = append(parts, current)
			current = ""
		}
	}
	fits := func(sep, next string) bool {
		if current == "" {
			return utf8.RuneCountInString(next) <= limit
		}
		return utf8.RuneCountInString(current)+utf8.RuneCountInString(sep)+utf8.RuneCountInString(next) <= limit
	}
	appendTo := func(sep, next string) {
		if current == "" {
			current = next
			return
		}
		current += sep + next
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		if fits("\n\n", paragraph) {
			appendTo("\n\n", paragraph)
			continue
		}
		flush()
		if utf8.RuneCountInString(paragraph) <= limit {
			current = paragraph
			continue
		}

		for _, line := range strings.Split(paragraph, "\n") {
			if fits("\n", line) {
				appendTo("\n", line)
				continue
			}
			flush()
			if utf8.RuneCountInString(line) <= limit {
				current = line
				continue
			}

			for _, sentence := range splitSentences(line) {
				if fits(" ", sentence) {
					appendTo(" ", sentence)
					continue
				}
				flush()
				if utf8.RuneCountInString(sentence) <= limit {
					current = sentence
					continue
				}

				for _, word := range strings.Fields(sentence) {
					if fits(" ", word) {
						appendTo(" ", word)
						continue
					}
					flush()
					if utf8.RuneCountInString(word) <= limit {
						current = word
						continue
					}
					parts = append(parts, truncateRunes(word, limit-len(ellipsis))+ellipsis)
				}
			}
		}
	}
	flush()

	final := make([]string, 0, len(parts))
	for _, part := range parts {
		for utf8.RuneCountInString(part) > limit {
			runes := []rune(part)
			cut := limit - len(ellipsis)
			final = append(final, string(runes[:cut])+ellipsis)
			part = ellipsis + string(runes[cut:])
		}
		if part != "" {
			final = append(final, part)
		}
	}
	return final
}

// splitSentences splits after terminal punctuation, dropping the whitespace.
func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[last:loc[0]+1])
		last = loc[1]
	}
	if last < len(text) {
		sentences = append(sentences, text[last:])
	}
	return sentences
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

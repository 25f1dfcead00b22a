package telegram

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noLabel(int, int) string { return "" }

func shortLabel(i, n int) string { return fmt.Sprintf("[%d/%d] ", i, n) }

func TestSplitMessage_ShortTextUntouched(t *testing.T) {
	parts := SplitMessage("hello", 10, nil)
	assert.Equal(t, []string{"hello"}, parts)
}

func TestSplitMessage_Words(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 10))

	parts := SplitMessage(text, 30, shortLabel)

	assert.Equal(t, []string{
		"[1/2] word word word word word",
		"[2/2] word word word word word",
	}, parts)
}

func TestSplitMessage_Sentences(t *testing.T) {
	parts := SplitMessage("One two three. Four five six! Seven eight nine?", 40, noLabel)

	assert.Equal(t, []string{"One two three. Four five six!", "Seven eight nine?"}, parts)
}

func TestSplitMessage_Paragraphs(t *testing.T) {
	text := "first paragraph\n\nsecond paragraph\n\nthird"

	parts := SplitMessage(text, 35, noLabel)

	assert.Equal(t, []string{"first paragraph\n\nsecond paragraph", "third"}, parts)
}

func TestSplitMessage_LongWordTruncated(t *testing.T) {
	parts := SplitMessage(strings.Repeat("x", 25), 10, noLabel)

	assert.Equal(t, []string{"xxxxxxx..."}, parts)
}

func TestSplitMessage_CountsRunes(t *testing.T) {
	parts := SplitMessage("привет мир как дела", 10, noLabel)

	assert.Equal(t, []string{"привет мир", "как дела"}, parts)
}

func TestSplitMessage_LabelReserveGrowsWithPartCount(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("abcd ", 40))

	parts := SplitMessage(text, 16, shortLabel)

	require.Len(t, parts, 40)
	for i, part := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(part), 16, "part %d: %q", i, part)
		assert.True(t, strings.HasPrefix(part, fmt.Sprintf("[%d/40] ", i+1)), part)
	}
}

func TestSplitMessage_KeepsEveryWord(t *testing.T) {
	text := "Lorem ipsum dolor sit amet. Consectetur adipiscing elit!\n\n" +
		strings.Repeat("Sed do eiusmod tempor incididunt. ", 30) +
		"\n\nUt labore et dolore magna aliqua."

	parts := SplitMessage(text, 120, DefaultPartLabel)

	var words []string
	for i, part := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(part), 120)
		label := DefaultPartLabel(i+1, len(parts))
		require.True(t, strings.HasPrefix(part, label))
		words = append(words, strings.Fields(strings.TrimPrefix(part, label))...)
	}
	assert.Equal(t, strings.Fields(text), words)
}

func TestDefaultPartLabel(t *testing.T) {
	assert.Equal(t, "<i>[Part 1/3]</i>\n\n", DefaultPartLabel(1, 3))
}

func TestFormatQuotedResponse(t *testing.T) {
	got := FormatQuotedResponse("Al<i>", "2 < 3?", "**yes**")

	assert.Equal(t, "<blockquote>Al&lt;i&gt;: 2 &lt; 3?</blockquote>\n\n<b>💬 <b>yes</b></b>", got)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Alice", DisplayName("Alice", "alice"))
	assert.Equal(t, "@alice", DisplayName("", "alice"))
	assert.Equal(t, "user", DisplayName("", ""))
}

func TestSplitMessage_KeepsLineBreaks(t *testing.T) {
	text := strings.Repeat("a\n", 3000)

	parts := SplitMessage(text, MaxMessageLength, noLabel)

	require.Len(t, parts, 2)
	for _, part := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(part), MaxMessageLength)
		assert.NotContains(t, part, " ")
		assert.Contains(t, part, "a\na\n")
	}
	assert.Equal(t, 3000, strings.Count(strings.Join(parts, "\n"), "a"))
}

func TestSplitMessage_WhitespaceOnlyYieldsOnePart(t *testing.T) {
	parts := SplitMessage(strings.Repeat(" ", 5000), MaxMessageLength, nil)

	require.Len(t, parts, 1)
	assert.LessOrEqual(t, utf8.RuneCountInString(parts[0]), MaxMessageLength)
}

package markdown

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var tagPattern = regexp.MustCompile(`<[^<>]+?>`)

// StripHTML returns the visible text of an HTML fragment.
func StripHTML(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return StripTags(text)
	}
	doc.Find("br").ReplaceWithHtml("\n")
	return strings.TrimSpace(doc.Text())
}

// StripTags is the plain-text fallback for messages Telegram refused to parse.
func StripTags(text string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(text, ""))
}

// Package htmltext reduces an HTML page to its readable body text.
package htmltext

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
)

// Extract returns the main article text of page with whitespace collapsed.
func Extract(page string) (string, error) {
	doc, err := readability.NewDocument(page)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	content := doc.Content()
	if strings.TrimSpace(content) == "" {
		// readability found no article body; fall back to the whole page.
		content = page
	}

	html, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse readable content: %w", err)
	}
	html.Find("script, style, noscript").Remove()
	return Collapse(html.Text()), nil
}

// Title returns the document title, or "" when there is none.
func Title(page string) string {
	html, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}
	return Collapse(html.Find("title").First().Text())
}

// Collapse replaces every run of whitespace with a single space.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most max bytes on a rune boundary.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

package telegram

import (
	"fmt"
	"strings"
)

// maxMessageLen stays under Telegram's 4096 character limit.
const maxMessageLen = 4090

// DiscoverySummary is the outcome of one discovery run.
type DiscoverySummary struct {
	ThesisTitle string
	Inserted    []string
	Skipped     int
	Failed      int
}

// FormatDiscoverySummary renders a discovery run as one or more Markdown
// messages, splitting the company list so no message exceeds the limit.
func FormatDiscoverySummary(s DiscoverySummary) []string {
	title := EscapeMarkdown(s.ThesisTitle)

	var messages []string
	var current strings.Builder
	part := 1

	startNewPart := func() {
		current.Reset()
		if part == 1 {
			fmt.Fprintf(&current, "🔎 *Discovery run: %s*\n\n", title)
			fmt.Fprintf(&current, "✅ New candidates: %d\n", len(s.Inserted))
			fmt.Fprintf(&current, "♻️ Skipped as known: %d\n", s.Skipped)
			if s.Failed > 0 {
				fmt.Fprintf(&current, "⚠️ Failed to save: %d\n", s.Failed)
			}
			current.WriteString("\n")
		} else {
			fmt.Fprintf(&current, "*Discovery run: %s (part %d)*\n\n", title, part)
		}
	}
	startNewPart()

	if len(s.Inserted) == 0 {
		current.WriteString("No new companies found.")
		return []string{current.String()}
	}

	for i, name := range s.Inserted {
		entry := fmt.Sprintf("%d. %s\n", i+1, EscapeMarkdown(name))
		if current.Len()+len(entry) > maxMessageLen {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(entry)
	}
	messages = append(messages, current.String())
	return messages
}

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

// EscapeMarkdown escapes the characters legacy Telegram Markdown treats as markup.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

package nav

import (
	"strings"

	"github.com/docpress/docpress/internal/markdown"
)

// TOCEntry is one heading in a page's table of contents.
type TOCEntry struct {
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
	Level  int    `json:"level"`
}

// TOC extracts the table of contents of a page body. Only h2 and h3
// headings participate; the page title (h1) and deep subsections stay out
// of the sidebar.
func TOC(body []byte) []TOCEntry {
	var entries []TOCEntry
	for _, h := range markdown.ExtractHeadings(body) {
		if h.Level < 2 || h.Level > 3 {
			continue
		}
		entries = append(entries, TOCEntry{
			Title:  h.Text,
			Anchor: anchorize(h.Text),
			Level:  h.Level,
		})
	}
	return entries
}

// anchorize maps a heading to its rendered fragment id: lowercased, spaces
// to hyphens, everything outside [a-z0-9-] dropped.
func anchorize(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	return b.String()
}

// Package search builds the documentation search index and publishes it to
// Algolia when configured. Unconfigured builds still write the local
// search.json artifact so a client-side fallback can consume it.
package search

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/docpress/docpress/internal/markdown"
	"github.com/docpress/docpress/internal/meta"
	"github.com/docpress/docpress/internal/routes"
)

// Entry is one indexed page.
type Entry struct {
	ObjectID    string   `json:"objectID"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Route       string   `json:"route"`
	URL         string   `json:"url,omitempty"`
	Slug        string   `json:"slug"`
	Headings    []string `json:"headings,omitempty"`
}

// EntryFromPage derives the index entry for a resolved page. Section
// headings (h2/h3) from the body become searchable alongside the title.
func EntryFromPage(m *meta.PageMeta, body []byte) Entry {
	var headings []string
	for _, h := range markdown.ExtractHeadings(body) {
		if h.Level == 2 || h.Level == 3 {
			headings = append(headings, h.Text)
		}
	}
	return Entry{
		ObjectID:    m.Route,
		Title:       m.Title,
		Description: m.Description,
		Route:       m.Route,
		URL:         m.CanonicalURL,
		Slug:        routes.JoinSlug(m.Slug),
		Headings:    headings,
	}
}

// WriteIndex renders entries as the local search.json artifact.
func WriteIndex(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode search index: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write search index: %w", err)
	}
	return nil
}

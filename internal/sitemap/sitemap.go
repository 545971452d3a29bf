// Package sitemap renders the sitemaps.org urlset for a resolved route set.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/docpress/docpress/internal/meta"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Entry is one sitemap URL.
type Entry struct {
	Loc     string
	LastMod string
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// FromPages derives sitemap entries from resolved page metadata. Entries
// keep page order; lastMod applies to every entry and may be empty.
func FromPages(pages []*meta.PageMeta, lastMod string) []Entry {
	entries := make([]Entry, 0, len(pages))
	for _, p := range pages {
		if p == nil || p.CanonicalURL == "" {
			continue
		}
		entries = append(entries, Entry{Loc: p.CanonicalURL, LastMod: lastMod})
	}
	return entries
}

// Write renders entries as an XML urlset. The output is a complete document
// with header, suitable for writing straight to sitemap.xml.
func Write(w io.Writer, entries []Entry) error {
	set := urlSet{XMLNS: xmlns, URLs: make([]xmlURL, 0, len(entries))}
	for _, e := range entries {
		set.URLs = append(set.URLs, xmlURL{Loc: e.Loc, LastMod: e.LastMod})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write sitemap header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write sitemap trailer: %w", err)
	}
	return nil
}

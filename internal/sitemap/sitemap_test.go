package sitemap

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docpress/docpress/internal/meta"
)

func TestWrite_RendersURLSet(t *testing.T) {
	entries := []Entry{
		{Loc: "https://example.com/tinadocs/docs/index", LastMod: "2026-08-25"},
		{Loc: "https://example.com/tinadocs/docs/guides/setup"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, entries))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, xml.Header))
	require.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	require.Contains(t, out, "<loc>https://example.com/tinadocs/docs/index</loc>")
	require.Contains(t, out, "<lastmod>2026-08-25</lastmod>")
	require.True(t, strings.HasSuffix(out, "</urlset>\n"))

	var decoded urlSet
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.URLs, 2)
	require.Equal(t, "https://example.com/tinadocs/docs/guides/setup", decoded.URLs[1].Loc)
	require.Empty(t, decoded.URLs[1].LastMod)
}

func TestWrite_EmptyEntrySet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))

	var decoded urlSet
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded))
	require.Empty(t, decoded.URLs)
}

func TestFromPages_SkipsPagesWithoutCanonical(t *testing.T) {
	pages := []*meta.PageMeta{
		{Slug: []string{"index"}, CanonicalURL: "https://example.com/docs/index"},
		nil,
		{Slug: []string{"draft"}},
		{Slug: []string{"guides", "setup"}, CanonicalURL: "https://example.com/docs/guides/setup"},
	}

	entries := FromPages(pages, "2026-08-25")

	require.Equal(t, []Entry{
		{Loc: "https://example.com/docs/index", LastMod: "2026-08-25"},
		{Loc: "https://example.com/docs/guides/setup", LastMod: "2026-08-25"},
	}, entries)
}

package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_HeaderAndBody(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: Setup Guide\nid: setup\n---\n# Setup\n"))
	require.NoError(t, err)
	require.True(t, doc.Present)
	require.Equal(t, "Setup Guide", doc.Fields["title"])
	require.Equal(t, "setup", doc.Fields["id"])
	require.Equal(t, "# Setup\n", string(doc.Body))
}

func TestParse_NoHeader(t *testing.T) {
	doc, err := Parse([]byte("# Just a body\n"))
	require.NoError(t, err)
	require.False(t, doc.Present)
	require.Empty(t, doc.Fields)
	require.Equal(t, "# Just a body\n", string(doc.Body))
}

func TestParse_EmptyHeader(t *testing.T) {
	doc, err := Parse([]byte("---\n---\nbody\n"))
	require.NoError(t, err)
	require.True(t, doc.Present)
	require.Empty(t, doc.Fields)
	require.Equal(t, "body\n", string(doc.Body))
}

func TestParse_UnterminatedHeader(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: Broken\n"))
	require.ErrorIs(t, err, ErrUnterminatedHeader)
}

func TestParse_CRLF(t *testing.T) {
	doc, err := Parse([]byte("---\r\ntitle: Windows\r\n---\r\nbody\r\n"))
	require.NoError(t, err)
	require.True(t, doc.Present)
	require.Equal(t, "Windows", doc.Fields["title"])
	require.Equal(t, "body\r\n", string(doc.Body))

	out, err := doc.Render()
	require.NoError(t, err)
	require.Equal(t, "---\r\ntitle: Windows\r\n---\r\nbody\r\n", string(out))
}

func TestRender_SortsKeys(t *testing.T) {
	doc := &Document{
		Fields: map[string]any{
			"title": "Setup",
			"id":    "setup",
			"order": 3,
		},
		Body: []byte("body\n"),
	}

	out, err := doc.Render()
	require.NoError(t, err)
	require.Equal(t, "---\nid: setup\norder: 3\ntitle: Setup\n---\nbody\n", string(out))
}

func TestRender_NoHeaderPassthrough(t *testing.T) {
	doc := &Document{Body: []byte("plain body\n")}
	out, err := doc.Render()
	require.NoError(t, err)
	require.Equal(t, "plain body\n", string(out))
}

func TestRender_AddsHeaderWhenFieldsSet(t *testing.T) {
	doc, err := Parse([]byte("body only\n"))
	require.NoError(t, err)
	doc.SetTitle("Added")

	out, err := doc.Render()
	require.NoError(t, err)
	require.Equal(t, "---\ntitle: Added\n---\nbody only\n", string(out))
}

func TestRender_NestedAndSequenceFields(t *testing.T) {
	doc := &Document{
		Fields: map[string]any{
			"seo":  map[string]any{"canonicalUrl": "https://example.com/x"},
			"tags": []string{"guide", "setup"},
		},
		Body: []byte(""),
	}

	out, err := doc.Render()
	require.NoError(t, err)
	require.Equal(t, "---\nseo:\n  canonicalUrl: https://example.com/x\ntags:\n  - guide\n  - setup\n---\n", string(out))
}

func TestRoundTrip_Stable(t *testing.T) {
	src := []byte("---\nid: setup\ntitle: Setup\n---\n# Setup\n\ntext\n")
	doc, err := Parse(src)
	require.NoError(t, err)

	out, err := doc.Render()
	require.NoError(t, err)
	require.Equal(t, string(src), string(out))
}

func TestTitleAccessors(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: Present\n---\n"))
	require.NoError(t, err)

	title, ok := doc.Title()
	require.True(t, ok)
	require.Equal(t, "Present", title)

	empty := &Document{Fields: map[string]any{"title": ""}}
	_, ok = empty.Title()
	require.False(t, ok)

	nonString := &Document{Fields: map[string]any{"title": 7}}
	_, ok = nonString.Title()
	require.False(t, ok)
}

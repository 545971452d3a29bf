// Package frontmatter parses and rewrites the YAML header block of Markdown
// and MDX documents. Rewrites are stable: keys serialize sorted and the
// source newline style is preserved, so re-rendering an unchanged document
// is a no-op apart from key ordering.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrUnterminatedHeader indicates an opening "---" delimiter without a
// matching closing delimiter.
var ErrUnterminatedHeader = errors.New("frontmatter header is not terminated")

// Style captures the newline shape of the source document so rewrites keep
// it. YAML formatting inside the header is not preserved.
type Style struct {
	Newline string
}

// Document is a Markdown/MDX file split into its YAML fields and body.
type Document struct {
	Fields  map[string]any
	Body    []byte
	Present bool // Whether the source carried a header block.
	style   Style
}

// Parse splits a document into header fields and body. Documents without a
// leading "---" line parse with Present=false and the full input as Body.
func Parse(content []byte) (*Document, error) {
	style := detectStyle(content)
	doc := &Document{Fields: map[string]any{}, Body: content, style: style}

	nl := style.Newline
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return doc, nil
	}

	rest := content[len(open):]

	// An immediately repeated delimiter is an empty header.
	if bytes.HasPrefix(rest, open) {
		doc.Present = true
		doc.Body = rest[len(open):]
		return doc, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return nil, ErrUnterminatedHeader
	}

	raw := rest[:idx+len(nl)]
	if err := yaml.Unmarshal(raw, &doc.Fields); err != nil {
		return nil, err
	}
	if doc.Fields == nil {
		doc.Fields = map[string]any{}
	}
	doc.Present = true
	doc.Body = rest[idx+len(closeSeq):]
	return doc, nil
}

// Render reassembles the document. A header block is emitted whenever the
// source had one or Fields is non-empty; otherwise the body comes back
// untouched.
func (d *Document) Render() ([]byte, error) {
	nl := d.style.Newline
	if nl == "" {
		nl = "\n"
	}

	if !d.Present && len(d.Fields) == 0 {
		return d.Body, nil
	}

	header, err := encodeFields(d.Fields, nl)
	if err != nil {
		return nil, err
	}

	delim := []byte("---" + nl)
	out := make([]byte, 0, 2*len(delim)+len(header)+len(d.Body))
	out = append(out, delim...)
	out = append(out, header...)
	out = append(out, delim...)
	out = append(out, d.Body...)
	return out, nil
}

// Title returns the header title field when it is a non-empty string.
func (d *Document) Title() (string, bool) {
	v, ok := d.Fields["title"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// SetTitle writes the header title field.
func (d *Document) SetTitle(title string) {
	if d.Fields == nil {
		d.Fields = map[string]any{}
	}
	d.Fields["title"] = title
}

func detectStyle(content []byte) Style {
	for i := 0; i < len(content); i++ {
		if content[i] != '\n' {
			continue
		}
		if i > 0 && content[i-1] == '\r' {
			return Style{Newline: "\r\n"}
		}
		return Style{Newline: "\n"}
	}
	return Style{Newline: "\n"}
}

// Package markdown provides read-only analysis of Markdown/MDX bodies:
// link and heading extraction over a Goldmark AST. It never re-renders
// Markdown; content rewriting lives in the conversion pipeline.
package markdown

import (
	gmast "github.com/yuin/goldmark/ast"
)

type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

// Link is one link-like construct found in a body.
type Link struct {
	Kind        LinkKind
	Destination string
}

// Heading is one ATX/setext heading found in a body.
type Heading struct {
	Level int
	Text  string
}

// textOf collects the plain text of a node's inline children.
func textOf(n gmast.Node, source []byte) string {
	var out []byte
	_ = gmast.Walk(n, func(child gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *gmast.Text:
			out = append(out, t.Segment.Value(source)...)
		case *gmast.String:
			out = append(out, t.Value...)
		}
		return gmast.WalkContinue, nil
	})
	return string(out)
}

package markdown

import (
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ExtractHeadings parses a Markdown body and returns its headings in
// document order.
func ExtractHeadings(body []byte) []Heading {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	headings := make([]Heading, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok {
			headings = append(headings, Heading{Level: h.Level, Text: textOf(h, body)})
		}
		return gmast.WalkContinue, nil
	})
	return headings
}

// FirstH1 returns the text of the first level-1 heading when one exists.
func FirstH1(body []byte) (string, bool) {
	for _, h := range ExtractHeadings(body) {
		if h.Level == 1 {
			return h.Text, true
		}
	}
	return "", false
}

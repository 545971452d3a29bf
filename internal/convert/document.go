// Package convert turns a Sphinx/MyST-flavoured documentation tree into the
// MDX form the content store expects. Each file becomes a Document that runs
// through an ordered transform pipeline; the converter walks the tree,
// fingerprints results, and only rewrites files whose content changed.
package convert

import "fmt"

// Document is the in-memory form of one file moving through conversion.
type Document struct {
	RelPath string         // Tree-relative source path
	Fields  map[string]any // Frontmatter fields
	Body    string         // Markdown body, frontmatter stripped
	Header  bool           // Whether the source carried a frontmatter block
}

// Transformer applies one conversion stage to a document.
type Transformer interface {
	Name() string
	Transform(doc *Document) error
}

// Pipeline runs a sequence of transformers.
type Pipeline struct {
	stages []Transformer
}

func NewPipeline(stages ...Transformer) *Pipeline {
	return &Pipeline{stages: stages}
}

func (p *Pipeline) Run(doc *Document) error {
	for _, st := range p.stages {
		if err := st.Transform(doc); err != nil {
			return fmt.Errorf("transform %s: %w", st.Name(), err)
		}
	}
	return nil
}

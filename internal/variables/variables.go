// Package variables parses substitution definitions from a variables.rst
// file (".. |name| replace:: value" directives) and applies them to document
// text. Both "{{ name }}" and "|name|" occurrences substitute; unknown names
// are left untouched.
package variables

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/docpress/docpress/internal/logfields"
)

var (
	defRe    = regexp.MustCompile(`(?m)^\s*\.\.\s+\|([^|]+)\|\s+replace::\s+(.*)$`)
	bracesRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_-]+)\s*\}\}`)
	pipesRe  = regexp.MustCompile(`\|([a-zA-Z0-9_-]+)\|`)
)

// Set is an ordered collection of substitution variables. Definition order
// is preserved for listing and export; lookups are by name.
type Set struct {
	names  []string
	values map[string]string
}

// New returns an empty set.
func New() *Set {
	return &Set{values: make(map[string]string)}
}

// Parse extracts every replace directive from variables.rst content. A name
// defined twice keeps its first position and takes the last value.
func Parse(src []byte) *Set {
	s := New()
	for _, m := range defRe.FindAllSubmatch(src, -1) {
		s.Put(strings.TrimSpace(string(m[1])), strings.TrimSpace(string(m[2])))
	}
	return s
}

// ParseFile parses a variables.rst file. A missing file is not an error:
// substitution is simply skipped, matching the conversion tooling's
// tolerance for trees without a variables file.
func ParseFile(path string) (*Set, error) {
	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Variables file not found, skipping substitution", logfields.Path(path))
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	return Parse(src), nil
}

// FromFields reads a frontmatter "substitutions" mapping into a set. Only
// string values are taken.
func FromFields(fields map[string]any) *Set {
	s := New()
	subs, ok := fields["substitutions"].(map[string]any)
	if !ok {
		return s
	}
	// Frontmatter maps carry no order; sort for determinism.
	for _, name := range sortedKeys(subs) {
		if v, ok := subs[name].(string); ok {
			s.Put(name, v)
		}
	}
	return s
}

// Put defines or redefines a variable.
func (s *Set) Put(name, value string) {
	if _, exists := s.values[name]; !exists {
		s.names = append(s.names, name)
	}
	s.values[name] = value
}

// Get looks up a variable by name.
func (s *Set) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Len reports the number of defined variables.
func (s *Set) Len() int { return len(s.names) }

// Names returns the variable names in definition order.
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Overlay returns a copy of s with defs from other applied on top. Used to
// merge per-document frontmatter substitutions over the global set.
func (s *Set) Overlay(other *Set) *Set {
	merged := New()
	for _, name := range s.names {
		merged.Put(name, s.values[name])
	}
	if other != nil {
		for _, name := range other.names {
			merged.Put(name, other.values[name])
		}
	}
	return merged
}

// Substitute replaces "{{ name }}" and "|name|" occurrences in text.
// Unresolved names stay verbatim, so table rules like "|---|" pass through.
func (s *Set) Substitute(text string) string {
	if s.Len() == 0 {
		return text
	}
	text = bracesRe.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(strings.Trim(match, "{}"))
		if v, ok := s.values[name]; ok {
			return v
		}
		return match
	})
	return pipesRe.ReplaceAllStringFunc(text, func(match string) string {
		if v, ok := s.values[strings.Trim(match, "|")]; ok {
			return v
		}
		return match
	})
}

// MarshalJSON emits a JSON object with keys in definition order.
func (s *Set) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(s.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

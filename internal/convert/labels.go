package convert

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/docpress/docpress/internal/logfields"
)

// LabelIndex maps internal reference labels to their resolved destinations
// ("/docs/path/to/file#label").
type LabelIndex map[string]string

var (
	rstLabelRe  = regexp.MustCompile(`(?m)^\.\.\s*_([a-zA-Z0-9_-]+):\s*$`)
	mystLabelRe = regexp.MustCompile(`(?m)^\(([a-zA-Z0-9_-]+)\)=\s*$`)
	headingIDRe = regexp.MustCompile(`\{#([a-zA-Z0-9_-]+)\}`)
)

// BuildLabelIndex scans every .md/.mdx/.rst file under root and collects
// reference targets in all three syntaxes: ".. _label:", "(label)=", and
// heading IDs "{#label}". Destinations are docsRoute-relative URLs with the
// label as anchor. A label defined twice keeps the last occurrence.
func BuildLabelIndex(root, docsRoute string) (LabelIndex, error) {
	index := make(LabelIndex)
	route := "/" + strings.Trim(docsRoute, "/")

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".md" && ext != ".mdx" && ext != ".rst" {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		baseURL := route + "/" + strings.TrimSuffix(rel, ext)

		text, err := os.ReadFile(p)
		if err != nil {
			return err
		}

		for _, re := range []*regexp.Regexp{rstLabelRe, mystLabelRe, headingIDRe} {
			for _, m := range re.FindAllSubmatch(text, -1) {
				label := strings.TrimSpace(string(m[1]))
				index[label] = baseURL + "#" + label
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Indexed internal reference labels", logfields.Count(len(index)))
	return index, nil
}

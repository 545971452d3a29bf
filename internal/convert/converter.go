package convert

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ferrors "github.com/docpress/docpress/internal/foundation/errors"
	"github.com/docpress/docpress/internal/frontmatter"
	"github.com/docpress/docpress/internal/logfields"
	"github.com/docpress/docpress/internal/variables"
)

// Options configures a conversion run over a local content tree.
type Options struct {
	Root          string // Content tree to convert, walked recursively
	VariablesFile string // Path to variables.rst; empty skips substitution
	GlossaryRoute string // Route term roles link to; empty uses the default
	DocsRoute     string // Route prefix for label index destinations
	DryRun        bool   // Report what would change without writing
}

// Result summarizes a conversion run.
type Result struct {
	Scanned   int `json:"scanned"`
	Converted int `json:"converted"`
	Unchanged int `json:"unchanged"`
	Renamed   int `json:"renamed"`
}

// Run converts every .md/.mdx file under opts.Root in place: pipeline
// transforms, fingerprint upsert, .md files renamed to .mdx. Files whose
// fingerprint still covers their content are left untouched, so re-running
// over a converted tree is a no-op.
func Run(ctx context.Context, opts Options) (*Result, error) {
	vars := variables.New()
	if opts.VariablesFile != "" {
		parsed, err := variables.ParseFile(opts.VariablesFile)
		if err != nil {
			return nil, ferrors.ContentError("failed to load variables file").WithCause(err).Build()
		}
		vars = parsed
	}

	labels, err := BuildLabelIndex(opts.Root, opts.DocsRoute)
	if err != nil {
		return nil, ferrors.ContentError("failed to index reference labels").WithCause(err).Build()
	}

	pipeline := DefaultPipeline(vars, labels, opts.GlossaryRoute)
	res := &Result{}

	err = filepath.WalkDir(opts.Root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != opts.Root {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".md" && ext != ".mdx" {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		res.Scanned++
		return convertFile(p, opts, pipeline, res)
	})
	if err != nil {
		return nil, ferrors.ContentError("conversion walk failed").WithCause(err).Build()
	}

	slog.Info("Conversion finished",
		slog.Int("scanned", res.Scanned),
		slog.Int("converted", res.Converted),
		slog.Int("unchanged", res.Unchanged),
		slog.Int("renamed", res.Renamed))
	return res, nil
}

func convertFile(p string, opts Options, pipeline *Pipeline, res *Result) error {
	src, err := os.ReadFile(p)
	if err != nil {
		return err
	}

	parsed, err := frontmatter.Parse(src)
	if err != nil {
		return ferrors.ContentError("failed to parse frontmatter").
			WithCause(err).
			WithContext("file", p).
			Build()
	}

	rel, err := filepath.Rel(opts.Root, p)
	if err != nil {
		return err
	}

	doc := &Document{
		RelPath: filepath.ToSlash(rel),
		Fields:  parsed.Fields,
		Body:    string(parsed.Body),
		Header:  parsed.Present,
	}
	if err := pipeline.Run(doc); err != nil {
		return ferrors.ContentError("conversion pipeline failed").
			WithCause(err).
			WithContext("file", p).
			Build()
	}

	changed, err := EnsureFingerprint(doc.Fields, doc.Body)
	if err != nil {
		return err
	}

	target := p
	if filepath.Ext(p) == ".md" {
		target = strings.TrimSuffix(p, ".md") + ".mdx"
	}

	if !changed && target == p {
		res.Unchanged++
		return nil
	}

	if target != p {
		res.Renamed++
	}
	res.Converted++
	slog.Debug("Converted document", logfields.File(doc.RelPath))

	if opts.DryRun {
		return nil
	}

	out := frontmatter.Document{Fields: doc.Fields, Body: []byte(doc.Body), Present: true}
	rendered, err := out.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(target, rendered, 0o644); err != nil {
		return ferrors.FileSystemError("failed to write converted document").
			WithCause(err).
			WithContext("file", target).
			Build()
	}
	if target != p {
		if err := os.Remove(p); err != nil {
			return ferrors.FileSystemError("failed to remove renamed source").
				WithCause(err).
				WithContext("file", p).
				Build()
		}
	}
	return nil
}

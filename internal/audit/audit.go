// Package audit checks a local content tree for documents missing a
// frontmatter title, the field the store exposes as the page title. With
// Fix enabled it promotes the first H1 into the header and renames .md
// files to .mdx so the tree matches what the store serves.
package audit

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/docpress/docpress/internal/convert"
	ferrors "github.com/docpress/docpress/internal/foundation/errors"
	"github.com/docpress/docpress/internal/frontmatter"
	"github.com/docpress/docpress/internal/logfields"
)

// Options configures an audit run over a local content tree.
type Options struct {
	Root string // Content tree to audit, walked recursively
	Fix  bool   // Promote H1 titles and rename .md to .mdx
}

// Finding is one document without a frontmatter title.
type Finding struct {
	File  string `json:"file"`            // Tree-relative path
	Fixed bool   `json:"fixed,omitempty"` // Whether a title was promoted
	Title string `json:"title,omitempty"` // The promoted title
}

// Report summarizes an audit run.
type Report struct {
	Scanned  int       `json:"scanned"`
	Missing  int       `json:"missing"`
	Fixed    int       `json:"fixed"`
	Renamed  int       `json:"renamed"`
	Findings []Finding `json:"findings"`
}

// Clean reports whether every scanned document carries a title after the
// run. Without Fix this means no document was missing one to begin with.
func (r *Report) Clean() bool {
	return r.Missing == r.Fixed
}

// Run audits every .md/.mdx file under opts.Root. Documents whose header
// lacks a non-empty title are reported; with Fix the first H1 becomes the
// title and .md files are renamed to .mdx. Documents with neither title
// nor H1 stay in the findings unfixed.
func Run(ctx context.Context, opts Options) (*Report, error) {
	res := &Report{Findings: []Finding{}}

	err := filepath.WalkDir(opts.Root, func(p string, d fs.DirEntry, walkErr error) error {
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
		return auditFile(p, opts, res)
	})
	if err != nil {
		return nil, ferrors.ContentError("audit walk failed").WithCause(err).Build()
	}

	slog.Info("Audit finished",
		slog.Int("scanned", res.Scanned),
		slog.Int("missing", res.Missing),
		slog.Int("fixed", res.Fixed),
		slog.Int("renamed", res.Renamed))
	return res, nil
}

func auditFile(p string, opts Options, res *Report) error {
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
	rel = filepath.ToSlash(rel)

	if _, ok := parsed.Title(); ok {
		if opts.Fix && filepath.Ext(p) == ".md" {
			return renameToMDX(p, res)
		}
		return nil
	}

	res.Missing++
	finding := Finding{File: rel}

	if !opts.Fix {
		res.Findings = append(res.Findings, finding)
		return nil
	}

	doc := &convert.Document{
		RelPath: rel,
		Fields:  parsed.Fields,
		Body:    string(parsed.Body),
		Header:  parsed.Present,
	}
	promoter := &convert.TitlePromoter{}
	if err := promoter.Transform(doc); err != nil {
		return ferrors.ContentError("title promotion failed").
			WithCause(err).
			WithContext("file", p).
			Build()
	}

	title, promoted := doc.Fields["title"].(string)
	if !promoted || title == "" {
		// No H1 to promote. The file still gets its extension fixed.
		res.Findings = append(res.Findings, finding)
		if filepath.Ext(p) == ".md" {
			return renameToMDX(p, res)
		}
		return nil
	}

	target := p
	if filepath.Ext(p) == ".md" {
		target = strings.TrimSuffix(p, ".md") + ".mdx"
		res.Renamed++
	}

	out := frontmatter.Document{Fields: doc.Fields, Body: []byte(doc.Body), Present: true}
	rendered, err := out.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(target, rendered, 0o644); err != nil {
		return ferrors.FileSystemError("failed to write fixed document").
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

	res.Fixed++
	finding.Fixed = true
	finding.Title = title
	res.Findings = append(res.Findings, finding)
	slog.Debug("Promoted title", logfields.File(rel), slog.String("title", title))
	return nil
}

func renameToMDX(p string, res *Report) error {
	target := strings.TrimSuffix(p, ".md") + ".mdx"
	if err := os.Rename(p, target); err != nil {
		return ferrors.FileSystemError("failed to rename document").
			WithCause(err).
			WithContext("file", p).
			Build()
	}
	res.Renamed++
	return nil
}

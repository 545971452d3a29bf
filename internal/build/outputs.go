package build

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	ferrors "github.com/docpress/docpress/internal/foundation/errors"
	"github.com/docpress/docpress/internal/manifest"
	"github.com/docpress/docpress/internal/meta"
	"github.com/docpress/docpress/internal/nav"
	"github.com/docpress/docpress/internal/routes"
	"github.com/docpress/docpress/internal/search"
	"github.com/docpress/docpress/internal/sitemap"
)

type outputsInput struct {
	params  []routes.RouteParam
	tree    *nav.Tree
	pages   []fetchedPage
	entries []search.Entry
	lastMod string
	clean   bool
}

// writeOutputs writes every pre-render input under dir and registers each
// as a manifest artifact: routes.json, nav.json, one meta/<slug>.json per
// document, sitemap.xml and search.json.
func writeOutputs(dir string, m *manifest.BuildManifest, in outputsInput) error {
	if in.clean {
		if err := cleanOutputDir(dir); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ferrors.FileSystemError("failed to create output directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}

	routesJSON, err := marshalJSON(in.params)
	if err != nil {
		return err
	}
	if err := writeArtifact(dir, m, "routes.json", routesJSON); err != nil {
		return err
	}

	navJSON, err := marshalJSON(in.tree)
	if err != nil {
		return err
	}
	if err := writeArtifact(dir, m, "nav.json", navJSON); err != nil {
		return err
	}

	for _, fp := range in.pages {
		data, err := marshalJSON(fp.meta)
		if err != nil {
			return err
		}
		name := "meta/" + routes.JoinSlug(fp.meta.Slug) + ".json"
		if err := writeArtifact(dir, m, name, data); err != nil {
			return err
		}
	}

	pageMetas := make([]*meta.PageMeta, len(in.pages))
	for i, fp := range in.pages {
		pageMetas[i] = fp.meta
	}
	var sitemapBuf bytes.Buffer
	if err := sitemap.Write(&sitemapBuf, sitemap.FromPages(pageMetas, in.lastMod)); err != nil {
		return ferrors.BuildError("failed to render sitemap").WithCause(err).Build()
	}
	if err := writeArtifact(dir, m, "sitemap.xml", sitemapBuf.Bytes()); err != nil {
		return err
	}

	var searchBuf bytes.Buffer
	if err := search.WriteIndex(&searchBuf, in.entries); err != nil {
		return ferrors.BuildError("failed to render search index").WithCause(err).Build()
	}
	return writeArtifact(dir, m, "search.json", searchBuf.Bytes())
}

// writeManifest writes the finished manifest at the output dir root. The
// manifest is not listed as one of its own artifacts.
func writeManifest(dir string, m *manifest.BuildManifest) error {
	data, err := m.ToJSON()
	if err != nil {
		return ferrors.BuildError("failed to encode manifest").WithCause(err).Build()
	}
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return ferrors.FileSystemError("failed to write manifest").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}

// cleanOutputDir removes a previous build's output. Paths that would wipe
// the working tree or the filesystem root are refused.
func cleanOutputDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ferrors.FileSystemError("failed to resolve output directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}
	if abs == string(filepath.Separator) || abs == filepath.Dir(abs) {
		return ferrors.ValidationError(fmt.Sprintf("refusing to clean %q", dir)).Build()
	}
	cwd, err := os.Getwd()
	if err == nil && abs == cwd {
		return ferrors.ValidationError(fmt.Sprintf("refusing to clean the working directory %q", dir)).Build()
	}
	if err := os.RemoveAll(abs); err != nil {
		return ferrors.FileSystemError("failed to clean output directory").
			WithCause(err).
			WithContext("path", abs).
			Build()
	}
	return nil
}

func writeArtifact(dir string, m *manifest.BuildManifest, name string, data []byte) error {
	full := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return ferrors.FileSystemError("failed to create artifact directory").
			WithCause(err).
			WithContext("path", filepath.Dir(full)).
			Build()
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return ferrors.FileSystemError("failed to write artifact").
			WithCause(err).
			WithContext("path", full).
			Build()
	}
	m.AddArtifact(name, data)
	return nil
}

func marshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, ferrors.BuildError("failed to encode build output").WithCause(err).Build()
	}
	return append(data, '\n'), nil
}

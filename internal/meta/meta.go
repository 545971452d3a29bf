// Package meta derives per-route page metadata from content store records.
// Deriving metadata from a record is a pure transform; the same record and
// slug always produce the same PageMeta.
package meta

import (
	"context"
	"errors"
	"fmt"

	"github.com/docpress/docpress/internal/config"
	"github.com/docpress/docpress/internal/routes"
	"github.com/docpress/docpress/internal/store"
	serrors "github.com/docpress/docpress/internal/store/errors"
)

// PageMeta is the head-tag input for one documentation route.
type PageMeta struct {
	Slug         []string `json:"slug"`
	Route        string   `json:"route"`
	StoragePath  string   `json:"storagePath"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	CanonicalURL string   `json:"canonicalUrl"`
}

// Resolver looks up a single document per slug and derives its metadata.
type Resolver struct {
	store       store.Client
	site        config.SiteConfig
	contentRoot string
}

// NewResolver creates a metadata resolver. contentRoot is the store subtree
// prefix slugs were derived from; site supplies the canonical URL parts.
func NewResolver(client store.Client, site config.SiteConfig, contentRoot string) *Resolver {
	return &Resolver{store: client, site: site, contentRoot: contentRoot}
}

// Resolve fetches the record behind a slug and derives its metadata. The
// ".mdx" storage path is tried first, then ".md". A slug matching neither
// surfaces the store's not-found sentinel for the rendering layer to map.
func (r *Resolver) Resolve(ctx context.Context, slug []string) (*PageMeta, error) {
	rec, err := r.FetchRecord(ctx, slug)
	if err != nil {
		return nil, err
	}
	return r.FromRecord(rec, slug), nil
}

// FetchRecord retrieves the record behind a slug without deriving metadata,
// for callers that also need the document body. Same ".mdx" then ".md"
// lookup order as Resolve.
func (r *Resolver) FetchRecord(ctx context.Context, slug []string) (*store.ContentRecord, error) {
	if len(slug) == 0 {
		return nil, fmt.Errorf("resolve metadata: empty slug")
	}

	base := routes.JoinSlug(slug)
	if r.contentRoot != "" {
		base = r.contentRoot + "/" + base
	}

	rec, err := r.store.GetDocument(ctx, base+".mdx")
	if errors.Is(err, serrors.ErrDocumentNotFound) {
		rec, err = r.store.GetDocument(ctx, base+".md")
	}
	if err != nil {
		return nil, fmt.Errorf("resolve metadata for %q: %w", routes.JoinSlug(slug), err)
	}
	return rec, nil
}

// FromRecord derives metadata from an already-fetched record. The record's
// own SEO fields win; anything the record omits falls back to a derived
// default. The canonical URL defaults to site URL + base path + docs route +
// slug only when the record does not carry one.
func (r *Resolver) FromRecord(rec *store.ContentRecord, slug []string) *PageMeta {
	slugPath := routes.JoinSlug(slug)

	m := &PageMeta{
		Slug:        slug,
		Route:       r.site.RoutePath(slugPath),
		StoragePath: rec.StoragePath,
		Title:       rec.Title,
		Description: rec.Description,
	}

	if rec.SEO != nil {
		if rec.SEO.Title != "" {
			m.Title = rec.SEO.Title
		}
		if rec.SEO.Description != "" {
			m.Description = rec.SEO.Description
		}
		m.CanonicalURL = rec.SEO.CanonicalURL
	}
	if m.Title == "" {
		m.Title = slug[len(slug)-1]
	}
	if m.CanonicalURL == "" {
		m.CanonicalURL = r.site.DocURL(slugPath)
	}
	return m
}

// Package routes enumerates every document in the content store and derives
// the route parameters a static site generator needs to pre-render them.
//
// Resolution walks the store's cursor-paginated listing strictly
// sequentially: each fetch depends on the previous page's end cursor, so the
// walk is never issued concurrently. Output preserves store order, page by
// page, edge by edge. No state is kept between runs; every build resolves
// from scratch.
package routes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docpress/docpress/internal/logfields"
	rerrors "github.com/docpress/docpress/internal/routes/errors"
	"github.com/docpress/docpress/internal/store"
)

// maxPages bounds the pagination walk. A listing that still reports
// hasNextPage past this point is treated as a fetch failure rather than
// looped on forever.
const maxPages = 1000

// RouteParam is the pre-render parameter set for one documentation page.
type RouteParam struct {
	Slug []string `json:"slug"`
}

// Resolution is the outcome of one resolve run. Routes holds everything
// derived before the first failure, so a caller that can tolerate a partial
// build inspects Err and decides; strict callers use Complete.
type Resolution struct {
	Routes []RouteParam
	Pages  int
	Err    error
}

// Complete reports whether the whole listing was walked without failure.
func (r Resolution) Complete() bool { return r.Err == nil }

// Resolver derives route parameters from the content store listing.
type Resolver struct {
	store       store.Client
	contentRoot string
}

// NewResolver creates a resolver over the given store client. contentRoot is
// the subtree prefix stripped from storage paths when deriving slugs.
func NewResolver(client store.Client, contentRoot string) *Resolver {
	return &Resolver{store: client, contentRoot: contentRoot}
}

// Resolve walks the full document listing and derives one RouteParam per
// usable record. Records without a usable storage path are skipped, never
// fatal. A failed page fetch stops the walk; routes gathered before the
// failure stay in the result alongside Err.
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	var (
		routes  []RouteParam
		cursor  string
		pages   int
		skipped int
	)

	for {
		if pages >= maxPages {
			return Resolution{
				Routes: routes,
				Pages:  pages,
				Err:    fmt.Errorf("%w: %d pages without a final page", rerrors.ErrPageLimitExceeded, pages),
			}
		}

		page, err := r.store.ListDocuments(ctx, cursor)
		if err != nil {
			return Resolution{
				Routes: routes,
				Pages:  pages,
				Err:    fmt.Errorf("list documents (page %d): %w", pages+1, err),
			}
		}
		pages++

		for _, rec := range page.Edges {
			slug, ok := SlugFromStoragePath(rec.StoragePath, r.contentRoot)
			if !ok {
				skipped++
				slog.Debug("Skipping record without usable storage path", logfields.Path(rec.StoragePath))
				continue
			}
			routes = append(routes, RouteParam{Slug: slug})
		}

		if !page.PageInfo.HasNextPage {
			break
		}
		cursor = page.PageInfo.EndCursor
	}

	slog.Debug("Content routes resolved",
		logfields.Count(len(routes)),
		logfields.Page(pages),
		slog.Int("skipped", skipped))

	return Resolution{Routes: routes, Pages: pages}
}

// ResolveAll is the strict surface: the complete route set or an error,
// never a partial set.
func (r *Resolver) ResolveAll(ctx context.Context) ([]RouteParam, error) {
	res := r.Resolve(ctx)
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Routes, nil
}

// StaticParams is the generator-facing surface. Failures never escape it:
// one diagnostic entry is logged and an empty (non-nil) slice comes back, so
// a transient store error degrades the build to zero pre-rendered pages
// instead of failing it.
func (r *Resolver) StaticParams(ctx context.Context) []RouteParam {
	res := r.Resolve(ctx)
	if res.Err != nil {
		slog.Error("Route resolution failed, generating no routes",
			logfields.Error(res.Err),
			logfields.Page(res.Pages))
		return []RouteParam{}
	}
	return res.Routes
}

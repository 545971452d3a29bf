// Package store models the external content store holding documentation
// source records and provides the HTTP client used to read them. Records are
// fetched fresh on every generation run; nothing in this package caches
// across runs.
package store

// ContentRecord represents one stored document. StoragePath is root-relative
// and includes the file extension; the remaining fields are opaque content
// the path resolver never interprets. Records are created and owned by the
// external content store and are read-only here.
type ContentRecord struct {
	StoragePath string     `json:"storagePath"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Body        string     `json:"body,omitempty"`
	SEO         *SEORecord `json:"seo,omitempty"`
}

// SEORecord carries optional per-document metadata overrides. A nil SEO on a
// record means every field falls back to a derived default.
type SEORecord struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	CanonicalURL string `json:"canonicalUrl,omitempty"`
}

// PageInfo is the cursor bookkeeping attached to each listing page. An empty
// EndCursor models the null cursor.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// Page is one cursor-paginated slice of the document listing. Edge order is
// defined by the store and assumed stable across calls within a single
// generation run.
type Page struct {
	Edges    []ContentRecord `json:"edges"`
	PageInfo PageInfo        `json:"pageInfo"`
}

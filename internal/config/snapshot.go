package config

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Snapshot computes a stable hash of build-affecting normalized configuration
// fields. It is intentionally narrower than full serialization so unrelated
// config edits (logging, daemon schedule) do not read as content changes.
// Callers SHOULD run Normalize + applyDefaults before computing a snapshot.
func (c *Config) Snapshot() string {
	if c == nil {
		return ""
	}
	h := sha256.New()
	w := func(parts ...string) {
		h.Write([]byte(strings.Join(parts, "=")))
		h.Write([]byte{0})
	}
	w("site.url", c.Site.URL)
	w("site.base_path", c.Site.BasePath)
	w("site.docs_route", c.Site.DocsRoute)
	w("store.endpoint", c.Store.Endpoint)
	w("store.branch", c.Store.Branch)
	w("store.content_root", c.Store.ContentRoot)
	w("store.page_size", strconv.Itoa(c.Store.PageSize))
	w("build.output_dir", c.Build.OutputDir)
	w("build.strict", strconv.FormatBool(c.Build.Strict))
	if c.Search != nil {
		w("search.index_name", c.Search.IndexName)
	}
	return hex.EncodeToString(h.Sum(nil))
}

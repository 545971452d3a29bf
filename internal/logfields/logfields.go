package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyComponent  = "component"
	KeyBuildID    = "build_id"
	KeyBranch     = "branch"
	KeyCursor     = "cursor"
	KeyPage       = "page"
	KeyCount      = "count"
	KeyRoute      = "route"
	KeySlug       = "slug"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyURL        = "url"
	KeyEndpoint   = "endpoint"
	KeyStatus     = "status"
	KeyDurationMS = "duration_ms"
	KeyIndex      = "index"
	KeySubject    = "subject"
	KeyWarning    = "warning"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Cursor(c string) slog.Attr       { return slog.String(KeyCursor, c) }
func Page(n int) slog.Attr            { return slog.Int(KeyPage, n) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Route(r string) slog.Attr        { return slog.String(KeyRoute, r) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Endpoint(e string) slog.Attr     { return slog.String(KeyEndpoint, e) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func Index(name string) slog.Attr     { return slog.String(KeyIndex, name) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }
func Warning(w string) slog.Attr      { return slog.String(KeyWarning, w) }

func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000.0)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

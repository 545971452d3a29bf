// Package linkcheck audits cross-document links in fetched content records.
// Markdown links come from the goldmark AST, embedded HTML references from
// an x/net/html walk; internal targets are verified against the resolved
// route set. External URLs are never fetched.
package linkcheck

import (
	"net/url"
	"path"
	"strings"

	"github.com/docpress/docpress/internal/config"
	"github.com/docpress/docpress/internal/markdown"
	"github.com/docpress/docpress/internal/routes"
)

// Issue is one broken internal reference.
type Issue struct {
	Route  string `json:"route"`  // page the link was found on
	Target string `json:"target"` // link target as written
	Reason string `json:"reason"`
}

// Report summarizes a link audit across all pages of a build.
type Report struct {
	Pages   int     `json:"pages"`
	Links   int     `json:"links"`
	Checked int     `json:"checked"`
	Issues  []Issue `json:"issues"`
}

// Clean reports whether the audit found no broken links.
func (r *Report) Clean() bool {
	return len(r.Issues) == 0
}

// Page is one fetched record to audit.
type Page struct {
	Slug []string
	Body []byte
}

// Checker verifies internal links against a resolved route set.
type Checker struct {
	routeSet map[string]struct{}
	site     config.SiteConfig
	siteHost string
}

// NewChecker builds a checker over the routes of one resolution run.
func NewChecker(params []routes.RouteParam, site config.SiteConfig) *Checker {
	set := make(map[string]struct{}, len(params))
	for _, p := range params {
		set[site.RoutePath(routes.JoinSlug(p.Slug))] = struct{}{}
	}
	host := ""
	if u, err := url.Parse(site.URL); err == nil {
		host = u.Host
	}
	return &Checker{routeSet: set, site: site, siteHost: host}
}

// Check audits every page and aggregates the report. Issues keep page
// order, so a build writes a stable report for unchanged content.
func (c *Checker) Check(pages []Page) *Report {
	report := &Report{Pages: len(pages), Issues: []Issue{}}

	for _, page := range pages {
		pageRoute := c.site.RoutePath(routes.JoinSlug(page.Slug))
		for _, target := range collectTargets(page.Body) {
			report.Links++
			route, verifiable := c.normalizeTarget(target, pageRoute)
			if !verifiable {
				continue
			}
			report.Checked++
			if _, ok := c.routeSet[route]; !ok {
				report.Issues = append(report.Issues, Issue{
					Route:  pageRoute,
					Target: target,
					Reason: "route not found",
				})
			}
		}
	}
	return report
}

// collectTargets gathers link destinations from both the markdown AST and
// any embedded HTML. The two passes do not overlap: raw HTML is opaque to
// the markdown walk and markdown syntax is plain text to the HTML parser.
func collectTargets(body []byte) []string {
	var targets []string
	for _, l := range markdown.ExtractLinks(body) {
		targets = append(targets, l.Destination)
	}
	targets = append(targets, htmlTargets(body)...)
	return targets
}

// normalizeTarget maps a written link onto a route path. The second return
// is false for targets outside the audit's scope: external hosts, special
// protocols, bare fragments and non-documentation site paths such as assets.
func (c *Checker) normalizeTarget(raw, pageRoute string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch u.Scheme {
	case "":
		// relative or site-absolute
	case "http", "https":
		if u.Host != c.siteHost {
			return "", false
		}
	default:
		// mailto, tel, javascript, data
		return "", false
	}

	p := u.Path
	if p == "" || isAssetPath(p) {
		return "", false
	}

	if strings.HasPrefix(p, "/") {
		if base := c.site.BasePath; base != "" && base != "/" {
			if p == base {
				p = "/"
			} else if strings.HasPrefix(p, base+"/") {
				p = strings.TrimPrefix(p, base)
			}
		}
		docs := c.site.DocsRoute
		if p != docs && !strings.HasPrefix(p, docs+"/") {
			return "", false
		}
	} else {
		p = path.Join(path.Dir(pageRoute), p)
	}

	p = strings.TrimSuffix(p, "/")
	p = strings.TrimSuffix(p, ".mdx")
	p = strings.TrimSuffix(p, ".md")
	return p, true
}

var assetExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".webp": {}, ".ico": {},
	".css": {}, ".js": {}, ".json": {}, ".txt": {}, ".xml": {}, ".pdf": {}, ".zip": {},
	".mp3": {}, ".mp4": {}, ".webm": {}, ".woff": {}, ".woff2": {},
}

// isAssetPath reports whether the target names a static asset rather than a
// page. Relative asset references would otherwise be joined onto the page
// route and reported as missing pages.
func isAssetPath(p string) bool {
	_, ok := assetExtensions[strings.ToLower(path.Ext(p))]
	return ok
}

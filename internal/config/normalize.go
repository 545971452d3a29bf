package config

import (
	"fmt"
	"net/url"
	"strings"
)

const maxPageSize = 500

// Normalize canonicalizes user-supplied values in place and returns warnings
// for anything it adjusted or flagged. Deployment inconsistencies (a doubled
// sub-path prefix) are reported but deliberately never rewritten: docpress
// joins URLs exactly one way and compensating here would mask the real bug.
func Normalize(c *Config) []string {
	var warnings []string

	c.Site.URL = strings.TrimRight(strings.TrimSpace(c.Site.URL), "/")
	c.Store.Endpoint = strings.TrimRight(strings.TrimSpace(c.Store.Endpoint), "/")
	c.Store.Branch = strings.TrimSpace(c.Store.Branch)

	var w []string
	c.Site.BasePath, w = normalizeRoutePrefix("site.base_path", c.Site.BasePath)
	warnings = append(warnings, w...)
	c.Site.DocsRoute, w = normalizeRoutePrefix("site.docs_route", c.Site.DocsRoute)
	warnings = append(warnings, w...)

	root := strings.Trim(strings.TrimSpace(c.Store.ContentRoot), "/")
	if root != c.Store.ContentRoot {
		warnings = append(warnings, fmt.Sprintf("store.content_root %q normalized to %q", c.Store.ContentRoot, root))
	}
	c.Store.ContentRoot = root

	if c.Store.PageSize > maxPageSize {
		warnings = append(warnings, fmt.Sprintf("store.page_size %d exceeds maximum, clamped to %d", c.Store.PageSize, maxPageSize))
		c.Store.PageSize = maxPageSize
	}

	c.Logging.Level, w = NormalizeLogLevel(string(c.Logging.Level))
	warnings = append(warnings, w...)
	c.Logging.Format, w = NormalizeLogFormat(string(c.Logging.Format))
	warnings = append(warnings, w...)

	warnings = append(warnings, flagSubPathInconsistencies(c)...)

	return warnings
}

// normalizeRoutePrefix canonicalizes a route prefix to "/name" form; "" and
// "/" both mean the site root.
func normalizeRoutePrefix(field, raw string) (string, []string) {
	p := strings.TrimSpace(raw)
	if p == "" || p == "/" {
		return "", nil
	}
	cleaned := "/" + strings.Trim(p, "/")
	if cleaned == p {
		return p, nil
	}
	return cleaned, []string{fmt.Sprintf("%s %q normalized to %q", field, raw, cleaned)}
}

// flagSubPathInconsistencies detects the doubled base-path deployments seen in
// the wild, where the sub-path prefix is configured in more than one place and
// the slug join gets padded to compensate. These are configuration bugs; they
// are surfaced as warnings and left untouched.
func flagSubPathInconsistencies(c *Config) []string {
	var warnings []string

	if c.Site.BasePath == "" {
		return nil
	}

	if u, err := url.Parse(c.Site.URL); err == nil && u.Path != "" && u.Path != "/" {
		sitePath := "/" + strings.Trim(u.Path, "/")
		if sitePath == c.Site.BasePath || strings.HasSuffix(sitePath, c.Site.BasePath) {
			warnings = append(warnings, fmt.Sprintf(
				"site.url path %q already ends with site.base_path %q; canonical URLs would repeat the prefix (docpress does not compensate)",
				u.Path, c.Site.BasePath))
		}
	}

	if c.Store.ContentRoot != "" && "/"+c.Store.ContentRoot == c.Site.BasePath {
		warnings = append(warnings, fmt.Sprintf(
			"store.content_root %q equals site.base_path %q; slugs would carry the deployment prefix as their first segment",
			c.Store.ContentRoot, c.Site.BasePath))
	}

	return warnings
}

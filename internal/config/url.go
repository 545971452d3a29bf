package config

import "strings"

// DocURL returns the absolute canonical URL for a documentation slug path
// ("guides/setup"). There is exactly one join strategy: origin, base path,
// docs route, slug. Deployments whose site URL already repeats the base path
// are flagged by Normalize and are not compensated for here.
func (s SiteConfig) DocURL(slugPath string) string {
	return joinURL(s.URL, s.BasePath, s.DocsRoute, slugPath)
}

// RoutePath returns the site-relative route for a slug path, e.g.
// "/docs/guides/setup". The base path is a deployment concern and is not
// part of the route.
func (s SiteConfig) RoutePath(slugPath string) string {
	return "/" + strings.TrimPrefix(joinURL("", s.DocsRoute, slugPath), "/")
}

func joinURL(origin string, parts ...string) string {
	u := strings.TrimRight(origin, "/")
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		u += "/" + p
	}
	return u
}

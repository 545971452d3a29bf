package routes

import "strings"

// SlugFromStoragePath derives URL path segments from a store-relative storage
// path. It strips one trailing markdown extension (".mdx" preferred over
// ".md", matched case-sensitively), removes the configured content root when
// it leads the path, and splits the remainder on "/" dropping empty segments.
//
// The second return value is false when the record yields no usable slug
// (empty storage path, or nothing left after stripping), in which case the
// caller skips the record.
func SlugFromStoragePath(storagePath, contentRoot string) ([]string, bool) {
	if storagePath == "" {
		return nil, false
	}

	p := strings.TrimSuffix(storagePath, ".mdx")
	if p == storagePath {
		p = strings.TrimSuffix(p, ".md")
	}

	// Root stripping is segment-aware: "docs" must not eat into "docsite".
	root := strings.Trim(contentRoot, "/")
	switch {
	case root == "":
		// No configured root, keep the full path.
	case p == root:
		p = ""
	case strings.HasPrefix(p, root+"/"):
		p = p[len(root)+1:]
	}

	parts := strings.Split(p, "/")
	slug := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			slug = append(slug, part)
		}
	}
	if len(slug) == 0 {
		return nil, false
	}
	return slug, true
}

// JoinSlug renders a slug back into its relative path form ("a/b/c").
func JoinSlug(slug []string) string {
	return strings.Join(slug, "/")
}

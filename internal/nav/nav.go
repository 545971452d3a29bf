// Package nav computes the navigation tree for a resolved route set and
// per-page tables of contents from markdown headings.
package nav

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/docpress/docpress/internal/config"
	"github.com/docpress/docpress/internal/routes"
)

// Item is one navigation node. Leaf items carry the route of a page;
// interior items group their children by path segment.
type Item struct {
	Title    string   `json:"title"`
	Route    string   `json:"route,omitempty"`
	Slug     []string `json:"slug,omitempty"`
	Children []*Item  `json:"children,omitempty"`

	segment string
}

// Tree is the full navigation structure, ordered the way routes were
// resolved (store order, not alphabetical).
type Tree struct {
	Items []*Item `json:"items"`
}

var segmentTitler = cases.Title(language.English)

// Build assembles the navigation tree. titles maps slug paths ("a/b") to
// page titles; untitled pages and interior nodes fall back to a humanized
// path segment.
func Build(params []routes.RouteParam, titles map[string]string, site config.SiteConfig) *Tree {
	tree := &Tree{Items: []*Item{}}

	for _, param := range params {
		insert(tree, param, titles, site)
	}
	return tree
}

func insert(tree *Tree, param routes.RouteParam, titles map[string]string, site config.SiteConfig) {
	level := &tree.Items

	for i, seg := range param.Slug {
		last := i == len(param.Slug)-1

		node := findChild(*level, seg)
		if node == nil {
			node = &Item{Title: humanizeSegment(seg), segment: seg}
			*level = append(*level, node)
		}

		if last {
			slugPath := routes.JoinSlug(param.Slug)
			if title, ok := titles[slugPath]; ok && title != "" {
				node.Title = title
			}
			node.Route = site.RoutePath(slugPath)
			node.Slug = append([]string(nil), param.Slug...)
		}
		level = &node.Children
	}
}

func findChild(items []*Item, seg string) *Item {
	for _, it := range items {
		if it.segment == seg {
			return it
		}
	}
	return nil
}

func humanizeSegment(seg string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	return segmentTitler.String(s)
}

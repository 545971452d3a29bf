// Package glossary handles glossary term roles and glossary page cleanup.
//
// Term roles come in two syntaxes, {term}`...` and :term:`...`, with an
// optional explicit target: {term}`Label<Glossary Entry>`. Both rewrite to a
// Markdown link onto the glossary route with a slugified anchor.
package glossary

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultRoute is the glossary page route anchors point at.
const DefaultRoute = "/docs/resources/glossary"

var (
	termCurlyRe = regexp.MustCompile("\\{term\\}`([^`]+)`")
	termColonRe = regexp.MustCompile(":term:`([^`]+)`")
	labelSlugRe = regexp.MustCompile(`^([^<]+)<([^>]+)>$`)
)

// Slugify derives a glossary anchor from a term: diacritics fold to their
// ASCII base, the rest lowercases, and every non-alphanumeric drops, so
// "Identity Provider" becomes "identityprovider".
func Slugify(term string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, term)
	if err != nil {
		folded = term
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LinkFor renders a term role's inner text as a Markdown glossary link.
// "Label<Target Entry>" links Label to the Target Entry anchor; a bare term
// is its own target.
func LinkFor(inner, route string) string {
	label := strings.TrimSpace(inner)
	target := label
	if m := labelSlugRe.FindStringSubmatch(inner); m != nil {
		label = strings.TrimSpace(m[1])
		target = strings.TrimSpace(m[2])
	}
	return fmt.Sprintf("[%s](%s#%s)", label, route, Slugify(target))
}

// RewriteTermRoles converts every term role in text into a glossary link.
func RewriteTermRoles(text, route string) string {
	if route == "" {
		route = DefaultRoute
	}
	text = termCurlyRe.ReplaceAllStringFunc(text, func(match string) string {
		return LinkFor(termCurlyRe.FindStringSubmatch(match)[1], route)
	})
	return termColonRe.ReplaceAllStringFunc(text, func(match string) string {
		return LinkFor(termColonRe.FindStringSubmatch(match)[1], route)
	})
}

package convert

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/docpress/docpress/internal/glossary"
	"github.com/docpress/docpress/internal/variables"
)

// DefaultPipeline assembles the standard conversion chain in the order the
// stages depend on each other: variables expand first so later stages see
// final text, roles and directives convert next, admonitions and page
// cleanup last.
func DefaultPipeline(vars *variables.Set, labels LabelIndex, glossaryRoute string) *Pipeline {
	return NewPipeline(
		&VariableSubstituter{Vars: vars},
		&RSTLinkRewriter{},
		&TermRoleRewriter{Route: glossaryRoute},
		&RefRoleResolver{Labels: labels},
		&ToctreeRemover{},
		&EvalRSTConverter{},
		&ImageFenceConverter{},
		&AdmonitionConverter{},
		&GlossaryPageCleaner{},
		&TitlePromoter{},
	)
}

// VariableSubstituter expands "{{ name }}" and "|name|" occurrences using
// the global set overlaid with the document's own frontmatter substitutions.
type VariableSubstituter struct {
	Vars *variables.Set
}

func (t *VariableSubstituter) Name() string { return "variables" }

func (t *VariableSubstituter) Transform(doc *Document) error {
	vars := t.Vars
	if vars == nil {
		vars = variables.New()
	}
	doc.Body = vars.Overlay(variables.FromFields(doc.Fields)).Substitute(doc.Body)
	return nil
}

var rstLinkRe = regexp.MustCompile("`([^`]+?)\\s*<([^>]+)>`_{1,2}")

// RSTLinkRewriter converts RST inline links `text <url>`__ into [text](url).
type RSTLinkRewriter struct{}

func (t *RSTLinkRewriter) Name() string { return "rst_links" }

func (t *RSTLinkRewriter) Transform(doc *Document) error {
	doc.Body = rstLinkRe.ReplaceAllStringFunc(doc.Body, func(match string) string {
		m := rstLinkRe.FindStringSubmatch(match)
		return fmt.Sprintf("[%s](%s)", strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
	})
	return nil
}

// TermRoleRewriter converts {term}`...` and :term:`...` roles into glossary
// links.
type TermRoleRewriter struct {
	Route string
}

func (t *TermRoleRewriter) Name() string { return "term_roles" }

func (t *TermRoleRewriter) Transform(doc *Document) error {
	doc.Body = glossary.RewriteTermRoles(doc.Body, t.Route)
	return nil
}

var (
	refColonRe = regexp.MustCompile(":ref:`([^`]+)`")
	refCurlyRe = regexp.MustCompile("\\{ref\\}`([^`]+)`")
	refInnerRe = regexp.MustCompile(`^([^<]+)<([^>]+)>$`)
)

// RefRoleResolver converts :ref:`text<label>` and {ref}`label` roles into
// links resolved against the label index. Unresolved labels fall back to a
// same-page anchor so the link text survives.
type RefRoleResolver struct {
	Labels LabelIndex
}

func (t *RefRoleResolver) Name() string { return "ref_roles" }

func (t *RefRoleResolver) Transform(doc *Document) error {
	resolve := func(match, inner string) string {
		text := strings.TrimSpace(inner)
		label := text
		if m := refInnerRe.FindStringSubmatch(inner); m != nil {
			text = strings.TrimSpace(m[1])
			label = strings.TrimSpace(m[2])
		}
		if dest, ok := t.Labels[label]; ok {
			return fmt.Sprintf("[%s](%s)", text, dest)
		}
		return fmt.Sprintf("[%s](#%s)", text, label)
	}

	doc.Body = refColonRe.ReplaceAllStringFunc(doc.Body, func(match string) string {
		return resolve(match, refColonRe.FindStringSubmatch(match)[1])
	})
	doc.Body = refCurlyRe.ReplaceAllStringFunc(doc.Body, func(match string) string {
		return resolve(match, refCurlyRe.FindStringSubmatch(match)[1])
	})
	return nil
}

var toctreeRe = regexp.MustCompile("(?s)```\\{toctree\\}.*?```")

// ToctreeRemover drops toctree fences entirely; they only drive Sphinx
// navigation.
type ToctreeRemover struct{}

func (t *ToctreeRemover) Name() string { return "toctree" }

func (t *ToctreeRemover) Transform(doc *Document) error {
	doc.Body = toctreeRe.ReplaceAllString(doc.Body, "")
	return nil
}

var (
	imageFenceRe = regexp.MustCompile("(?ms)^([ \\t]*)```\\{image\\}[ \\t]+(\\S+)[ \\t]*\\n(.*?)\\n[ \\t]*```")
	altOptionRe  = regexp.MustCompile(`:alt:\s+(.*)`)
)

// ImageFenceConverter turns MyST image fences into plain Markdown images,
// keeping the :alt: option as alt text.
type ImageFenceConverter struct{}

func (t *ImageFenceConverter) Name() string { return "image_fences" }

func (t *ImageFenceConverter) Transform(doc *Document) error {
	doc.Body = imageFenceRe.ReplaceAllStringFunc(doc.Body, func(match string) string {
		m := imageFenceRe.FindStringSubmatch(match)
		indent, src, options := m[1], strings.TrimSpace(m[2]), m[3]
		alt := ""
		if am := altOptionRe.FindStringSubmatch(options); am != nil {
			alt = strings.TrimSpace(am[1])
		}
		return fmt.Sprintf("%s![%s](%s)", indent, alt, src)
	})
	return nil
}

var admonitionRe = regexp.MustCompile(`(?is):::\{?(note|warning|tip|important|caution)\}?[ \t]*\n(.*?)\n:::`)

// admonitionVariants maps directive names onto callout variants.
var admonitionVariants = map[string]string{
	"note":      "info",
	"important": "info",
	"warning":   "warning",
	"caution":   "warning",
	"tip":       "idea",
}

// AdmonitionConverter rewrites MyST admonition blocks as Callout components.
type AdmonitionConverter struct{}

func (t *AdmonitionConverter) Name() string { return "admonitions" }

func (t *AdmonitionConverter) Transform(doc *Document) error {
	doc.Body = admonitionRe.ReplaceAllStringFunc(doc.Body, func(match string) string {
		m := admonitionRe.FindStringSubmatch(match)
		variant, ok := admonitionVariants[strings.ToLower(m[1])]
		if !ok {
			variant = "info"
		}
		body := strings.Trim(m[2], "\n")
		return fmt.Sprintf("<Callout variant=%q>\n\n%s\n\n</Callout>", variant, body)
	})
	return nil
}

// GlossaryPageCleaner normalizes the glossary page itself; every other file
// passes through untouched.
type GlossaryPageCleaner struct{}

func (t *GlossaryPageCleaner) Name() string { return "glossary_page" }

func (t *GlossaryPageCleaner) Transform(doc *Document) error {
	base := path.Base(doc.RelPath)
	if name := strings.TrimSuffix(base, path.Ext(base)); name != "glossary" {
		return nil
	}
	doc.Body = string(glossary.CleanPage([]byte(doc.Body)))
	return nil
}

var h1Re = regexp.MustCompile(`(?m)^#[ \t]+(.+?)[ \t]*$`)

// TitlePromoter lifts the first H1 into the frontmatter title and strips it
// from the body. Documents that already carry a title keep it.
type TitlePromoter struct{}

func (t *TitlePromoter) Name() string { return "title_promotion" }

func (t *TitlePromoter) Transform(doc *Document) error {
	if title, ok := doc.Fields["title"].(string); ok && title != "" {
		return nil
	}

	loc := h1Re.FindStringSubmatchIndex(doc.Body)
	if loc == nil {
		return nil
	}

	if doc.Fields == nil {
		doc.Fields = map[string]any{}
	}
	doc.Fields["title"] = strings.TrimSpace(doc.Body[loc[2]:loc[3]])
	doc.Body = strings.TrimLeft(doc.Body[:loc[0]]+doc.Body[loc[1]:], "\n")
	return nil
}

package convert

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	evalRSTRe      = regexp.MustCompile("(?s)```\\{eval-rst\\}[ \\t]*\\n(.*?)\\n```")
	dropdownRe     = regexp.MustCompile(`^\s*\.\.\s+dropdown::\s+(.*)$`)
	rstImageRe     = regexp.MustCompile(`^\s*\.\.\s+image::\s+(.+)$`)
	rstImageOptRe  = regexp.MustCompile(`^\s*:\w+:`)
	rstImageAltRe  = regexp.MustCompile(`^\s*:alt:\s+(.*)$`)
	rstListMarkRe  = regexp.MustCompile(`(?m)^#\.\s+`)
	orderedItemRe  = regexp.MustCompile(`^(\s*)1\.\s+(.*)$`)
	bulletPrefixRe = regexp.MustCompile(`^[-*]\s+`)
)

// EvalRSTConverter handles ```{eval-rst}``` fences. Dropdown directives
// become the accordion embed; the variables include is dropped because
// substitution already ran; anything else is replaced by a marker comment.
// Dropdown parsing is intentionally shallow, not a full RST parser.
type EvalRSTConverter struct{}

func (t *EvalRSTConverter) Name() string { return "eval_rst" }

func (t *EvalRSTConverter) Transform(doc *Document) error {
	doc.Body = evalRSTRe.ReplaceAllStringFunc(doc.Body, func(match string) string {
		inner := evalRSTRe.FindStringSubmatch(match)[1]
		return convertEvalRST(inner)
	})
	return nil
}

func convertEvalRST(inner string) string {
	if strings.Contains(inner, ".. include::") && strings.Contains(inner, "variables.rst") {
		return ""
	}
	if !strings.Contains(inner, ".. dropdown::") {
		return "<!-- dropped unknown eval-rst block -->"
	}

	lines := strings.Split(inner, "\n")
	heading := "Details"
	var content []string
	found := false
	for i, line := range lines {
		if m := dropdownRe.FindStringSubmatch(line); m != nil {
			heading = strings.TrimSpace(m[1])
			content = lines[i+1:]
			found = true
			break
		}
	}
	if !found {
		return "<!-- malformed dropdown eval-rst block -->"
	}

	content = dedent(content)
	content = rstImagesToMarkdown(content)
	content = trimBlankEdges(content)

	text := strings.Join(content, "\n")
	text = rstListMarkRe.ReplaceAllString(text, "1. ")
	text = renumberOrderedList(text)

	safeHeading := strings.ReplaceAll(heading, `"`, `\"`)
	return fmt.Sprintf("<accordion\n  heading=\"%s\"\n  docText={<>\n%s\n  </>}\n  image=\"\"\n  fullWidth={false}\n/>", safeHeading, text)
}

// dedent removes the common leading space indentation of non-blank lines.
func dedent(lines []string) []string {
	min := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if min < 0 || indent < min {
			min = indent
		}
	}
	if min <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if len(line) >= min {
			out[i] = line[min:]
		} else {
			out[i] = line
		}
	}
	return out
}

// rstImagesToMarkdown converts ".. image:: path" directives (and their
// option lines) into Markdown images.
func rstImagesToMarkdown(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); {
		m := rstImageRe.FindStringSubmatch(lines[i])
		if m == nil {
			out = append(out, lines[i])
			i++
			continue
		}

		src := strings.TrimSpace(m[1])
		alt := ""
		j := i + 1
	options:
		for j < len(lines) {
			switch {
			case rstImageOptRe.MatchString(lines[j]):
				if am := rstImageAltRe.FindStringSubmatch(lines[j]); am != nil {
					alt = strings.TrimSpace(am[1])
				}
				j++
			case strings.TrimSpace(lines[j]) == "":
				j++
			default:
				break options
			}
		}
		out = append(out, fmt.Sprintf("![%s](%s)", alt, src))
		i = j
	}
	return out
}

func trimBlankEdges(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

// renumberOrderedList rewrites runs of "1." items into 1., 2., 3. so every
// item keeps its own number. Blank lines do not break a run; headings and
// bullet items reset the counter.
func renumberOrderedList(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	index := 0

	for _, line := range lines {
		if m := orderedItemRe.FindStringSubmatch(line); m != nil {
			index++
			out = append(out, fmt.Sprintf("%s%d. %s", m[1], index, m[2]))
			continue
		}
		out = append(out, line)
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "#") || bulletPrefixRe.MatchString(stripped) {
			index = 0
		}
	}
	return strings.Join(out, "\n")
}

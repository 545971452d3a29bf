package glossary

import (
	"regexp"
	"strings"
)

var mathRoleRe = regexp.MustCompile("\\{math\\}`([^`]+)`")

// CleanPage normalizes a converted glossary page: the MyST glossary wrapper
// is removed, term lines become level-6 headings so anchors resolve, the
// blockquote prefix is stripped from definitions, and {math} roles become
// inline TeX.
func CleanPage(content []byte) []byte {
	text := string(content)
	text = strings.ReplaceAll(text, ":::{glossary}\n", "")
	text = strings.ReplaceAll(text, "\n:::\n", "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if isTermLine(lines, i) {
			out = append(out, "###### "+strings.TrimSpace(line))
			continue
		}

		if stripped := strings.TrimLeft(line, " \t"); strings.HasPrefix(stripped, ">") {
			def := strings.TrimPrefix(stripped, ">")
			def = strings.TrimPrefix(def, " ")
			out = append(out, def)
			continue
		}

		out = append(out, line)
	}

	cleaned := strings.Join(out, "\n")
	cleaned = mathRoleRe.ReplaceAllString(cleaned, "$$$1$$")
	return []byte(cleaned)
}

// isTermLine detects a glossary term: a plain line followed by a blank line
// and a blockquoted definition.
func isTermLine(lines []string, i int) bool {
	if i+2 >= len(lines) {
		return false
	}
	line := strings.TrimSpace(lines[i])
	if line == "" {
		return false
	}
	for _, prefix := range []string{"#", ">", "[", "(", "---"} {
		if strings.HasPrefix(line, prefix) {
			return false
		}
	}
	if strings.TrimSpace(lines[i+1]) != "" {
		return false
	}
	return strings.HasPrefix(strings.TrimLeft(lines[i+2], " \t"), ">")
}

package convert

import (
	"strings"

	"github.com/inful/mdfp"

	"github.com/docpress/docpress/internal/frontmatter"
)

// Frontmatter keys excluded from the fingerprint hash: the fingerprint
// itself plus volatile bookkeeping fields.
var fingerprintExcluded = map[string]struct{}{
	mdfp.FingerprintField: {},
	"lastmod":             {},
	"uid":                 {},
}

// Fingerprint computes the canonical content fingerprint over frontmatter
// fields and body. Excluded fields do not feed the hash; the header
// serializes with LF newlines and a single trailing newline trimmed.
func Fingerprint(fields map[string]any, body string) (string, error) {
	forHash := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, skip := fingerprintExcluded[k]; skip {
			continue
		}
		forHash[k] = v
	}

	header := ""
	if len(forHash) > 0 {
		serialized, err := frontmatter.Encode(forHash)
		if err != nil {
			return "", err
		}
		header = strings.TrimSuffix(string(serialized), "\n")
	}

	return mdfp.CalculateFingerprintFromParts(header, body), nil
}

// EnsureFingerprint upserts the fingerprint field. It reports whether the
// document's content differs from what the stored fingerprint covered,
// which is the converter's signal to rewrite the file.
func EnsureFingerprint(fields map[string]any, body string) (changed bool, err error) {
	fp, err := Fingerprint(fields, body)
	if err != nil {
		return false, err
	}
	if existing, ok := fields[mdfp.FingerprintField].(string); ok && existing == fp {
		return false, nil
	}
	fields[mdfp.FingerprintField] = fp
	return true, nil
}

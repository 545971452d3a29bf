// Package normalization provides type-safe string-to-enum normalization for
// user-supplied configuration values.
package normalization

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Normalizer maps free-form user input onto a typed enumeration.
type Normalizer[T comparable] struct {
	byKey    map[string]T
	fallback T
	keys     []string // sorted, for error messages
}

// NewNormalizer creates a normalizer with a map of valid string->value pairs.
// Keys are matched case-insensitively with surrounding whitespace ignored.
func NewNormalizer[T comparable](values map[string]T, fallback T) *Normalizer[T] {
	byKey := make(map[string]T, len(values))
	for k, v := range values {
		byKey[canonicalKey(k)] = v
	}

	return &Normalizer[T]{
		byKey:    byKey,
		fallback: fallback,
		// Sorted keys keep error messages deterministic.
		keys: slices.Sorted(maps.Keys(byKey)),
	}
}

// Normalize converts a string to the enum type, returning the fallback value
// if the string is not recognized.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.byKey[canonicalKey(raw)]; ok {
		return v
	}
	return n.fallback
}

// NormalizeWithError is Normalize with unrecognized input reported as an
// error instead of silently defaulted.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	v, ok := n.byKey[canonicalKey(raw)]
	if !ok {
		return n.fallback, fmt.Errorf("invalid value %q, valid options: %v", raw, n.keys)
	}
	return v, nil
}

func canonicalKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

package normalization

import (
	"strings"
	"testing"
)

type compression int

const (
	gzipCompression compression = iota + 1
	zstdCompression
	noCompression
)

func newCompressionNormalizer() *Normalizer[compression] {
	return NewNormalizer(map[string]compression{
		"gzip": gzipCompression,
		"zstd": zstdCompression,
		"none": noCompression,
	}, noCompression)
}

func TestNormalizeCanonicalizesInput(t *testing.T) {
	n := newCompressionNormalizer()

	for input, want := range map[string]compression{
		"gzip":     gzipCompression,
		"ZSTD":     zstdCompression,
		"  None\t": noCompression,
		" gZiP ":   gzipCompression,
		"lz4":      noCompression, // unrecognized falls back
		"":         noCompression,
	} {
		if got := n.Normalize(input); got != want {
			t.Errorf("Normalize(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNormalizeWithErrorListsOptions(t *testing.T) {
	n := newCompressionNormalizer()

	got, err := n.NormalizeWithError(" GZIP ")
	if err != nil {
		t.Fatalf("NormalizeWithError(valid) error: %v", err)
	}
	if got != gzipCompression {
		t.Errorf("NormalizeWithError(valid) = %v, want %v", got, gzipCompression)
	}

	got, err = n.NormalizeWithError("brotli")
	if err == nil {
		t.Fatal("NormalizeWithError(unknown) should fail")
	}
	if got != noCompression {
		t.Errorf("error path should return the fallback, got %v", got)
	}
	// Options are listed sorted so the message is deterministic.
	if want := "[gzip none zstd]"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q should list options %s", err, want)
	}
	if !strings.Contains(err.Error(), `"brotli"`) {
		t.Errorf("error %q should quote the rejected input", err)
	}
}

func TestKeysCanonicalizedAtConstruction(t *testing.T) {
	n := NewNormalizer(map[string]compression{"  GZIP ": gzipCompression}, noCompression)

	if got := n.Normalize("gzip"); got != gzipCompression {
		t.Errorf("Normalize(gzip) = %v, want %v", got, gzipCompression)
	}
}

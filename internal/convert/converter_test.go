package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docpress/docpress/internal/frontmatter"
)

func TestRun_ConvertsTree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"variables.rst": ".. |product| replace:: Concordium Wallet\n",
		"guides/setup.md": "# Set up |product|\n\n:::{note}\nBack up your keys.\n:::\n\n" +
			"See :ref:`deploy guide<deploy-fast>`.\n",
		"guides/deploy.mdx": "---\ntitle: Deploy\n---\n(deploy-fast)=\n\nDeploy |product| now.\n",
	})

	res, err := Run(context.Background(), Options{
		Root:          root,
		VariablesFile: filepath.Join(root, "variables.rst"),
		DocsRoute:     "/docs",
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.Scanned)
	require.Equal(t, 2, res.Converted)
	require.Equal(t, 1, res.Renamed)

	// The .md source is gone, replaced by .mdx.
	_, statErr := os.Stat(filepath.Join(root, "guides/setup.md"))
	require.True(t, os.IsNotExist(statErr))

	out, err := os.ReadFile(filepath.Join(root, "guides/setup.mdx"))
	require.NoError(t, err)

	doc, err := frontmatter.Parse(out)
	require.NoError(t, err)
	require.Equal(t, "Set up Concordium Wallet", doc.Fields["title"])
	require.NotEmpty(t, doc.Fields["fingerprint"])

	body := string(doc.Body)
	require.Contains(t, body, `<Callout variant="info">`)
	require.Contains(t, body, "[deploy guide](/docs/guides/deploy#deploy-fast)")
	require.NotContains(t, body, "# Set up", "promoted H1 must be stripped")
}

func TestRun_SecondPassIsNoOp(t *testing.T) {
	root := writeTree(t, map[string]string{
		"intro.md": "# Intro\n\nHello.\n",
	})

	_, err := Run(context.Background(), Options{Root: root})
	require.NoError(t, err)

	first, err := os.ReadFile(filepath.Join(root, "intro.mdx"))
	require.NoError(t, err)

	res, err := Run(context.Background(), Options{Root: root})
	require.NoError(t, err)
	require.Equal(t, 1, res.Unchanged)
	require.Equal(t, 0, res.Converted)

	second, err := os.ReadFile(filepath.Join(root, "intro.mdx"))
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	root := writeTree(t, map[string]string{
		"intro.md": "# Intro\n\nHello.\n",
	})

	res, err := Run(context.Background(), Options{Root: root, DryRun: true})
	require.NoError(t, err)
	require.Equal(t, 1, res.Converted)
	require.Equal(t, 1, res.Renamed)

	// Source untouched, no .mdx produced.
	_, err = os.Stat(filepath.Join(root, "intro.md"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "intro.mdx"))
	require.True(t, os.IsNotExist(err))
}

func TestRun_CancelledContext(t *testing.T) {
	root := writeTree(t, map[string]string{"a.md": "# A\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{Root: root})
	require.Error(t, err)
}

func TestFingerprint_StableAndSensitive(t *testing.T) {
	fields := map[string]any{"title": "Setup"}
	a, err := Fingerprint(fields, "body\n")
	require.NoError(t, err)
	b, err := Fingerprint(fields, "body\n")
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := Fingerprint(fields, "different body\n")
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestFingerprint_IgnoresVolatileFields(t *testing.T) {
	base, err := Fingerprint(map[string]any{"title": "Setup"}, "body\n")
	require.NoError(t, err)

	withVolatile, err := Fingerprint(map[string]any{
		"title":       "Setup",
		"lastmod":     "2026-08-25",
		"uid":         "abc-123",
		"fingerprint": "stale",
	}, "body\n")
	require.NoError(t, err)
	require.Equal(t, base, withVolatile)
}

func TestEnsureFingerprint(t *testing.T) {
	fields := map[string]any{"title": "Setup"}

	changed, err := EnsureFingerprint(fields, "body\n")
	require.NoError(t, err)
	require.True(t, changed)
	require.NotEmpty(t, fields["fingerprint"])

	changed, err = EnsureFingerprint(fields, "body\n")
	require.NoError(t, err)
	require.False(t, changed, "same content must not change the fingerprint")
}

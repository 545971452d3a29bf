package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docpress/docpress/internal/config"
	ferrors "github.com/docpress/docpress/internal/foundation/errors"
	"github.com/docpress/docpress/internal/history"
	"github.com/docpress/docpress/internal/manifest"
	"github.com/docpress/docpress/internal/routes"
	"github.com/docpress/docpress/internal/search"
	"github.com/docpress/docpress/internal/store"
	"github.com/docpress/docpress/internal/store/storetest"
)

func testConfig(outputDir string) *config.Config {
	return &config.Config{
		Version: "1.0",
		Site: config.SiteConfig{
			URL:       "https://example.com",
			BasePath:  "/tinadocs",
			DocsRoute: "/docs",
		},
		Store: config.StoreConfig{
			Endpoint:    "https://store.example.dev/api",
			Branch:      "main",
			ContentRoot: "docs",
			PageSize:    10,
		},
		Build: config.BuildConfig{OutputDir: outputDir},
	}
}

func seededStore() *storetest.StubStore {
	stub := storetest.New()
	records := []store.ContentRecord{
		{
			StoragePath: "docs/index.mdx",
			Title:       "Home",
			Body:        "Welcome. See [setup](/docs/guides/setup).",
		},
		{
			StoragePath: "docs/guides/setup.mdx",
			Title:       "Set up the wallet",
			Description: "Install and configure.",
			Body:        "## Install\n\nThen [deploy](/docs/guides/deploy).",
		},
		{
			StoragePath: "docs/guides/deploy.md",
			Title:       "Deploy",
			Body:        "Back to [home](/docs/index).",
		},
	}
	stub.SeedPages(records, 2, 1)
	stub.SeedDocs(records...)
	return stub
}

func runBuild(t *testing.T, stub *storetest.StubStore, opts Options) (*Result, error) {
	t.Helper()
	if opts.OutputDir == "" {
		opts.OutputDir = t.TempDir()
	}
	runner := NewRunner(testConfig(opts.OutputDir)).WithStore(stub)
	return runner.Run(context.Background(), opts)
}

func TestRun_CompletedBuildWritesAllArtifacts(t *testing.T) {
	outDir := t.TempDir()
	res, err := runBuild(t, seededStore(), Options{OutputDir: outDir})
	require.NoError(t, err)

	m := res.Manifest
	require.Equal(t, manifest.StatusCompleted, m.Status)
	require.Equal(t, 3, m.Counts.Routes)
	require.Equal(t, 3, m.Counts.Documents)
	require.Equal(t, 2, m.Counts.ListPages)
	require.Equal(t, 0, m.Counts.BrokenLinks)
	require.Empty(t, m.Issues)

	for _, name := range []string{
		"routes.json",
		"nav.json",
		"meta/index.json",
		"meta/guides/setup.json",
		"meta/guides/deploy.json",
		"sitemap.xml",
		"search.json",
		"manifest.json",
	} {
		_, err := os.Stat(filepath.Join(outDir, filepath.FromSlash(name)))
		require.NoError(t, err, "expected artifact %s", name)
	}

	// routes.json preserves store order.
	data, err := os.ReadFile(filepath.Join(outDir, "routes.json"))
	require.NoError(t, err)
	var params []routes.RouteParam
	require.NoError(t, json.Unmarshal(data, &params))
	require.Equal(t, []routes.RouteParam{
		{Slug: []string{"index"}},
		{Slug: []string{"guides", "setup"}},
		{Slug: []string{"guides", "deploy"}},
	}, params)

	// Per-route metadata derives the canonical URL.
	data, err = os.ReadFile(filepath.Join(outDir, "meta/guides/setup.json"))
	require.NoError(t, err)
	var pm struct {
		Title        string `json:"title"`
		CanonicalURL string `json:"canonicalUrl"`
	}
	require.NoError(t, json.Unmarshal(data, &pm))
	require.Equal(t, "Set up the wallet", pm.Title)
	require.Equal(t, "https://example.com/tinadocs/docs/guides/setup", pm.CanonicalURL)

	// The local search index carries one entry per document.
	data, err = os.ReadFile(filepath.Join(outDir, "search.json"))
	require.NoError(t, err)
	var entries []search.Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 3)

	// Manifest lists every artifact except itself.
	require.Len(t, m.Outputs, 7)
	for _, artifact := range m.Outputs {
		require.NotEqual(t, "manifest.json", artifact.Name)
	}
}

func TestRun_DegradedOnResolutionFailure(t *testing.T) {
	stub := seededStore()
	stub.FailAtPage = 1

	outDir := t.TempDir()
	res, err := runBuild(t, stub, Options{OutputDir: outDir})
	require.NoError(t, err)

	m := res.Manifest
	require.Equal(t, manifest.StatusDegraded, m.Status)
	require.Equal(t, 0, m.Counts.Routes)
	require.Equal(t, 0, m.Counts.Documents)
	require.NotEmpty(t, m.Issues)
	require.Contains(t, m.Issues[0], "route resolution failed")

	// The degraded build still writes a complete, empty output set.
	data, err := os.ReadFile(filepath.Join(outDir, "routes.json"))
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(data))

	data, err = os.ReadFile(filepath.Join(outDir, "search.json"))
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(data))
}

func TestRun_StrictFailsOnResolutionFailure(t *testing.T) {
	stub := seededStore()
	stub.FailAtPage = 1

	outDir := t.TempDir()
	res, err := runBuild(t, stub, Options{OutputDir: outDir, Strict: true})
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryBuild))

	require.Equal(t, manifest.StatusFailed, res.Manifest.Status)

	// A strict failure writes no outputs.
	_, statErr := os.Stat(filepath.Join(outDir, "routes.json"))
	require.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(outDir, "manifest.json"))
	require.True(t, os.IsNotExist(statErr))
}

func TestRun_SkipsUnfetchableDocument(t *testing.T) {
	stub := storetest.New()
	records := []store.ContentRecord{
		{StoragePath: "docs/index.mdx", Title: "Home", Body: "Hello."},
		{StoragePath: "docs/gone.mdx", Title: "Gone", Body: "Bye."},
	}
	stub.SeedPages(records, 2)
	stub.SeedDocs(records[0]) // gone.mdx is listed but not fetchable

	outDir := t.TempDir()
	res, err := runBuild(t, stub, Options{OutputDir: outDir})
	require.NoError(t, err)

	m := res.Manifest
	require.Equal(t, manifest.StatusDegraded, m.Status)
	require.Equal(t, 2, m.Counts.Routes)
	require.Equal(t, 1, m.Counts.Documents)
	require.Len(t, m.Issues, 1)
	require.Contains(t, m.Issues[0], "document fetch failed for gone")

	// The route set still names both routes; only metadata is missing.
	data, err := os.ReadFile(filepath.Join(outDir, "routes.json"))
	require.NoError(t, err)
	var params []routes.RouteParam
	require.NoError(t, json.Unmarshal(data, &params))
	require.Len(t, params, 2)

	_, statErr := os.Stat(filepath.Join(outDir, "meta/gone.json"))
	require.True(t, os.IsNotExist(statErr))
}

func TestRun_StrictFailsOnUnfetchableDocument(t *testing.T) {
	stub := storetest.New()
	records := []store.ContentRecord{
		{StoragePath: "docs/gone.mdx", Title: "Gone", Body: "Bye."},
	}
	stub.SeedPages(records, 1)

	_, err := runBuild(t, stub, Options{Strict: true})
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryBuild))
}

func TestRun_ReportsBrokenLinks(t *testing.T) {
	stub := storetest.New()
	records := []store.ContentRecord{
		{
			StoragePath: "docs/index.mdx",
			Title:       "Home",
			Body:        "See [missing](/docs/missing) and [setup](/docs/setup).",
		},
		{StoragePath: "docs/setup.mdx", Title: "Setup", Body: "Fine."},
	}
	stub.SeedPages(records, 2)
	stub.SeedDocs(records...)

	res, err := runBuild(t, stub, Options{})
	require.NoError(t, err)

	m := res.Manifest
	// Broken links are findings, not build gaps.
	require.Equal(t, manifest.StatusCompleted, m.Status)
	require.Equal(t, 1, m.Counts.BrokenLinks)
	require.Len(t, m.Issues, 1)
	require.Contains(t, m.Issues[0], "broken link on /docs/index")
	require.Contains(t, m.Issues[0], "/docs/missing")
}

func TestRun_RecordsHistory(t *testing.T) {
	hs, err := history.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = hs.Close() })

	outDir := t.TempDir()
	runner := NewRunner(testConfig(outDir)).WithStore(seededStore()).WithHistory(hs)
	res, err := runner.Run(context.Background(), Options{OutputDir: outDir})
	require.NoError(t, err)

	recent, err := hs.RecentBuilds(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, res.Manifest.ID, recent[0].ID)
	require.Equal(t, manifest.StatusCompleted, recent[0].Status)

	events, err := hs.Events(context.Background(), res.Manifest.ID)
	require.NoError(t, err)
	types := make([]string, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	require.Equal(t, []string{
		"build_started",
		"routes_resolved",
		"documents_fetched",
		"outputs_written",
		"build_finished",
	}, types)
}

func TestRun_CleanRemovesStaleOutput(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "public")
	require.NoError(t, os.MkdirAll(outDir, 0o750))
	stale := filepath.Join(outDir, "stale.json")
	require.NoError(t, os.WriteFile(stale, []byte("{}"), 0o644))

	_, err := runBuild(t, seededStore(), Options{OutputDir: outDir, Clean: true})
	require.NoError(t, err)

	_, statErr := os.Stat(stale)
	require.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(outDir, "routes.json"))
	require.NoError(t, statErr)
}

func TestCleanOutputDirRefusesUnsafePaths(t *testing.T) {
	require.Error(t, cleanOutputDir("/"))
	require.Error(t, cleanOutputDir("."))
}

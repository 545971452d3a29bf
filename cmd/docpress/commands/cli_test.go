package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"github.com/docpress/docpress/internal/config"
)

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Vars{"version": "test"})
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, kctx
}

func TestCLIGrammar(t *testing.T) {
	t.Run("build flags", func(t *testing.T) {
		cli, kctx := parseCLI(t, "build", "--strict", "--clean", "-o", "dist")
		require.Equal(t, "build", kctx.Command())
		require.True(t, cli.Build.Strict)
		require.True(t, cli.Build.Clean)
		require.Equal(t, "dist", cli.Build.Output)
		require.Equal(t, "docpress.yaml", cli.Config)
	})

	t.Run("routes", func(t *testing.T) {
		cli, kctx := parseCLI(t, "routes", "--json")
		require.Equal(t, "routes", kctx.Command())
		require.True(t, cli.Routes.JSON)
		require.False(t, cli.Routes.Strict)
	})

	t.Run("meta takes a slug argument", func(t *testing.T) {
		cli, kctx := parseCLI(t, "meta", "guides/setup")
		require.Equal(t, "meta <slug>", kctx.Command())
		require.Equal(t, "guides/setup", cli.Meta.Slug)
	})

	t.Run("convert defaults to the current directory", func(t *testing.T) {
		cli, kctx := parseCLI(t, "convert")
		require.Equal(t, "convert", kctx.Command())
		require.Equal(t, ".", cli.Convert.Root)
		require.False(t, cli.Convert.DryRun)
	})

	t.Run("convert with a repository", func(t *testing.T) {
		cli, kctx := parseCLI(t, "convert", "content",
			"--repo", "https://example.com/docs.git", "--branch", "next", "--dry-run")
		require.Equal(t, "convert <root>", kctx.Command())
		require.Equal(t, "content", cli.Convert.Root)
		require.Equal(t, "https://example.com/docs.git", cli.Convert.Repo)
		require.Equal(t, "next", cli.Convert.Branch)
		require.True(t, cli.Convert.DryRun)
	})

	t.Run("audit", func(t *testing.T) {
		cli, kctx := parseCLI(t, "audit", "--fix")
		require.Equal(t, "audit", kctx.Command())
		require.Equal(t, ".", cli.Audit.Root)
		require.True(t, cli.Audit.Fix)
	})

	t.Run("variables defaults its path", func(t *testing.T) {
		cli, kctx := parseCLI(t, "variables")
		require.Equal(t, "variables", kctx.Command())
		require.Equal(t, "variables.rst", cli.Variables.Path)
	})

	t.Run("daemon honors the global config flag", func(t *testing.T) {
		cli, kctx := parseCLI(t, "daemon", "-c", "custom.yaml", "-v")
		require.Equal(t, "daemon", kctx.Command())
		require.Equal(t, "custom.yaml", cli.Config)
		require.True(t, cli.Verbose)
	})

	t.Run("unknown command fails", func(t *testing.T) {
		parser, err := kong.New(&CLI{}, kong.Vars{"version": "test"})
		require.NoError(t, err)
		_, err = parser.Parse([]string{"publish"})
		require.Error(t, err)
	})
}

func TestTokenFromEnvironment(t *testing.T) {
	t.Setenv("DOCPRESS_GIT_TOKEN", "sekret")
	cli, _ := parseCLI(t, "audit", "--repo", "https://example.com/docs.git")
	require.Equal(t, "sekret", cli.Audit.Token)
}

func TestInitCommandWritesConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "docpress.yaml")

	_, kctx := parseCLI(t, "init", "-c", cfgPath)
	require.NoError(t, kctx.Run(&Global{}))

	_, err := os.Stat(cfgPath)
	require.NoError(t, err)
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Site.URL)

	_, kctx = parseCLI(t, "init", "-c", cfgPath)
	require.Error(t, kctx.Run(&Global{}), "refuses to overwrite without --force")

	_, kctx = parseCLI(t, "init", "-c", cfgPath, "--force")
	require.NoError(t, kctx.Run(&Global{}))
}

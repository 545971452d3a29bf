package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/docpress/docpress/internal/config"
	"github.com/docpress/docpress/internal/gitsync"
	"github.com/docpress/docpress/internal/logfields"
	"github.com/docpress/docpress/internal/workspace"
)

// Global carries shared state for subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command grammar with global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docpress.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build     BuildCmd     `cmd:"" help:"Run one build: resolve routes, fetch documents and write pre-render outputs"`
	Routes    RoutesCmd    `cmd:"" help:"Print the resolved route parameters"`
	Meta      MetaCmd      `cmd:"" help:"Print the resolved metadata for one route"`
	Convert   ConvertCmd   `cmd:"" help:"Convert a Markdown content tree to MDX in place"`
	Audit     AuditCmd     `cmd:"" help:"Audit a content tree for documents missing a frontmatter title"`
	Variables VariablesCmd `cmd:"" help:"Extract substitution variables from a variables.rst file as JSON"`
	Init      InitCmd      `cmd:"" help:"Write an example configuration file"`
	Daemon    DaemonCmd    `cmd:"" help:"Run continuously: periodic rebuilds, config reload and a status endpoint"`
}

// AfterApply runs after flag parsing; set up logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// configureLogging re-applies logging per the loaded configuration. The
// --verbose flag wins over the configured level.
func configureLogging(cfg *config.Config, verbose bool) {
	level := slog.LevelInfo
	if cfg != nil {
		switch cfg.Logging.Level {
		case config.LogLevelDebug:
			level = slog.LevelDebug
		case config.LogLevelWarn:
			level = slog.LevelWarn
		case config.LogLevelError:
			level = slog.LevelError
		}
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg != nil && cfg.Logging.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadConfigIfPresent returns the loaded configuration, or nil when the file
// does not exist. Local tree commands (convert, audit, variables) work
// without one.
func loadConfigIfPresent(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return config.Load(path)
}

// resolveTreeRoot returns the content tree to operate on, syncing the
// repository first when one is given. root is then taken relative to the
// checkout. Runs that modify the tree sync into a persistent workspace so
// re-running pulls instead of recloning; read-only runs clone into an
// ephemeral workspace that the returned cleanup removes again.
func resolveTreeRoot(ctx context.Context, root, repoURL, branch, token string, readOnly bool) (string, func(), error) {
	noop := func() {}
	if repoURL == "" {
		return root, noop, nil
	}

	var ws *workspace.Manager
	if readOnly {
		ws = workspace.NewManager("")
	} else {
		ws = workspace.NewPersistentManager("", "docpress-checkouts")
	}
	if err := ws.Create(); err != nil {
		return "", noop, err
	}
	cleanup := func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to clean up workspace", logfields.Error(err))
		}
	}

	checkout, err := gitsync.NewClient(ws.GetPath()).Sync(ctx, gitsync.Source{
		URL:    repoURL,
		Branch: branch,
		Token:  token,
	})
	if err != nil {
		cleanup()
		return "", noop, err
	}
	return filepath.Join(checkout, root), cleanup, nil
}

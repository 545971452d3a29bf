package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/docpress/docpress/internal/build"
	"github.com/docpress/docpress/internal/config"
	"github.com/docpress/docpress/internal/history"
	"github.com/docpress/docpress/internal/logfields"
	"github.com/docpress/docpress/internal/notify"
	"github.com/docpress/docpress/internal/search"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory for pre-render inputs (overrides build.output_dir)"`
	Strict bool   `help:"Fail on route resolution errors instead of degrading to an empty route set"`
	Clean  bool   `help:"Remove the output directory before writing"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := build.NewRunner(cfg).
		WithSearchPublisher(search.NewPublisher(cfg.Search))

	if pub, err := notify.NewPublisher(cfg.Notify); err != nil {
		slog.Warn("Notify publisher unavailable, continuing without it", logfields.Error(err))
	} else if pub != nil {
		defer pub.Close()
		runner = runner.WithNotifyPublisher(pub)
	}

	if cfg.History != nil && cfg.History.Path != "" {
		hist, err := history.Open(cfg.History.Path)
		if err != nil {
			slog.Warn("Build history unavailable, continuing without it", logfields.Error(err))
		} else {
			defer hist.Close()
			runner = runner.WithHistory(hist)
		}
	}

	res, err := runner.Run(ctx, build.Options{
		OutputDir: b.Output,
		Strict:    b.Strict,
		Clean:     b.Clean,
	})
	if err != nil {
		return err
	}

	m := res.Manifest
	fmt.Printf("Build %s: %d routes, %d documents, %d broken links, %d issues\n",
		m.Status, m.Counts.Routes, m.Counts.Documents, m.Counts.BrokenLinks, len(m.Issues))
	fmt.Printf("Outputs written to %s\n", res.OutputPath)
	return nil
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/docpress/docpress/internal/config"
	"github.com/docpress/docpress/internal/meta"
	"github.com/docpress/docpress/internal/store"
)

// MetaCmd implements the 'meta' command.
type MetaCmd struct {
	Slug string `arg:"" help:"Route slug relative to the docs route, e.g. guides/setup"`
}

func (m *MetaCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)

	slug := splitSlug(m.Slug)
	if len(slug) == 0 {
		return fmt.Errorf("empty slug")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	resolver := meta.NewResolver(store.NewHTTPClient(cfg.Store), cfg.Site, cfg.Store.ContentRoot)
	pm, err := resolver.Resolve(ctx, slug)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(pm, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func splitSlug(s string) []string {
	parts := strings.Split(s, "/")
	slug := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			slug = append(slug, part)
		}
	}
	return slug
}

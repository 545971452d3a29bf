package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/docpress/docpress/internal/config"
	"github.com/docpress/docpress/internal/logfields"
	"github.com/docpress/docpress/internal/routes"
	"github.com/docpress/docpress/internal/store"
)

// RoutesCmd implements the 'routes' command.
type RoutesCmd struct {
	JSON   bool `help:"Emit the route parameters as a JSON array"`
	Strict bool `help:"Fail on resolution errors instead of listing partial results"`
}

func (r *RoutesCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	resolver := routes.NewResolver(store.NewHTTPClient(cfg.Store), cfg.Store.ContentRoot)

	var params []routes.RouteParam
	if r.Strict {
		params, err = resolver.ResolveAll(ctx)
		if err != nil {
			return err
		}
	} else {
		res := resolver.Resolve(ctx)
		if res.Err != nil {
			slog.Warn("Route resolution incomplete", logfields.Error(res.Err))
		}
		params = res.Routes
	}

	if r.JSON {
		data, err := json.MarshalIndent(params, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, p := range params {
		fmt.Println(cfg.Site.RoutePath(routes.JoinSlug(p.Slug)))
	}
	return nil
}

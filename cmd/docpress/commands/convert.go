package commands

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/docpress/docpress/internal/config"
	"github.com/docpress/docpress/internal/convert"
)

// ConvertCmd implements the 'convert' command.
type ConvertCmd struct {
	Root      string `arg:"" optional:"" default:"." help:"Content tree to convert"`
	Variables string `help:"Path to a variables.rst file for substitution"`
	Glossary  string `help:"Route the glossary term links point at"`
	DryRun    bool   `help:"Report what would change without writing"`

	Repo   string `help:"Git URL of the content repository to sync before converting"`
	Branch string `help:"Branch to check out when --repo is given"`
	Token  string `env:"DOCPRESS_GIT_TOKEN" help:"Token for private repository access"`
}

func (c *ConvertCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfigIfPresent(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)

	docsRoute := config.DefaultDocsRoute
	if cfg != nil {
		docsRoute = cfg.Site.DocsRoute
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	treeRoot, cleanup, err := resolveTreeRoot(ctx, c.Root, c.Repo, c.Branch, c.Token, c.DryRun)
	if err != nil {
		return err
	}
	defer cleanup()

	varsFile := c.Variables
	if varsFile != "" && c.Repo != "" && !filepath.IsAbs(varsFile) {
		varsFile = filepath.Join(treeRoot, varsFile)
	}

	res, err := convert.Run(ctx, convert.Options{
		Root:          treeRoot,
		VariablesFile: varsFile,
		GlossaryRoute: c.Glossary,
		DocsRoute:     docsRoute,
		DryRun:        c.DryRun,
	})
	if err != nil {
		return err
	}

	if c.DryRun {
		fmt.Printf("Dry run: %d of %d files would change\n", res.Converted, res.Scanned)
		return nil
	}
	fmt.Printf("Converted %d of %d files (%d renamed, %d unchanged)\n",
		res.Converted, res.Scanned, res.Renamed, res.Unchanged)
	return nil
}

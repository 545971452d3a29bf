package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/docpress/docpress/internal/audit"
)

// AuditCmd implements the 'audit' command.
type AuditCmd struct {
	Root string `arg:"" optional:"" default:"." help:"Content tree to audit"`
	Fix  bool   `help:"Promote the first H1 into the title and rename .md to .mdx"`

	Repo   string `help:"Git URL of the content repository to sync before auditing"`
	Branch string `help:"Branch to check out when --repo is given"`
	Token  string `env:"DOCPRESS_GIT_TOKEN" help:"Token for private repository access"`
}

func (a *AuditCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfigIfPresent(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	treeRoot, cleanup, err := resolveTreeRoot(ctx, a.Root, a.Repo, a.Branch, a.Token, !a.Fix)
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := audit.Run(ctx, audit.Options{Root: treeRoot, Fix: a.Fix})
	if err != nil {
		return err
	}

	for _, f := range rep.Findings {
		if f.Fixed {
			fmt.Printf("fixed: %s (title %q)\n", f.File, f.Title)
		} else {
			fmt.Printf("missing title: %s\n", f.File)
		}
	}
	fmt.Printf("%d scanned, %d missing, %d fixed, %d renamed\n",
		rep.Scanned, rep.Missing, rep.Fixed, rep.Renamed)

	if !rep.Clean() {
		return fmt.Errorf("%d documents missing a title", rep.Missing-rep.Fixed)
	}
	return nil
}

package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/docpress/docpress/internal/config"
	"github.com/docpress/docpress/internal/daemon"
	ferrors "github.com/docpress/docpress/internal/foundation/errors"
)

const shutdownGrace = 30 * time.Second

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct{}

func (dc *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.New(cfg, root.Config)
	if err != nil {
		return ferrors.DaemonError("failed to create daemon").WithCause(err).Build()
	}

	// Start blocks until a signal cancels ctx. Whatever made it return, give
	// the components a bounded window to shut down.
	runErr := d.Start(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer stopCancel()
	stopErr := d.Stop(stopCtx)

	if runErr != nil {
		return ferrors.DaemonError("daemon terminated").WithCause(runErr).Build()
	}
	if stopErr != nil {
		return fmt.Errorf("failed to stop daemon: %w", stopErr)
	}
	return nil
}

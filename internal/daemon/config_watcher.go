package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/docpress/docpress/internal/config"
	"github.com/docpress/docpress/internal/logfields"
)

// reloadOps are the filesystem events that trigger a configuration reload.
// Create and rename cover editors that replace the file on save.
const reloadOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

const reloadDebounce = 2 * time.Second

// ConfigWatcher monitors the configuration file and applies changes to the
// running daemon after validation.
type ConfigWatcher struct {
	path     string
	d        *Daemon
	fsw      *fsnotify.Watcher
	stop     chan struct{}
	stopOnce sync.Once
	pending  chan struct{}
	debounce time.Duration
}

// NewConfigWatcher creates a watcher for the given configuration file.
func NewConfigWatcher(path string, d *Daemon) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fsnotify watcher: %w", err)
	}

	return &ConfigWatcher{
		path:     abs,
		d:        d,
		fsw:      fsw,
		stop:     make(chan struct{}),
		pending:  make(chan struct{}, 1),
		debounce: reloadDebounce,
	}, nil
}

// Start begins monitoring the configuration file.
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	// Watch the directory rather than the file itself so that editors which
	// replace the file (rename-over-write) do not break the watch.
	dir := filepath.Dir(cw.path)
	if err := cw.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	slog.Info("Watching configuration file", logfields.Path(cw.path))

	go cw.eventLoop(ctx)
	go cw.debounceLoop(ctx)

	return nil
}

// Stop ends monitoring. Safe to call more than once.
func (cw *ConfigWatcher) Stop(context.Context) error {
	cw.stopOnce.Do(func() { close(cw.stop) })

	if err := cw.fsw.Close(); err != nil {
		return fmt.Errorf("failed to close fsnotify watcher: %w", err)
	}
	return nil
}

// eventLoop drains fsnotify channels until the watcher shuts down.
func (cw *ConfigWatcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stop:
			return
		case ev, ok := <-cw.fsw.Events:
			if !ok {
				return
			}
			cw.handleEvent(ev)
		case err, ok := <-cw.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("Config watcher error", logfields.Error(err))
		}
	}
}

// handleEvent filters directory events down to the watched file and queues a
// reload for the ones that change its contents.
func (cw *ConfigWatcher) handleEvent(ev fsnotify.Event) {
	if filepath.Base(ev.Name) != filepath.Base(cw.path) {
		return
	}

	switch {
	case ev.Op&reloadOps != 0:
		slog.Debug("Config file change detected",
			logfields.File(ev.Name),
			slog.String("op", ev.Op.String()))
		cw.noteChange()
	case ev.Op&fsnotify.Remove != 0:
		slog.Warn("Config file removed", logfields.File(ev.Name))
	}
}

// debounceLoop collapses queued changes so editors that fire several events
// per save cause a single reload. Reloads run on this goroutine, so they
// never overlap.
func (cw *ConfigWatcher) debounceLoop(ctx context.Context) {
	delay := time.NewTimer(cw.debounce)
	if !delay.Stop() {
		<-delay.C
	}
	armed := false

	for {
		select {
		case <-ctx.Done():
			delay.Stop()
			return
		case <-cw.stop:
			delay.Stop()
			return
		case <-cw.pending:
			if armed && !delay.Stop() {
				<-delay.C
			}
			delay.Reset(cw.debounce)
			armed = true
		case <-delay.C:
			armed = false
			if err := cw.reload(ctx); err != nil {
				slog.Error("Failed to reload configuration", logfields.Error(err))
			}
		}
	}
}

// noteChange queues a debounced reload. A change noted while one is already
// queued is a no-op.
func (cw *ConfigWatcher) noteChange() {
	select {
	case cw.pending <- struct{}{}:
	default:
	}
}

// reload loads, validates and applies the updated configuration.
func (cw *ConfigWatcher) reload(ctx context.Context) error {
	slog.Info("Reloading configuration", logfields.Path(cw.path))

	next, err := config.Load(cw.path)
	if err != nil {
		return fmt.Errorf("failed to read updated configuration: %w", err)
	}

	if err := cw.checkReloadable(next); err != nil {
		return fmt.Errorf("configuration change rejected: %w", err)
	}

	if err := cw.d.ReloadConfig(ctx, next); err != nil {
		return fmt.Errorf("failed to apply updated configuration: %w", err)
	}

	slog.Info("Configuration reloaded", logfields.Path(cw.path))
	return nil
}

// checkReloadable rejects changes that cannot take effect without a restart.
func (cw *ConfigWatcher) checkReloadable(next *config.Config) error {
	current := cw.d.GetConfig()

	if next.Version != current.Version {
		return fmt.Errorf("version changed from %s to %s, which requires daemon restart", current.Version, next.Version)
	}

	if next.Daemon == nil {
		return fmt.Errorf("cannot remove the daemon section while running")
	}

	if next.Daemon.Listen != current.Daemon.Listen {
		slog.Warn("Listen address change takes effect on next restart",
			slog.String("old", current.Daemon.Listen),
			slog.String("new", next.Daemon.Listen))
	}

	if next.Daemon.Metrics != current.Daemon.Metrics {
		slog.Warn("Metrics toggle takes effect on next restart")
	}

	return nil
}

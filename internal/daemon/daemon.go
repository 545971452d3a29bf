// Package daemon runs docpress as a long-lived service: periodic rebuilds on
// a scheduler, configuration hot-reload, and an HTTP surface exposing health,
// status and Prometheus metrics.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/docpress/docpress/internal/build"
	"github.com/docpress/docpress/internal/config"
	"github.com/docpress/docpress/internal/history"
	"github.com/docpress/docpress/internal/logfields"
	"github.com/docpress/docpress/internal/manifest"
	"github.com/docpress/docpress/internal/metrics"
	"github.com/docpress/docpress/internal/notify"
	"github.com/docpress/docpress/internal/search"
)

// Status represents the current state of the daemon.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
)

// Daemon owns the rebuild scheduler, the config watcher and the HTTP status
// surface. Long-lived connections (history store, notify publisher) are
// opened once at construction; a fresh build runner is assembled from the
// current configuration snapshot for every run so that hot-reloaded settings
// take effect on the next build.
type Daemon struct {
	configPath string
	status     atomic.Value // Status
	startTime  time.Time
	stopChan   chan struct{}

	mu  sync.RWMutex
	cfg *config.Config

	scheduler     *Scheduler
	configWatcher *ConfigWatcher
	httpServer    *HTTPServer
	registry      *prometheus.Registry
	recorder      metrics.Recorder
	history       *history.Store
	notify        *notify.Publisher

	// runnerFactory assembles a build runner from a config snapshot.
	// Swappable so tests can run builds against a stub store.
	runnerFactory func(cfg *config.Config) *build.Runner

	runCtx       context.Context
	rebuildJobID string

	buildMu   sync.Mutex
	builds    atomic.Int64
	lastBuild *manifest.BuildManifest
	lastErr   error
}

// New creates a daemon from a loaded configuration. configPath enables config
// file watching when non-empty.
func New(cfg *config.Config, configPath string) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil configuration")
	}
	if cfg.Daemon == nil {
		return nil, fmt.Errorf("daemon configuration section missing")
	}

	d := &Daemon{
		cfg:        cfg,
		configPath: configPath,
		stopChan:   make(chan struct{}),
		recorder:   metrics.NoopRecorder{},
		runCtx:     context.Background(),
	}
	d.status.Store(StatusStopped)

	if cfg.Daemon.Metrics {
		d.registry = prometheus.NewRegistry()
		d.recorder = metrics.NewPrometheusRecorder(d.registry)
	}

	if cfg.History != nil && cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open build history: %w", err)
		}
		d.history = store
	}

	pub, err := notify.NewPublisher(cfg.Notify)
	if err != nil {
		return nil, fmt.Errorf("failed to connect notify publisher: %w", err)
	}
	d.notify = pub.WithRecorder(d.recorder)

	scheduler, err := NewScheduler()
	if err != nil {
		return nil, err
	}
	d.scheduler = scheduler

	d.httpServer = NewHTTPServer(cfg.Daemon, d)

	if configPath != "" {
		watcher, err := NewConfigWatcher(configPath, d)
		if err != nil {
			return nil, fmt.Errorf("failed to create config watcher: %w", err)
		}
		d.configWatcher = watcher
	}

	d.runnerFactory = func(cfg *config.Config) *build.Runner {
		return build.NewRunner(cfg).
			WithRecorder(d.recorder).
			WithHistory(d.history).
			WithNotifyPublisher(d.notify).
			WithSearchPublisher(search.NewPublisher(cfg.Search).WithRecorder(d.recorder))
	}

	return d, nil
}

// Start brings up all components, runs an initial build and blocks until ctx
// is cancelled or Stop is called.
func (d *Daemon) Start(ctx context.Context) error {
	if current := d.GetStatus(); current != StatusStopped {
		return fmt.Errorf("cannot start daemon in state %s", current)
	}

	d.status.Store(StatusStarting)
	d.startTime = time.Now().UTC()
	d.runCtx = ctx

	if err := d.httpServer.Start(ctx); err != nil {
		d.status.Store(StatusStopped)
		return fmt.Errorf("failed to bring up HTTP server: %w", err)
	}

	interval := d.GetConfig().Daemon.Interval()
	jobID, err := d.scheduler.ScheduleEvery("rebuild", interval, func() {
		d.runBuild(ctx, "scheduled")
	})
	if err != nil {
		d.status.Store(StatusStopped)
		return fmt.Errorf("failed to schedule rebuilds: %w", err)
	}
	d.rebuildJobID = jobID
	d.scheduler.Start(ctx)

	if d.configWatcher != nil {
		if err := d.configWatcher.Start(ctx); err != nil {
			slog.Error("Failed to start config watcher", logfields.Error(err))
		}
	}

	d.status.Store(StatusRunning)
	slog.Info("Daemon started",
		slog.String("listen", d.httpServer.Addr()),
		logfields.Duration(interval))

	// Initial build so the output directory is populated without waiting a
	// full interval.
	go d.runBuild(ctx, "startup")

	d.block(ctx)

	d.status.Store(StatusStopping)
	return nil
}

// Stop shuts down all components in reverse start order. Errors from
// individual components are logged rather than aborting the shutdown, so
// a stuck component cannot keep the others alive.
func (d *Daemon) Stop(ctx context.Context) error {
	if d.GetStatus() == StatusStopped {
		return nil
	}
	d.status.Store(StatusStopping)
	slog.Info("Stopping daemon")

	select {
	case <-d.stopChan:
	default:
		close(d.stopChan)
	}

	shutdown := []struct {
		component string
		stop      func() error
	}{
		{"config_watcher", func() error {
			if d.configWatcher == nil {
				return nil
			}
			return d.configWatcher.Stop(ctx)
		}},
		{"scheduler", func() error { return d.scheduler.Stop(ctx) }},
		{"http_server", func() error { return d.httpServer.Stop(ctx) }},
		{"notify", func() error {
			if d.notify == nil {
				return nil
			}
			return d.notify.Close()
		}},
		{"history", func() error {
			if d.history == nil {
				return nil
			}
			return d.history.Close()
		}},
	}
	for _, s := range shutdown {
		if err := s.stop(); err != nil {
			slog.Error("Shutdown step failed",
				logfields.Component(s.component),
				logfields.Error(err))
		}
	}

	d.status.Store(StatusStopped)
	slog.Info("Daemon stopped", logfields.Duration(time.Since(d.startTime)))
	return nil
}

// block parks the Start goroutine until shutdown, emitting a periodic
// heartbeat.
func (d *Daemon) block(ctx context.Context) {
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Daemon run loop exiting", slog.String("cause", "context cancelled"))
			return
		case <-d.stopChan:
			slog.Info("Daemon run loop exiting", slog.String("cause", "stop requested"))
			return
		case <-heartbeat.C:
			slog.Debug("Daemon heartbeat",
				slog.Int64("builds", d.builds.Load()),
				logfields.Duration(time.Since(d.startTime)))
		}
	}
}

// GetStatus returns the current daemon status.
func (d *Daemon) GetStatus() Status {
	if s, ok := d.status.Load().(Status); ok {
		return s
	}
	return StatusStopped
}

// GetStartTime returns when the daemon was started.
func (d *Daemon) GetStartTime() time.Time {
	return d.startTime
}

// GetConfig returns the current configuration snapshot.
func (d *Daemon) GetConfig() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// ReloadConfig applies a validated configuration and triggers a rebuild so
// the new settings take effect immediately. The rebuild interval is
// rescheduled in place when it changed.
func (d *Daemon) ReloadConfig(ctx context.Context, newConfig *config.Config) error {
	if newConfig == nil || newConfig.Daemon == nil {
		return fmt.Errorf("daemon section missing from new configuration")
	}

	d.mu.Lock()
	oldInterval := d.cfg.Daemon.Interval()
	d.cfg = newConfig
	d.mu.Unlock()

	slog.Info("Daemon configuration reloaded")

	if newInterval := newConfig.Daemon.Interval(); newInterval != oldInterval && d.rebuildJobID != "" {
		jobID, err := d.scheduler.Reschedule(d.rebuildJobID, newInterval, func() {
			d.runBuild(ctx, "scheduled")
		})
		if err != nil {
			slog.Error("Failed to reschedule rebuild job", logfields.Error(err))
		} else {
			d.rebuildJobID = jobID
		}
	}

	go d.runBuild(ctx, "config_reload")
	return nil
}

// TriggerBuild requests a manual rebuild. Returns a job identifier, or the
// empty string when the daemon is not running.
func (d *Daemon) TriggerBuild() string {
	if d.GetStatus() != StatusRunning {
		return ""
	}
	jobID := fmt.Sprintf("manual-%d", time.Now().Unix())
	go d.runBuild(d.runCtx, "manual")
	return jobID
}

// runBuild executes one full build from the current config snapshot. Builds
// are serialized; a trigger that arrives while a build is running waits for
// it to finish.
func (d *Daemon) runBuild(ctx context.Context, reason string) {
	d.buildMu.Lock()
	defer d.buildMu.Unlock()

	if ctx.Err() != nil {
		return
	}

	cfg := d.GetConfig()
	slog.Info("Daemon build triggered", slog.String("reason", reason))

	result, err := d.runnerFactory(cfg).Run(ctx, build.Options{})

	d.mu.Lock()
	d.builds.Add(1)
	if result != nil {
		d.lastBuild = result.Manifest
	}
	d.lastErr = err
	d.mu.Unlock()

	if err != nil {
		slog.Error("Daemon build failed",
			slog.String("reason", reason),
			logfields.Error(err))
	}
}

// lastBuildState returns the most recent build outcome for status reporting.
func (d *Daemon) lastBuildState() (m *manifest.BuildManifest, builds int64, err error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastBuild, d.builds.Load(), d.lastErr
}

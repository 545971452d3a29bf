package daemon

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/docpress/docpress/internal/logfields"
	"github.com/docpress/docpress/internal/manifest"
	"github.com/docpress/docpress/internal/notify"
	"github.com/docpress/docpress/internal/version"
)

// DaemonInfo summarizes the running daemon for /status.
type DaemonInfo struct {
	Status          Status    `json:"status"`
	Version         string    `json:"version"`
	StartedAt       time.Time `json:"started_at"`
	Uptime          string    `json:"uptime"`
	ConfigFile      string    `json:"config_file,omitempty"`
	RebuildInterval string    `json:"rebuild_interval"`
	Builds          int64     `json:"builds"`
}

// BuildSummary condenses a build manifest for /status.
type BuildSummary struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	DurationMS  int64     `json:"duration_ms"`
	Routes      int       `json:"routes"`
	Documents   int       `json:"documents"`
	BrokenLinks int       `json:"broken_links"`
	Issues      int       `json:"issues"`
}

// StatusResponse is the /status payload.
type StatusResponse struct {
	Daemon    DaemonInfo    `json:"daemon"`
	LastBuild *BuildSummary `json:"last_build,omitempty"`
	LastError string        `json:"last_error,omitempty"`
}

func summarizeBuild(m *manifest.BuildManifest) *BuildSummary {
	if m == nil {
		return nil
	}
	return &BuildSummary{
		ID:          m.ID,
		Status:      string(m.Status),
		StartedAt:   m.StartedAt,
		FinishedAt:  m.FinishedAt,
		DurationMS:  m.Duration,
		Routes:      m.Counts.Routes,
		Documents:   m.Counts.Documents,
		BrokenLinks: m.Counts.BrokenLinks,
		Issues:      len(m.Issues),
	}
}

func summarizeEvent(e *notify.Event) *BuildSummary {
	if e == nil {
		return nil
	}
	return &BuildSummary{
		ID:          e.BuildID,
		Status:      string(e.Status),
		StartedAt:   e.Timestamp.Add(-time.Duration(e.DurationMS) * time.Millisecond),
		FinishedAt:  e.Timestamp,
		DurationMS:  e.DurationMS,
		Routes:      e.Routes,
		Documents:   e.Documents,
		BrokenLinks: e.BrokenLinks,
		Issues:      len(e.Issues),
	}
}

// StatusSnapshot assembles the current status response. Before the first
// build of this process finishes, the last event published to the notify
// status bucket fills in, so a restarted daemon still reports its most
// recent build.
func (d *Daemon) StatusSnapshot(ctx context.Context) *StatusResponse {
	last, builds, lastErr := d.lastBuildState()

	resp := &StatusResponse{
		Daemon: DaemonInfo{
			Status:          d.GetStatus(),
			Version:         version.Version,
			StartedAt:       d.startTime,
			Uptime:          time.Since(d.startTime).String(),
			ConfigFile:      d.configPath,
			RebuildInterval: d.GetConfig().Daemon.Interval().String(),
			Builds:          builds,
		},
		LastBuild: summarizeBuild(last),
	}
	if lastErr != nil {
		resp.LastError = lastErr.Error()
	}

	if resp.LastBuild == nil && d.notify != nil {
		kvCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		event, err := d.notify.LatestStatus(kvCtx)
		if err != nil {
			slog.Debug("Failed to read latest published build status", logfields.Error(err))
		} else {
			resp.LastBuild = summarizeEvent(event)
		}
	}
	return resp
}

// StatusHandler serves /status.
func (d *Daemon) StatusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if err := json.NewEncoder(w).Encode(d.StatusSnapshot(r.Context())); err != nil {
		slog.Error("Failed to encode status response", logfields.Error(err))
	}
}

package daemon

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/docpress/docpress/internal/logfields"
	"github.com/docpress/docpress/internal/manifest"
	"github.com/docpress/docpress/internal/version"
)

// HealthState grades a health check result.
type HealthState string

const (
	HealthOK       HealthState = "healthy"
	HealthDegraded HealthState = "degraded"
	HealthDown     HealthState = "unhealthy"
)

var healthRank = map[HealthState]int{HealthOK: 0, HealthDegraded: 1, HealthDown: 2}

// HealthCheck is a single named health check result.
type HealthCheck struct {
	Name    string      `json:"name"`
	Status  HealthState `json:"status"`
	Message string      `json:"message,omitempty"`
}

// HealthResponse is the /healthz payload.
type HealthResponse struct {
	Status    HealthState   `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	Version   string        `json:"version"`
	Checks    []HealthCheck `json:"checks"`
}

// PerformHealthChecks runs all checks and reports the worst result as the
// overall status. Only the daemon check can go unhealthy; a failed or
// degraded last build merely degrades the response, since previously written
// outputs remain valid.
func (d *Daemon) PerformHealthChecks() *HealthResponse {
	checks := []HealthCheck{
		d.checkDaemonHealth(),
		d.checkLastBuildHealth(),
		d.checkHistoryHealth(),
	}

	overall := HealthOK
	for _, c := range checks {
		if healthRank[c.Status] > healthRank[overall] {
			overall = c.Status
		}
	}

	return &HealthResponse{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(d.startTime).String(),
		Version:   version.Version,
		Checks:    checks,
	}
}

func (d *Daemon) checkDaemonHealth() HealthCheck {
	const name = "daemon_status"

	switch d.GetStatus() {
	case StatusRunning:
		return HealthCheck{Name: name, Status: HealthOK, Message: "daemon is running"}
	case StatusStarting:
		return HealthCheck{Name: name, Status: HealthDegraded, Message: "daemon is starting up"}
	case StatusStopping:
		return HealthCheck{Name: name, Status: HealthDegraded, Message: "daemon is shutting down"}
	default:
		return HealthCheck{Name: name, Status: HealthDown, Message: "daemon is not running"}
	}
}

func (d *Daemon) checkLastBuildHealth() HealthCheck {
	const name = "last_build"

	last, builds, err := d.lastBuildState()
	switch {
	case builds == 0:
		return HealthCheck{Name: name, Status: HealthDegraded, Message: "no build has completed yet"}
	case err != nil:
		return HealthCheck{Name: name, Status: HealthDegraded, Message: fmt.Sprintf("last build failed: %v", err)}
	case last != nil && last.Status == manifest.StatusDegraded:
		return HealthCheck{
			Name:    name,
			Status:  HealthDegraded,
			Message: fmt.Sprintf("last build degraded with %d issues", len(last.Issues)),
		}
	default:
		return HealthCheck{Name: name, Status: HealthOK, Message: "last build completed"}
	}
}

func (d *Daemon) checkHistoryHealth() HealthCheck {
	const name = "build_history"

	if d.history == nil {
		return HealthCheck{Name: name, Status: HealthOK, Message: "build history not configured"}
	}
	return HealthCheck{Name: name, Status: HealthOK, Message: "build history store open"}
}

// HealthHandler serves /healthz. Unhealthy responses get a 503 so load
// balancers stop routing to the instance.
func (d *Daemon) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	health := d.PerformHealthChecks()

	code := http.StatusOK
	if health.Status == HealthDown {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(health); err != nil {
		slog.Error("Failed to encode health response", logfields.Error(err))
	}
}

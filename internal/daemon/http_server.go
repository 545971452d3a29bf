package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/docpress/docpress/internal/config"
	"github.com/docpress/docpress/internal/logfields"
	"github.com/docpress/docpress/internal/metrics"
)

const defaultListenAddr = ":8080"

// HTTPServer serves the daemon's health, status and metrics endpoints on a
// single listener.
type HTTPServer struct {
	cfg    *config.DaemonConfig
	daemon *Daemon
	server *http.Server
	addr   string
}

// NewHTTPServer creates the daemon HTTP server. It does not listen until
// Start.
func NewHTTPServer(cfg *config.DaemonConfig, daemon *Daemon) *HTTPServer {
	addr := cfg.Listen
	if addr == "" {
		addr = defaultListenAddr
	}
	return &HTTPServer{
		cfg:    cfg,
		daemon: daemon,
		addr:   addr,
	}
}

// Addr returns the listen address the server was configured with.
func (s *HTTPServer) Addr() string {
	return s.addr
}

// Start binds the listener and begins serving. Binding happens before this
// returns so an occupied port fails fast instead of surfacing later from a
// goroutine.
func (s *HTTPServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.addr, err)
	}

	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server terminated", logfields.Error(err))
		}
	}()

	slog.Info("HTTP server listening", slog.String("addr", s.addr))
	return nil
}

// Stop gracefully shuts the server down.
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.daemon.HealthHandler)
	mux.HandleFunc("/status", s.daemon.StatusHandler)
	mux.HandleFunc("/build", s.daemon.TriggerBuildHandler)
	if s.cfg.Metrics && s.daemon.registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.daemon.registry))
	}
	return mux
}

// TriggerBuildHandler accepts POST requests to start a manual rebuild.
func (d *Daemon) TriggerBuildHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := d.TriggerBuild()
	if jobID == "" {
		http.Error(w, "daemon is not running", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]string{"job_id": jobID}); err != nil {
		slog.Error("Failed to encode build trigger response", logfields.Error(err))
	}
}

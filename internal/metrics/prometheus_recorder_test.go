package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorderRegistersAllMetrics(t *testing.T) {
	registry := prom.NewRegistry()
	rec := NewPrometheusRecorder(registry)

	rec.ObserveBuildDuration(500 * time.Millisecond)
	rec.IncBuildOutcome("completed")
	rec.SetRoutesResolved(12)
	rec.AddDocumentsFetched(12)
	rec.SetBrokenLinks(1)
	rec.ObserveStageDuration("resolve", 150*time.Millisecond)
	rec.IncStageResult("resolve", ResultSuccess)
	rec.IncPublishRetry("search")

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	registered := make(map[string]bool, len(families))
	for _, mf := range families {
		registered[mf.GetName()] = true
	}
	for _, name := range []string{
		"docpress_build_duration_seconds",
		"docpress_build_outcomes_total",
		"docpress_routes_resolved",
		"docpress_documents_fetched_total",
		"docpress_broken_links",
		"docpress_stage_duration_seconds",
		"docpress_stage_results_total",
		"docpress_publish_retries_total",
	} {
		if !registered[name] {
			t.Errorf("metric %s missing after recording against every instrument", name)
		}
	}
}

func TestHTTPHandlerServesMetrics(t *testing.T) {
	registry := prom.NewRegistry()
	NewPrometheusRecorder(registry).IncBuildOutcome("completed")

	w := httptest.NewRecorder()
	HTTPHandler(registry).ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.Len() == 0 {
		t.Fatal("expected metrics body")
	}
}

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveBuildDuration(time.Second)
	r.IncBuildOutcome("failed")
	r.SetRoutesResolved(1)
	r.AddDocumentsFetched(2)
	r.SetBrokenLinks(0)
	r.ObserveStageDuration("resolve", time.Second)
	r.IncStageResult("resolve", ResultWarning)
	r.IncPublishRetry("notify")
}

package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder exports pipeline measurements under the docpress
// namespace. Construct it once per registry; callers that run without
// metrics inject NoopRecorder instead of a nil recorder.
type PrometheusRecorder struct {
	buildDuration    prom.Histogram
	buildOutcome     *prom.CounterVec
	routesResolved   prom.Gauge
	documentsFetched prom.Counter
	brokenLinks      prom.Gauge
	stageDuration    *prom.HistogramVec
	stageResults     *prom.CounterVec
	publishRetries   *prom.CounterVec
}

// NewPrometheusRecorder registers the docpress metric set on reg. A nil reg
// gets a private registry, which keeps tests isolated from each other.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	f := promauto.With(reg)

	return &PrometheusRecorder{
		buildDuration: f.NewHistogram(prom.HistogramOpts{
			Namespace: "docpress",
			Name:      "build_duration_seconds",
			Help:      "Wall-clock time of whole builds",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: f.NewCounterVec(prom.CounterOpts{
			Namespace: "docpress",
			Name:      "build_outcomes_total",
			Help:      "Finished builds by outcome",
		}, []string{"outcome"}),
		routesResolved: f.NewGauge(prom.GaugeOpts{
			Namespace: "docpress",
			Name:      "routes_resolved",
			Help:      "Routes resolved by the most recent build",
		}),
		documentsFetched: f.NewCounter(prom.CounterOpts{
			Namespace: "docpress",
			Name:      "documents_fetched_total",
			Help:      "Documents fetched from the content store",
		}),
		brokenLinks: f.NewGauge(prom.GaugeOpts{
			Namespace: "docpress",
			Name:      "broken_links",
			Help:      "Broken internal links found by the most recent build",
		}),
		stageDuration: f.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docpress",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: f.NewCounterVec(prom.CounterOpts{
			Namespace: "docpress",
			Name:      "stage_results_total",
			Help:      "Per-stage results by outcome label",
		}, []string{"stage", "result"}),
		publishRetries: f.NewCounterVec(prom.CounterOpts{
			Namespace: "docpress",
			Name:      "publish_retries_total",
			Help:      "Publishing retries by target",
		}, []string{"target"}),
	}
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetRoutesResolved(n int) {
	p.routesResolved.Set(float64(n))
}

func (p *PrometheusRecorder) AddDocumentsFetched(n int) {
	p.documentsFetched.Add(float64(n))
}

func (p *PrometheusRecorder) SetBrokenLinks(n int) {
	p.brokenLinks.Set(float64(n))
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncPublishRetry(target string) {
	p.publishRetries.WithLabelValues(target).Inc()
}

// HTTPHandler returns an http.Handler serving Prometheus metrics for reg.
// The daemon mounts it at /metrics when metrics are enabled.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

package metrics

import "time"

// ResultLabel is the per-stage outcome attached to stage counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder receives pipeline measurements. The Prometheus implementation
// exports them; NoopRecorder swallows them, so components take a Recorder by
// injection and never nil-check.
type Recorder interface {
	// Pipeline totals.
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string) // outcome: completed|degraded|failed
	SetRoutesResolved(n int)
	AddDocumentsFetched(n int)
	SetBrokenLinks(n int)

	// Per-stage breakdowns.
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncPublishRetry(target string) // target: search|notify
}

// NoopRecorder drops every measurement. It is the default when the metrics
// endpoint is not configured.
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) SetRoutesResolved(int)                      {}
func (NoopRecorder) AddDocumentsFetched(int)                    {}
func (NoopRecorder) SetBrokenLinks(int)                         {}
func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncPublishRetry(string)                     {}

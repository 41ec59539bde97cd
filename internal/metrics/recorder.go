package metrics

import "time"

// ResultLabel enumerates per-document outcomes for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultSkipped ResultLabel = "skipped"
	ResultFailed  ResultLabel = "failed"
)

// Stage names used with ObserveStageDuration.
const (
	StageExtract = "extract"
	StageExport  = "export"
	StageMerge   = "merge"
)

// Recorder defines observability hooks for extraction runs. All methods must
// be safe to call on a nil *PrometheusRecorder.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncDocumentResult(result ResultLabel)
	AddUnits(kind string, n int)
	SetWorkers(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncDocumentResult(ResultLabel)              {}
func (NoopRecorder) AddUnits(string, int)                       {}
func (NoopRecorder) SetWorkers(int)                             {}

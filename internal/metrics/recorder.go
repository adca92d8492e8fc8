package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel is the final status of a build.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess BuildOutcomeLabel = "success"
	BuildOutcomeWarning BuildOutcomeLabel = "warning"
	BuildOutcomeFailed  BuildOutcomeLabel = "failed"
)

// Recorder defines observability hooks for builds, stages, pages and tasks.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	ObservePageDuration(pageType string, d time.Duration, success bool)
	ObserveTaskDuration(task string, d time.Duration, success bool)
	SetRoutes(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)      {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)              {}
func (NoopRecorder) IncStageResult(string, ResultLabel)              {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)               {}
func (NoopRecorder) ObservePageDuration(string, time.Duration, bool) {}
func (NoopRecorder) ObserveTaskDuration(string, time.Duration, bool) {}
func (NoopRecorder) SetRoutes(int)                                   {}

package build

import (
	"time"

	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
	"git.home.luguber.info/inful/sitegen/internal/routes"
)

// BuildObserver receives callbacks around stage, page and task execution.
type BuildObserver interface {
	OnStageStart(stage StageName)
	OnStageComplete(stage StageName, duration time.Duration, result StageResult)
	// OnPageCompiled is called after every compile attempt; done counts
	// attempts so far out of total for the page type.
	OnPageCompiled(pageType pagetype.Type, route routes.Route, done, total int, duration time.Duration, err error)
	OnTaskComplete(task string, duration time.Duration, err error)
	OnBuildComplete(report *Report)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(StageName)                                                     {}
func (NoopObserver) OnStageComplete(StageName, time.Duration, StageResult)                      {}
func (NoopObserver) OnPageCompiled(pagetype.Type, routes.Route, int, int, time.Duration, error) {}
func (NoopObserver) OnTaskComplete(string, time.Duration, error)                                {}
func (NoopObserver) OnBuildComplete(*Report)                                                    {}

// RecorderObserver adapts metrics.Recorder into a BuildObserver.
type RecorderObserver struct{ Recorder metrics.Recorder }

func (r RecorderObserver) OnStageStart(StageName) {}

func (r RecorderObserver) OnStageComplete(stage StageName, d time.Duration, _ StageResult) {
	r.Recorder.ObserveStageDuration(string(stage), d)
}

func (r RecorderObserver) OnPageCompiled(t pagetype.Type, _ routes.Route, _, _ int, d time.Duration, err error) {
	r.Recorder.ObservePageDuration(string(t), d, err == nil)
}

func (r RecorderObserver) OnTaskComplete(task string, d time.Duration, err error) {
	r.Recorder.ObserveTaskDuration(task, d, err == nil)
}

func (r RecorderObserver) OnBuildComplete(report *Report) {
	r.Recorder.ObserveBuildDuration(report.End.Sub(report.Start))
	r.Recorder.SetRoutes(report.Routes)
	switch report.Outcome {
	case OutcomeSuccess:
		r.Recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
	case OutcomeWarning:
		r.Recorder.IncBuildOutcome(metrics.BuildOutcomeWarning)
	default:
		r.Recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
	}
}

// Observers fans callbacks out to several observers in order.
type Observers []BuildObserver

func (o Observers) OnStageStart(stage StageName) {
	for _, ob := range o {
		ob.OnStageStart(stage)
	}
}

func (o Observers) OnStageComplete(stage StageName, d time.Duration, res StageResult) {
	for _, ob := range o {
		ob.OnStageComplete(stage, d, res)
	}
}

func (o Observers) OnPageCompiled(t pagetype.Type, r routes.Route, done, total int, d time.Duration, err error) {
	for _, ob := range o {
		ob.OnPageCompiled(t, r, done, total, d, err)
	}
}

func (o Observers) OnTaskComplete(task string, d time.Duration, err error) {
	for _, ob := range o {
		ob.OnTaskComplete(task, d, err)
	}
}

func (o Observers) OnBuildComplete(report *Report) {
	for _, ob := range o {
		ob.OnBuildComplete(report)
	}
}

package build

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/observability"
)

// runStages executes stages in order, recording timing and stopping on the
// first fatal error.
func (o *Orchestrator) runStages(ctx context.Context, st *State, stages []StageDef) error {
	for _, def := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(def.Name, ctx.Err())
			st.Report.Errors = append(st.Report.Errors, se)
			st.Report.RecordStageResult(def.Name, StageResultCanceled, o.recorder)
			o.observers.OnStageComplete(def.Name, 0, StageResultCanceled)
			return se
		default:
		}

		stageCtx := observability.WithStage(ctx, string(def.Name))
		o.observers.OnStageStart(def.Name)
		t0 := time.Now()
		err := def.Fn(stageCtx, st)
		dur := time.Since(t0)
		st.Report.StageDurations[def.Name] = dur

		se, result := classifyStageResult(def.Name, err)
		switch result {
		case StageResultWarning:
			st.Report.Warnings = append(st.Report.Warnings, se)
		case StageResultFatal, StageResultCanceled:
			st.Report.Errors = append(st.Report.Errors, se)
		}
		st.Report.RecordStageResult(def.Name, result, o.recorder)
		o.observers.OnStageComplete(def.Name, dur, result)
		slog.DebugContext(stageCtx, "Stage complete", logfields.Duration(dur), slog.String("result", string(result)))

		if result == StageResultFatal || result == StageResultCanceled {
			return se
		}
	}
	return nil
}

func classifyStageResult(stage StageName, err error) (*StageError, StageResult) {
	if err == nil {
		return nil, StageResultSuccess
	}
	var se *StageError
	if !errors.As(err, &se) {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			se = newCanceledStageError(stage, err)
		default:
			se = newFatalStageError(stage, err)
		}
	}
	switch se.Kind {
	case StageErrorWarning:
		return se, StageResultWarning
	case StageErrorCanceled:
		return se, StageResultCanceled
	default:
		return se, StageResultFatal
	}
}

package build

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
	"git.home.luguber.info/inful/sitegen/internal/version"
)

func TestBuildStatus_IsSuccess(t *testing.T) {
	tests := []struct {
		status   BuildStatus
		expected bool
	}{
		{BuildStatusSuccess, true},
		{BuildStatusWarning, true},
		{BuildStatusFailed, false},
		{BuildStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			require.Equal(t, tt.expected, tt.status.IsSuccess())
			require.True(t, tt.status.IsTerminal())
		})
	}
	require.False(t, BuildStatus("running").IsTerminal())
}

func TestDeriveOutcome(t *testing.T) {
	r := NewReport("id")
	r.DeriveOutcome()
	require.Equal(t, OutcomeSuccess, r.Outcome)

	r.Warnings = append(r.Warnings, Warning{Source: "feed", Err: errors.New("x")})
	r.DeriveOutcome()
	require.Equal(t, OutcomeWarning, r.Outcome)

	r.Errors = append(r.Errors, newFatalStageError(StageCompile, errors.New("y")))
	r.DeriveOutcome()
	require.Equal(t, OutcomeFailed, r.Outcome)

	r.Errors = []error{newCanceledStageError(StageParse, context.Canceled)}
	r.DeriveOutcome()
	require.Equal(t, OutcomeCanceled, r.Outcome)
}

func TestReportPersist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	r := NewReport("build-42")
	r.Routes = 3
	r.recordPage(pagetype.Documentation, true)
	r.recordPage(pagetype.Documentation, false)
	r.Tasks = []string{"sitemap"}
	r.Warnings = append(r.Warnings, Warning{Source: "sitemap", Err: errors.New("disk full")})
	r.RecordStageResult(StageCompile, StageResultFatal, metrics.NoopRecorder{})

	require.NoError(t, r.Persist(dir))

	data, err := os.ReadFile(filepath.Join(dir, ReportJSONFilename))
	require.NoError(t, err)
	var s ReportSerializable
	require.NoError(t, json.Unmarshal(data, &s))
	require.Equal(t, "build-42", s.BuildID)
	require.Equal(t, version.String(), s.Generator)
	require.Equal(t, "warning", s.Outcome)
	require.Equal(t, []string{"sitemap: disk full"}, s.Warnings)
	require.Equal(t, PageCount{Compiled: 1, Failed: 1}, s.Pages["documentation"])
	require.Equal(t, StageCount{Fatal: 1}, s.StageCounts["compile"])

	summary, err := os.ReadFile(filepath.Join(dir, ReportTextFilename))
	require.NoError(t, err)
	require.Contains(t, string(summary), "build=build-42 routes=3 pages=[documentation=1/2] tasks=1")
	require.NoFileExists(t, filepath.Join(dir, ReportJSONFilename+".tmp"))
}

func TestWarnings(t *testing.T) {
	w := NewWarnings(false)
	require.NoError(t, w.Add("feed", errors.New("a")))
	require.NoError(t, w.Add("search", errors.New("b")))
	require.Equal(t, 2, w.Len())
	require.Equal(t, "feed", w.List()[0].Source)

	fatal := NewWarnings(true)
	err := fatal.Add("feed", errors.New("a"))
	require.ErrorIs(t, err, ErrWarningsFatal)
	require.Equal(t, 1, fatal.Len())
}

func TestPipelineAddIf(t *testing.T) {
	noop := func(context.Context, *State) error { return nil }
	defs := NewPipeline().
		AddIf(false, StagePrebuild, noop).
		Add(StageDiscover, noop).
		AddIf(true, StageParse, noop).
		Build()
	require.Len(t, defs, 2)
	require.Equal(t, StageDiscover, defs[0].Name)
	require.Equal(t, StageParse, defs[1].Name)
}

func TestClassifyStageResult(t *testing.T) {
	se, res := classifyStageResult(StageParse, nil)
	require.Nil(t, se)
	require.Equal(t, StageResultSuccess, res)

	se, res = classifyStageResult(StageParse, context.Canceled)
	require.Equal(t, StageResultCanceled, res)
	require.Equal(t, StageErrorCanceled, se.Kind)

	se, res = classifyStageResult(StageRoute, errors.New("boom"))
	require.Equal(t, StageResultFatal, res)
	require.Equal(t, StageRoute, se.Stage)
	require.Equal(t, "fatal stage route: boom", se.Error())
}

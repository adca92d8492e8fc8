package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

// BuildService is the canonical interface for executing site builds.
type BuildService interface {
	// Run executes the complete pipeline: pre-build, discover, parse, route,
	// navigate, compile, post-build.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains the per-invocation inputs of a build.
type BuildRequest struct {
	// Overrides are applied to a copy of the loaded configuration before the
	// pipeline starts.
	Overrides config.Overrides

	// SkipAssets disables the configured assets command for this build.
	SkipAssets bool
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	// Status indicates overall build outcome.
	Status BuildStatus

	// BuildID identifies this build in logs, report and manifest.
	BuildID string

	// Report contains per-stage timings, counts, warnings and errors.
	Report *Report

	// OutputPath is the absolute site output directory.
	OutputPath string

	// Routes is the number of routes in the route table.
	Routes int

	// PagesCompiled is the number of pages written.
	PagesCompiled int

	// Warnings are the warnings collected during the build.
	Warnings []Warning

	// Duration is the total build execution time.
	Duration time.Duration

	// StartTime is when the build started.
	StartTime time.Time

	// EndTime is when the build completed.
	EndTime time.Time
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates the build completed without warnings.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusWarning indicates the build completed with non-fatal warnings.
	BuildStatusWarning BuildStatus = "warning"

	// BuildStatusFailed indicates the build encountered an error.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the build was cancelled.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusWarning ||
		s == BuildStatusFailed || s == BuildStatusCancelled
}

// IsSuccess returns true if the build produced a complete site.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess || s == BuildStatusWarning
}

func statusFor(outcome Outcome) BuildStatus {
	switch outcome {
	case OutcomeSuccess:
		return BuildStatusSuccess
	case OutcomeWarning:
		return BuildStatusWarning
	case OutcomeCanceled:
		return BuildStatusCancelled
	default:
		return BuildStatusFailed
	}
}

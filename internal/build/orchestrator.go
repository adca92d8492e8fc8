package build

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitegen/internal/build/tasks"
	"git.home.luguber.info/inful/sitegen/internal/config"
	derrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/observability"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
	"git.home.luguber.info/inful/sitegen/internal/render"
	"git.home.luguber.info/inful/sitegen/internal/routes"
	"git.home.luguber.info/inful/sitegen/internal/writer"
)

// Orchestrator runs builds for one project configuration.
type Orchestrator struct {
	cfg        *config.Config
	recorder   metrics.Recorder
	observers  Observers
	renderer   render.Renderer
	converter  render.Converter
	runner     tasks.CommandRunner
	registered []tasks.Task
	newBuildID func() string
}

var _ BuildService = (*Orchestrator)(nil)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder sets the metrics recorder. Stage, page, task and build
// metrics are reported through it.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithObserver adds a build observer, e.g. for progress output.
func WithObserver(ob BuildObserver) Option {
	return func(o *Orchestrator) { o.observers = append(o.observers, ob) }
}

// WithRenderer replaces the template renderer.
func WithRenderer(r render.Renderer) Option {
	return func(o *Orchestrator) { o.renderer = r }
}

// WithConverter replaces the Markdown converter.
func WithConverter(c render.Converter) Option {
	return func(o *Orchestrator) { o.converter = c }
}

// WithCommandRunner replaces the runner used for external commands.
func WithCommandRunner(r tasks.CommandRunner) Option {
	return func(o *Orchestrator) { o.runner = r }
}

// WithTask registers a post-build task.
func WithTask(t tasks.Task) Option {
	return func(o *Orchestrator) { o.registered = append(o.registered, t) }
}

// New creates an Orchestrator for cfg.
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:        cfg,
		recorder:   metrics.NoopRecorder{},
		converter:  render.NewGoldmark(),
		runner:     tasks.ExecRunner{},
		newBuildID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.observers = append(Observers{RecorderObserver{Recorder: o.recorder}}, o.observers...)
	return o
}

// Register adds a post-build task. Tasks run after configured and extension
// tasks, in registration order.
func (o *Orchestrator) Register(t tasks.Task) {
	o.registered = append(o.registered, t)
}

// Config returns the configuration the orchestrator was created with.
func (o *Orchestrator) Config() *config.Config { return o.cfg }

// Run executes the complete build pipeline.
func (o *Orchestrator) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	if o.cfg == nil {
		return &BuildResult{Status: BuildStatusFailed}, derrors.ConfigError("config required").Build()
	}

	cfg := o.cfg.WithOverrides(req.Overrides)
	st := o.newState(cfg)
	result := &BuildResult{
		BuildID:    st.BuildID,
		StartTime:  st.Report.Start,
		OutputPath: st.OutputRoot(),
		Report:     st.Report,
	}
	ctx = observability.WithBuildID(ctx, st.BuildID)
	slog.InfoContext(ctx, "Starting build", logfields.Path(result.OutputPath))

	stages := NewPipeline().
		AddIf(cfg.Build.AssetsCommand != "" && !req.SkipAssets, StagePrebuild, stagePrebuild).
		Add(StageDiscover, stageDiscover).
		Add(StageParse, stageParse).
		Add(StageRoute, stageRoute).
		Add(StageNavigate, stageNavigate).
		Add(StageCompile, stageCompile).
		Add(StagePostBuild, stagePostBuild).
		Build()

	err := o.runStages(ctx, st, stages)

	report := st.Report
	for _, w := range st.Warnings.List() {
		report.Warnings = append(report.Warnings, w)
	}
	report.Finish()
	report.DeriveOutcome()
	o.observers.OnBuildComplete(report)
	if perr := report.Persist(cfg.Path(cfg.Paths.Cache)); perr != nil {
		slog.WarnContext(ctx, "Failed to persist build report", logfields.Error(perr))
	}

	result.Status = statusFor(report.Outcome)
	result.EndTime = report.End
	result.Duration = report.End.Sub(report.Start)
	result.Routes = report.Routes
	result.PagesCompiled = report.PagesCompiled()
	result.Warnings = st.Warnings.List()

	slog.InfoContext(ctx, "Build finished",
		slog.String("outcome", string(report.Outcome)),
		logfields.Count(result.PagesCompiled),
		logfields.Duration(result.Duration))
	return result, err
}

// Routes discovers, parses and routes every page without compiling anything.
func (o *Orchestrator) Routes(ctx context.Context) (*routes.Table, error) {
	st := o.newState(o.cfg)
	stages := NewPipeline().
		Add(StageDiscover, stageDiscover).
		Add(StageParse, stageParse).
		Add(StageRoute, stageRoute).
		Build()
	if err := o.runStages(ctx, st, stages); err != nil {
		return nil, err
	}
	return st.Routes, nil
}

// Rebuild compiles exactly one source file and returns the absolute output
// path written. sourcePath may be absolute or relative to the project root
// and must lie inside one of the page type source directories. The whole
// route table and navigation are rebuilt so the page renders exactly as in a
// full build. overrides must match those of the full build being updated.
func (o *Orchestrator) Rebuild(ctx context.Context, sourcePath string, overrides config.Overrides) (string, error) {
	if o.cfg == nil {
		return "", derrors.ConfigError("config required").Build()
	}
	cfg := o.cfg.WithOverrides(overrides)
	rel, err := o.projectRelative(sourcePath)
	if err != nil {
		return "", err
	}
	if _, _, err := pagetype.FromConfig(cfg).ForSourcePath(rel); err != nil {
		return "", derrors.WrapError(fmt.Errorf("%w: %s", ErrSourceOutsideProject, rel), derrors.CategoryValidation, "cannot rebuild file").
			Fatal().
			WithContext("path", rel).
			Build()
	}

	st := o.newState(cfg)
	ctx = observability.WithBuildID(ctx, st.BuildID)
	stages := NewPipeline().
		Add(StageDiscover, stageDiscover).
		Add(StageParse, stageParse).
		Add(StageRoute, stageRoute).
		Add(StageNavigate, stageNavigate).
		Build()
	if err := o.runStages(ctx, st, stages); err != nil {
		return "", err
	}

	route, err := st.Routes.FromSourcePath(rel)
	if err != nil {
		return "", derrors.NotFoundError(err, "no route for source file").WithContext("path", rel).Build()
	}
	w, err := o.writer(st)
	if err != nil {
		return "", err
	}
	t0 := time.Now()
	target, err := w.Write(route)
	o.observers.OnPageCompiled(route.Type, route, 1, 1, time.Since(t0), err)
	if err != nil {
		return "", derrors.BuildError(err, "failed to compile page").
			WithContext("route_key", route.Key).
			WithContext("path", route.SourcePath).
			Build()
	}
	slog.InfoContext(ctx, "Rebuilt page", logfields.RouteKey(route.Key), logfields.Path(target))
	return target, nil
}

func (o *Orchestrator) newState(cfg *config.Config) *State {
	id := o.newBuildID()
	return &State{
		Config:       cfg,
		BuildID:      id,
		Report:       NewReport(id),
		Warnings:     NewWarnings(cfg.Build.WarningsFatal),
		orchestrator: o,
	}
}

func (o *Orchestrator) writer(st *State) (*writer.Writer, error) {
	renderer := o.renderer
	if renderer == nil {
		layouts := st.Config.Path(st.Config.Paths.Layouts)
		tpl, err := render.NewTemplates(layouts)
		if err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to load layouts").
				Fatal().
				WithContext("path", layouts).
				Build()
		}
		renderer = tpl
	}
	return writer.New(st.OutputRoot(), renderer, o.converter, writer.Site{
		Config:  st.Config.Site,
		Table:   st.Routes,
		Menu:    st.MainMenu,
		Sidebar: st.Sidebar,
	}), nil
}

func (o *Orchestrator) projectRelative(sourcePath string) (string, error) {
	p := sourcePath
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(o.cfg.Root, p)
		if err != nil {
			return "", derrors.WrapError(err, derrors.CategoryValidation, "cannot rebuild file").Fatal().WithContext("path", sourcePath).Build()
		}
		p = rel
	}
	p = path.Clean(filepath.ToSlash(p))
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", derrors.WrapError(fmt.Errorf("%w: %s", ErrSourceOutsideProject, sourcePath), derrors.CategoryValidation, "cannot rebuild file").
			Fatal().
			WithContext("path", sourcePath).
			Build()
	}
	return p, nil
}

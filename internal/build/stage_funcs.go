package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/build/tasks"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/discovery"
	derrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
	"git.home.luguber.info/inful/sitegen/internal/lastmod"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/navigation"
	"git.home.luguber.info/inful/sitegen/internal/observability"
	"git.home.luguber.info/inful/sitegen/internal/pages"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
	"git.home.luguber.info/inful/sitegen/internal/routes"
)

func stagePrebuild(ctx context.Context, st *State) error {
	cmd := st.Config.Build.AssetsCommand
	slog.InfoContext(ctx, "Running assets command", slog.String("command", cmd))
	if err := tasks.RunAssetsCommand(ctx, st.orchestrator.runner, st.Config.Root, cmd); err != nil {
		return derrors.BuildError(err, "assets command failed").Fatal().WithContext("command", cmd).Build()
	}
	return nil
}

func stageDiscover(ctx context.Context, st *State) error {
	st.Types = pagetype.FromConfig(st.Config)
	files, err := discovery.New(st.Types).All()
	if err != nil {
		return derrors.FileSystemError(err, "failed to discover source files").Fatal().Build()
	}
	st.Files = files
	slog.InfoContext(ctx, "Discovered source files", logfields.Count(len(files)))
	return nil
}

func stageParse(ctx context.Context, st *State) error {
	reg := pages.NewRegistry(st.Types, pages.Options{NumericalOrdering: st.Config.OrderingEnabled()})
	for _, f := range st.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := reg.Add(f.Type, f.Identifier); err != nil {
			return classifyParseError(err, f)
		}
	}
	st.Pages = reg
	return nil
}

func classifyParseError(err error, f discovery.File) error {
	var b *derrors.ErrorBuilder
	switch {
	case errors.Is(err, pages.ErrFileNotFound):
		b = derrors.NotFoundError(err, "source file not found")
	case errors.Is(err, frontmatter.ErrParse):
		b = derrors.ParseError(err, "failed to parse page")
	case errors.Is(err, pagetype.ErrUnsupportedPageType):
		b = derrors.WrapError(err, derrors.CategoryConfig, "unsupported page type")
	default:
		b = derrors.FileSystemError(err, "failed to read page")
	}
	return b.WithContext("path", f.Path).WithContext("page_type", string(f.Type)).Build()
}

func stageRoute(ctx context.Context, st *State) error {
	table, err := routes.Build(st.Types, st.Pages.All(), routes.Options{
		PrettyURLs:        st.Config.PrettyURLs,
		FlattenDocs:       st.Config.FlattenDocs(),
		NumericalOrdering: st.Config.OrderingEnabled(),
	})
	if err != nil {
		b := derrors.RoutingError(err, "failed to build route table")
		var collision *routes.CollisionError
		if errors.As(err, &collision) {
			b = b.WithContext("route_key", collision.Key).
				WithContext("first", collision.First).
				WithContext("second", collision.Second)
		}
		return b.Build()
	}
	st.Routes = table
	st.Report.Routes = table.Len()
	slog.InfoContext(ctx, "Built route table", logfields.Count(table.Len()))
	return nil
}

func stageNavigate(_ context.Context, st *State) error {
	b := navigation.NewBuilder(st.Routes, navigation.OptionsFromConfig(st.Config))
	st.MainMenu = b.MainMenu()
	st.Sidebar = b.Sidebar()
	return nil
}

// stageCompile writes every route, one page type at a time. A failing page
// stops its own type's loop; other types still compile.
func stageCompile(ctx context.Context, st *State) error {
	o := st.orchestrator
	w, err := o.writer(st)
	if err != nil {
		return err
	}

	var failures []error
	for _, d := range st.Types.Descriptors() {
		group := st.Routes.ByType(d.Type)
		for i, r := range group {
			if err := ctx.Err(); err != nil {
				return err
			}
			t0 := time.Now()
			_, werr := w.Write(r)
			o.observers.OnPageCompiled(d.Type, r, i+1, len(group), time.Since(t0), werr)
			if werr != nil {
				st.Report.recordPage(d.Type, false)
				slog.ErrorContext(ctx, "Failed to compile page",
					logfields.PageType(string(d.Type)),
					logfields.RouteKey(r.Key),
					logfields.Path(r.SourcePath),
					logfields.Error(werr))
				failures = append(failures, derrors.BuildError(werr, "failed to compile page").
					WithContext("route_key", r.Key).
					WithContext("path", r.SourcePath).
					Build())
				break
			}
			st.Report.recordPage(d.Type, true)
		}
		if len(group) > 0 {
			slog.InfoContext(ctx, "Compiled page type",
				logfields.PageType(string(d.Type)),
				logfields.Count(st.Report.Pages[d.Type].Compiled))
		}
	}

	if len(failures) > 0 {
		return derrors.BuildError(fmt.Errorf("%w: %w", ErrCompile, errors.Join(failures...)), "build incomplete").
			Fatal().
			WithContext("failed_page_types", len(failures)).
			Build()
	}
	return nil
}

// stagePostBuild runs the task pipeline. Task failures become warnings.
func stagePostBuild(ctx context.Context, st *State) error {
	o := st.orchestrator
	cfg := st.Config

	list, err := tasks.Assemble(tasks.Plan{Config: cfg, Registered: o.registered, Runner: o.runner})
	if err != nil {
		if ferr := st.Warnings.Add("extensions", err); ferr != nil {
			return derrors.TaskError(ferr, "invalid extension tasks").Fatal().Build()
		}
	}

	var source lastmod.Source = lastmod.None{}
	if cfg.Features.Enabled(config.FeatureSitemap) && cfg.Site.BaseURL != "" {
		source = lastmod.New(cfg.Sitemap.Lastmod, cfg.Root)
	}
	tc := &tasks.Context{
		Config:     cfg,
		Routes:     st.Routes,
		OutputRoot: st.OutputRoot(),
		BuildID:    st.BuildID,
		StartedAt:  st.Report.Start,
		Lastmod:    source,
	}

	for _, task := range list {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := task.Name()
		t0 := time.Now()
		terr := runTask(observability.WithTask(ctx, name), task, tc)
		dur := time.Since(t0)
		st.Report.TaskDurations[name] = dur
		st.Report.Tasks = append(st.Report.Tasks, name)
		o.observers.OnTaskComplete(name, dur, terr)
		if terr == nil {
			slog.DebugContext(ctx, "Task complete", logfields.Task(name), logfields.Duration(dur))
			continue
		}
		if ferr := st.Warnings.Add(name, terr); ferr != nil {
			return derrors.TaskError(ferr, "post-build task failed").Fatal().WithContext("task", name).Build()
		}
	}
	return nil
}

// runTask converts a panicking task into an error so it is handled like any
// other task failure.
func runTask(ctx context.Context, t tasks.Task, tc *tasks.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return t.Run(ctx, tc)
}

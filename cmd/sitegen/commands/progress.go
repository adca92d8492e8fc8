package commands

import (
	"io"
	"os"
	"time"

	"github.com/pterm/pterm"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
	"git.home.luguber.info/inful/sitegen/internal/routes"
)

// progressObserver prints per page type counters and task results.
type progressObserver struct {
	build.NoopObserver
	info    *pterm.PrefixPrinter
	success *pterm.PrefixPrinter
	warning *pterm.PrefixPrinter
	fail    *pterm.PrefixPrinter
	verbose bool
}

func newProgressObserver(w io.Writer, verbose bool) *progressObserver {
	if w == nil {
		w = os.Stdout
	}
	return &progressObserver{
		info:    pterm.Info.WithWriter(w),
		success: pterm.Success.WithWriter(w),
		warning: pterm.Warning.WithWriter(w),
		fail:    pterm.Error.WithWriter(w),
		verbose: verbose,
	}
}

func (p *progressObserver) OnPageCompiled(t pagetype.Type, r routes.Route, done, total int, _ time.Duration, err error) {
	switch {
	case err != nil:
		p.fail.Printfln("%s: %s failed after %d/%d pages: %v", t, r.SourcePath, done-1, total, err)
	case p.verbose:
		p.info.Printfln("%s [%d/%d] %s", t, done, total, r.OutputPath)
	case done == total:
		p.info.Printfln("%s: %d/%d pages", t, done, total)
	}
}

func (p *progressObserver) OnTaskComplete(task string, d time.Duration, err error) {
	if err != nil {
		p.warning.Printfln("task %s failed: %v", task, err)
		return
	}
	p.success.Printfln("task %s (%s)", task, d.Truncate(time.Millisecond))
}

package commands

import (
	"io"
	"os"

	"github.com/pterm/pterm"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
)

// RebuildCmd implements the 'rebuild' command.
type RebuildCmd struct {
	Path       string `arg:"" help:"Source file to recompile, relative to the project root or absolute"`
	Output     string `short:"o" help:"Output directory (overrides paths.output)"`
	PrettyURLs bool   `name:"pretty-urls" help:"Link to pages without the .html suffix"`

	out io.Writer
}

// Overrides mirrors the build flags so a rebuilt page matches the full build.
func (r *RebuildCmd) Overrides() config.Overrides {
	return (&BuildCmd{Output: r.Output, PrettyURLs: r.PrettyURLs}).Overrides()
}

func (r *RebuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	target, err := build.New(cfg).Rebuild(g.ctx(), r.Path, r.Overrides())
	if err != nil {
		return err
	}
	out := r.out
	if out == nil {
		out = os.Stdout
	}
	pterm.Success.WithWriter(out).Printfln("Rebuilt %s -> %s", r.Path, target)
	return nil
}

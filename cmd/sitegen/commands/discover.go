package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/discovery"
	derrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/pagetype"
)

// DiscoverCmd implements the 'discover' command.
type DiscoverCmd struct {
	Type string `short:"t" help:"Only list this page type (templated, markdown-page, markdown-post, documentation)"`

	out io.Writer
}

func (d *DiscoverCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	out := d.out
	if out == nil {
		out = os.Stdout
	}
	only := pagetype.Type(d.Type)
	if only != "" && !only.Valid() {
		return derrors.ValidationError(fmt.Sprintf("unknown page type %q", d.Type)).Build()
	}
	return RunDiscover(out, cfg, only)
}

// RunDiscover prints the identifiers of every page type, or of only the
// given one when it is non-empty.
func RunDiscover(out io.Writer, cfg *config.Config, only pagetype.Type) error {
	registry := pagetype.FromConfig(cfg)
	disc := discovery.New(registry)
	for _, desc := range registry.Descriptors() {
		if only != "" && desc.Type != only {
			continue
		}
		ids, err := disc.Identifiers(desc.Type)
		if err != nil {
			return err
		}
		pterm.Info.WithWriter(out).Printfln("%s (%s): %d", desc.Type, desc.SourceDirectory, len(ids))
		for _, id := range ids {
			pterm.Fprintln(out, "  "+id)
		}
	}
	return nil
}

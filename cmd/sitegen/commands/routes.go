package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/routes"
)

// RouteListCmd implements the 'route:list' command.
type RouteListCmd struct {
	JSON bool `name:"json" help:"Print the route table as JSON"`

	out io.Writer
}

func (c *RouteListCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	table, err := build.New(cfg).Routes(g.ctx())
	if err != nil {
		return err
	}
	out := c.out
	if out == nil {
		out = os.Stdout
	}
	if c.JSON {
		return writeRoutesJSON(out, table.Entries())
	}
	return writeRoutesTable(out, table.Entries())
}

func writeRoutesJSON(w io.Writer, entries []routes.Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode routes: %w", err)
	}
	return nil
}

func writeRoutesTable(w io.Writer, entries []routes.Entry) error {
	data := pterm.TableData{{"Route", "Type", "Source", "Output", "URI"}}
	for _, e := range entries {
		data = append(data, []string{e.Key, e.Type, e.SourcePath, e.OutputPath, e.URI})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

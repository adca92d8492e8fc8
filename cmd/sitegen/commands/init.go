package commands

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"

	"git.home.luguber.info/inful/sitegen/internal/config"
	derrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Output string `short:"o" name:"output" help:"Project directory for the generated config file"`

	out io.Writer
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	out := i.out
	if out == nil {
		out = os.Stdout
	}
	// With an explicit project directory the config is placed there as "sitegen.yaml".
	if i.Output != "" {
		return RunInit(out, filepath.Join(i.Output, "sitegen.yaml"), i.Force)
	}
	return RunInit(out, root.Config, i.Force)
}

func RunInit(out io.Writer, configPath string, force bool) error {
	pterm.Info.WithWriter(out).Printfln("Writing configuration to %s", configPath)
	if err := config.Init(configPath, force); err != nil {
		pterm.Error.WithWriter(out).Println("Initialization failed")
		return derrors.WrapError(err, derrors.CategoryConfig, "failed to initialize project").
			WithContext("path", configPath).
			Build()
	}
	pterm.Success.WithWriter(out).Println("Initialized successfully")
	return nil
}

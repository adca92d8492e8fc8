package tasks

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/retry"
)

// CommandRunner executes an external program. It is replaced in tests.
type CommandRunner interface {
	Run(ctx context.Context, dir string, env []string, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, []byte, error) {
	// #nosec G204 -- commands come from the project's own configuration.
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Command runs an external program after the build. The program sees
// SITEGEN_OUTPUT, SITEGEN_ROOT and SITEGEN_BUILD_ID in its environment.
// Failed runs are retried according to Retry; the zero Policy runs once.
type Command struct {
	Spec   config.TaskConfig
	Runner CommandRunner
	Retry  retry.Policy
}

func (c Command) Name() string { return c.Spec.Name }

func (c Command) Run(ctx context.Context, tc *Context) error {
	runner := c.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	dir := tc.Config.Root
	if c.Spec.Dir != "" {
		dir = tc.Config.Path(c.Spec.Dir)
	}
	env := []string{
		"SITEGEN_OUTPUT=" + tc.OutputRoot,
		"SITEGEN_ROOT=" + tc.Config.Root,
		"SITEGEN_BUILD_ID=" + tc.BuildID,
	}

	return c.Retry.Do(ctx, func() error {
		stdout, stderr, err := runner.Run(ctx, dir, env, c.Spec.Command, c.Spec.Args...)
		if len(stdout) > 0 {
			slog.Debug("Task output", logfields.Task(c.Spec.Name), slog.String("stdout", strings.TrimSpace(string(stdout))))
		}
		if err != nil {
			return fmt.Errorf("command %q: %w: %s", c.Spec.Command, err, strings.TrimSpace(string(stderr)))
		}
		return nil
	}, func(attempt int, delay time.Duration, err error) {
		slog.Warn("Retrying task", logfields.Task(c.Spec.Name), slog.Int("attempt", attempt),
			slog.Duration("delay", delay), logfields.Error(err))
	})
}

// RunAssetsCommand runs the pre-build asset command line through the shell.
func RunAssetsCommand(ctx context.Context, runner CommandRunner, root, commandLine string) error {
	if runner == nil {
		runner = ExecRunner{}
	}
	_, stderr, err := runner.Run(ctx, root, nil, "sh", "-c", commandLine)
	if err != nil {
		return fmt.Errorf("assets command %q: %w: %s", commandLine, err, strings.TrimSpace(string(stderr)))
	}
	return nil
}

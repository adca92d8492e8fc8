package build

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// Warning is a recovered, non-fatal failure.
type Warning struct {
	// Source names what produced the warning, usually a task name.
	Source string
	Err    error
}

func (w Warning) Error() string { return fmt.Sprintf("%s: %v", w.Source, w.Err) }
func (w Warning) Unwrap() error { return w.Err }

// Warnings accumulates warnings for one build. The build is single-threaded
// so no locking is needed.
type Warnings struct {
	fatal bool
	list  []Warning
}

// NewWarnings creates a collector. With fatal set, Add fails on the first warning.
func NewWarnings(fatal bool) *Warnings {
	return &Warnings{fatal: fatal}
}

// Add records a warning. It returns an error wrapping ErrWarningsFatal when
// warnings are fatal.
func (w *Warnings) Add(source string, err error) error {
	warning := Warning{Source: source, Err: err}
	w.list = append(w.list, warning)
	slog.Warn("Build warning", slog.String("source", source), logfields.Error(err))
	if w.fatal {
		return fmt.Errorf("%w: %w", ErrWarningsFatal, warning)
	}
	return nil
}

// List returns the recorded warnings in order.
func (w *Warnings) List() []Warning {
	out := make([]Warning, len(w.list))
	copy(out, w.list)
	return out
}

// Len returns the number of recorded warnings.
func (w *Warnings) Len() int { return len(w.list) }

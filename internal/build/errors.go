package build

import "errors"

// Sentinel errors for build-level failures. Call sites wrap them with context.
var (
	// ErrWarningsFatal is returned when a warning is recorded while warnings are fatal.
	ErrWarningsFatal = errors.New("warning recorded while warnings are fatal")
	// ErrCompile marks a build in which at least one page failed to compile.
	ErrCompile = errors.New("page compilation failed")
	// ErrSourceOutsideProject is returned by Rebuild for paths outside every source directory.
	ErrSourceOutsideProject = errors.New("source file is not inside a known source directory")
)

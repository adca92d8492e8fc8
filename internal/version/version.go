// Package version carries the build identity of the sitegen binary.
package version

import "fmt"

// Set at link time:
// go build -ldflags "-X git.home.luguber.info/inful/sitegen/internal/version.Version=v1.0.0".
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// String renders the value printed by --version.
func String() string {
	s := Version
	if GitCommit != "" {
		s += fmt.Sprintf(" (%s)", GitCommit)
	}
	if BuildTime != "" {
		s += " built " + BuildTime
	}
	return s
}

// Package version carries the CLI's build identity. Plain variables, so
// release builds can stamp real values via -ldflags.
package version

import "github.com/fatih/color"

var accent = color.New(color.FgMagenta, color.Bold)

var (
	// Version is reported by --version and the version subcommand. The
	// numeric part gets the accent; the -dev suffix stays plain so a
	// stamped release build is visibly different from a local one.
	Version = accent.Sprint("0.1.0") + "-dev"

	// GitCommit, GitMessage, and BuildDate are empty in dev builds and
	// filled in by the release script.
	GitCommit  = ""
	GitMessage = ""
	BuildDate  = ""
)

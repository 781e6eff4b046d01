package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String renders the one-line build banner shown by the version command.
func String() string {
	return fmt.Sprintf("fxpipeline %s (commit %s, built %s, %s)", Version, Commit, BuildDate, runtime.Version())
}

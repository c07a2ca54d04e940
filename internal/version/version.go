package version

import (
	"fmt"
	"runtime"
)

// Set with -ldflags "-X" at release build time.
var (
	CLIName    = "augmented"
	CLIVersion = "0.1.0"
	Commit     = "unknown"
	BuildDate  = "unknown"
)

func Long() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, %s)", CLIName, CLIVersion, Commit, BuildDate, runtime.Version())
}

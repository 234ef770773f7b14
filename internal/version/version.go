// Package version provides build information for the insights CLI.
package version

import (
	"fmt"
	"runtime"
)

const unknownValue = "unknown"

// Build-time variables set by ldflags.
var (
	Version   = "dev"
	BuildDate = unknownValue
	GitCommit = unknownValue
	GoVersion = runtime.Version()
)

// Info returns a one-line version description.
func Info() string {
	return fmt.Sprintf("insights %s (commit %s, built %s, %s)", Version, GitCommit, BuildDate, GoVersion)
}

package version

import (
	"fmt"
	"runtime"
)

// Build metadata, set with -ldflags "-X".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the long form printed by `reflectboard version`.
func Info() string {
	if Version == "dev" {
		return fmt.Sprintf("reflectboard dev (%s, %s/%s)", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	}
	return fmt.Sprintf("reflectboard %s (commit %s, built %s, %s/%s)",
		Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}

// UserAgent identifies outbound HTTP calls.
func UserAgent() string {
	return "reflectboard/" + Version
}

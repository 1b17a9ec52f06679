// Package version holds build metadata, injected via ldflags.
package version

import "fmt"

var (
	// Version is the semantic version, set at build time.
	Version = "dev"

	// Commit is the git commit hash, set at build time.
	Commit = "unknown"

	// BuildTime is the build timestamp, set at build time.
	BuildTime = "unknown"
)

// String returns the full version string.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}

// Package version holds build-time version information.
// Values are injected at build time via -ldflags.
package version

import "runtime"

var (
	// GitRelease is the release tag (e.g., v0.1.0).
	GitRelease = "dev"

	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"

	// GitCommitDate is the date of the commit.
	GitCommitDate = "unknown"

	// GoInfo is the Go toolchain version.
	GoInfo = runtime.Version()
)

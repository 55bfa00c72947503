// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

// Package version provides build-time version information.
package version

import "fmt"

// Set at build time via -ldflags.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

// Get returns the build's version information.
func Get() Info {
	return Info{
		Version:   version,
		GitCommit: gitCommit,
		BuildTime: buildTime,
	}
}

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit string // Short git commit hash (e.g., "abc1234")
	BuildTime string // Build timestamp in RFC3339 format
}

// String returns a single-line summary suitable for logs and the status endpoint.
func (i Info) String() string {
	return fmt.Sprintf("jekyll-admin %s (commit: %s, built: %s)", i.Version, i.GitCommit, i.BuildTime)
}

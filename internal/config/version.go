package config

import (
	"fmt"
	"runtime/debug"
)

// Version information (set via -ldflags during build).
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is the build identity reported by /api/version and the
// version tool.
type VersionInfo struct {
	Version   string `json:"version"`
	Build     string `json:"build"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version,omitempty"`
}

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

// GetBuild returns the build timestamp.
func GetBuild() string {
	return Build
}

// GetGitCommit returns the git commit hash. Without ldflags it falls back
// to the VCS revision stamped by the go tool, when there is one.
func GetGitCommit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return GitCommit
}

// GetVersionInfo collects the version fields.
func GetVersionInfo() VersionInfo {
	v := VersionInfo{
		Version:   GetVersion(),
		Build:     GetBuild(),
		GitCommit: GetGitCommit(),
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		v.GoVersion = info.GoVersion
	}
	return v
}

// GetFullVersion returns version with build info.
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", Version, Build, GetGitCommit())
}

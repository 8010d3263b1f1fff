// Package version provides build information for the gochip8 emulator
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at build time via -ldflags "-X gochip8/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo contains detailed build information
type BuildInfo struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	Arch       string `json:"arch"`
	Modified   bool   `json:"modified"`
	CGOEnabled bool   `json:"cgo_enabled"`
}

// GetBuildInfo returns build information, filling unset linker values from
// the VCS settings embedded by the Go toolchain.
func GetBuildInfo() BuildInfo {
	buildInfo := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return buildInfo
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if GitCommit == "unknown" {
				buildInfo.GitCommit = setting.Value
			}
		case "vcs.time":
			if BuildTime == "unknown" {
				buildInfo.BuildTime = setting.Value
			}
		case "vcs.modified":
			buildInfo.Modified = setting.Value == "true"
		case "CGO_ENABLED":
			buildInfo.CGOEnabled = setting.Value == "1"
		}
	}
	return buildInfo
}

// shortCommit returns the first 7 characters of a commit hash
func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

// GetVersion returns a simple version string
func GetVersion() string {
	return versionOf(GetBuildInfo())
}

func versionOf(info BuildInfo) string {
	if info.Version != "dev" || info.GitCommit == "unknown" {
		return info.Version
	}
	v := "dev-" + shortCommit(info.GitCommit)
	if info.Modified {
		v += "-dirty"
	}
	return v
}

// GetDetailedVersion returns a one-line version description
func GetDetailedVersion() string {
	return detailedVersionOf(GetBuildInfo())
}

func detailedVersionOf(info BuildInfo) string {
	s := fmt.Sprintf("gochip8 version %s", versionOf(info))

	if info.GitCommit != "unknown" {
		s += fmt.Sprintf(" (commit %s)", shortCommit(info.GitCommit))
	}

	if info.BuildTime != "unknown" {
		if parsed, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
			s += " built on " + parsed.Format("2006-01-02 15:04:05")
		} else {
			s += " built on " + info.BuildTime
		}
	}

	return s + fmt.Sprintf(" with %s for %s/%s", info.GoVersion, info.Platform, info.Arch)
}

// PrintBuildInfo writes formatted build information to w
func PrintBuildInfo(w io.Writer) {
	info := GetBuildInfo()

	fmt.Fprintf(w, "gochip8 - Go CHIP-8 Emulator\n")
	fmt.Fprintf(w, "Version:     %s\n", versionOf(info))
	fmt.Fprintf(w, "Git Commit:  %s\n", info.GitCommit)
	fmt.Fprintf(w, "Build Time:  %s\n", info.BuildTime)
	fmt.Fprintf(w, "Go Version:  %s\n", info.GoVersion)
	fmt.Fprintf(w, "Platform:    %s/%s\n", info.Platform, info.Arch)
	fmt.Fprintf(w, "CGO Enabled: %t\n", info.CGOEnabled)
}

// Package version reports the build identity of the thematic binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Name is the program name printed with the version.
const Name = "thematic"

// These variables are set at build time using -ldflags
var (
	// Version is the semantic version of the application
	Version = "dev"

	// GitCommit is the git commit hash when the binary was built
	GitCommit = "unknown"

	// BuildTime is the time when the binary was built (RFC3339 format)
	BuildTime = "unknown"
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string    `json:"version" yaml:"version"`
	GitCommit string    `json:"git_commit" yaml:"git_commit"`
	BuildTime time.Time `json:"build_time" yaml:"build_time"`
	GoVersion string    `json:"go_version" yaml:"go_version"`
	Platform  string    `json:"platform" yaml:"platform"`
	Release   bool      `json:"is_release" yaml:"is_release"`
	Dirty     bool      `json:"is_dirty" yaml:"is_dirty"`
}

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info returns the build information of the running binary. Values not set
// through -ldflags are taken from the module's VCS build settings.
func Info() *BuildInfo {
	settings := vcsSettings()

	v := Version
	if v == "" || v == "dev" {
		v = moduleVersion(settings)
	}
	commit := GitCommit
	if commit == "" || commit == "unknown" {
		commit = settings["vcs.revision"]
		if commit == "" {
			commit = "unknown"
		}
	}

	return &BuildInfo{
		Version:   v,
		GitCommit: commit,
		BuildTime: parseBuildTime(BuildTime),
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Release:   v != "dev" && !strings.HasPrefix(v, "dev-"),
		Dirty:     settings["vcs.modified"] == "true",
	}
}

func vcsSettings() map[string]string {
	out := make(map[string]string)
	info, ok := readBuildInfo()
	if !ok {
		return out
	}
	out["main.version"] = info.Main.Version
	for _, s := range info.Settings {
		out[s.Key] = s.Value
	}
	return out
}

func moduleVersion(settings map[string]string) string {
	if v := settings["main.version"]; v != "" && v != "(devel)" {
		return v
	}
	if rev := settings["vcs.revision"]; len(rev) >= 7 {
		return "dev-" + rev[:7]
	}
	return "dev"
}

// Short returns the version with the abbreviated commit, and a dirty
// marker when the working tree was modified.
func Short() string {
	info := Info()
	s := info.Version
	if len(info.GitCommit) >= 7 && info.GitCommit != "unknown" && !strings.HasSuffix(s, info.GitCommit[:7]) {
		s += " (" + info.GitCommit[:7] + ")"
	}
	if info.Dirty {
		s += " (dirty)"
	}
	return s
}

// Detailed returns one "Key: value" line per known build property.
func Detailed() string {
	info := Info()

	parts := []string{"Version: " + info.Version}
	if info.GitCommit != "unknown" {
		parts = append(parts, "Commit: "+info.GitCommit)
	}
	if !info.BuildTime.IsZero() {
		parts = append(parts, "Built: "+info.BuildTime.Format(time.RFC3339))
	}
	parts = append(parts, "Go: "+info.GoVersion, "Platform: "+info.Platform)
	if info.Release {
		parts = append(parts, "Build type: release")
	} else {
		parts = append(parts, "Build type: development")
	}
	return strings.Join(parts, "\n")
}

// parseBuildTime parses an ISO 8601 time string, returns zero time on error
func parseBuildTime(s string) time.Time {
	if s == "" || s == "unknown" {
		return time.Time{}
	}
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

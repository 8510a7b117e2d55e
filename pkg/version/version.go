// Package version provides build metadata and version information.
package version

import (
	"fmt"
	"runtime"
)

// Set at link time with -ldflags "-X github.com/NERVsystems/navermcp/pkg/version.BuildVersion=...".
var (
	BuildVersion = "0.1.0"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Info returns the build metadata of the running binary.
func Info() BuildInfo {
	return BuildInfo{
		Version:   BuildVersion,
		Commit:    BuildCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String renders the --version line.
func (b BuildInfo) String() string {
	return fmt.Sprintf("navermcp version %s (%s) built on %s with %s for %s",
		b.Version, b.Commit, b.BuildDate, b.GoVersion, b.Platform)
}

// String returns the --version line of the running binary.
func String() string {
	return Info().String()
}

// UserAgent is sent with every upstream request.
func UserAgent() string {
	return "navermcp/" + BuildVersion
}

// Package version exposes build metadata stamped in through ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time via -ldflags; the defaults describe a plain
// `go build` with no stamping.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Info is the full build record, serializable for the version command.
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func Get() Info {
	return Info{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// Short is the one-token form used in logs.
func (i Info) Short() string {
	return "lifehub/" + i.Version
}

// String renders the single-line banner printed by `lifehub version`.
func (i Info) String() string {
	return fmt.Sprintf("lifehub %s (commit %s, built %s, %s)",
		i.Version, shortCommit(i.GitCommit), i.BuildTime, i.Platform)
}

// shortCommit trims a full SHA to the familiar 8-character form and
// leaves anything shorter (like the "unknown" default) alone.
func shortCommit(c string) string {
	if len(c) > 8 {
		return c[:8]
	}
	return c
}

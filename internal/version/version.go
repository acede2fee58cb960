// Package version holds build metadata injected via ldflags.
package version

import (
	"runtime/debug"
	"sync"
)

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the build metadata reported at startup.
type Info struct {
	Version string
	Commit  string
	Date    string
}

var (
	infoOnce sync.Once
	info     Info
)

// Get returns the build metadata. Commit and date fall back to the VCS stamp
// of `go build` when ldflags did not set them.
func Get() Info {
	infoOnce.Do(func() {
		info = Info{Version: Version, Commit: Commit, Date: Date}
		if bi, ok := debug.ReadBuildInfo(); ok {
			info = withBuildSettings(info, bi.Settings)
		}
	})
	return info
}

func withBuildSettings(i Info, settings []debug.BuildSetting) Info {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if i.Commit == "unknown" && s.Value != "" {
				i.Commit = s.Value
				if len(i.Commit) > 12 {
					i.Commit = i.Commit[:12]
				}
			}
		case "vcs.time":
			if i.Date == "unknown" && s.Value != "" {
				i.Date = s.Value
			}
		}
	}
	return i
}

// String formats the metadata as "version (commit, date)".
func (i Info) String() string {
	return i.Version + " (" + i.Commit + ", " + i.Date + ")"
}

package version

import (
	"runtime/debug"
)

// Set with -ldflags -X.
var (
	Version   = ""
	GitCommit = ""
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
}

var readBuildInfo = debug.ReadBuildInfo

// Get returns the build info. Linker values win over what the toolchain
// recorded; a build with neither reports "dev".
func Get() Info {
	info := Info{Version: Version, GitCommit: GitCommit}

	if bi, ok := readBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			}
		}
	}

	if info.Version == "" {
		info.Version = "dev"
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// Short returns "version", "version-commit" or "version-commit-dirty".
func Short() string {
	info := Get()
	s := info.Version
	if info.GitCommit != "" {
		s += "-" + info.GitCommit
	}
	if info.Dirty {
		s += "-dirty"
	}
	return s
}

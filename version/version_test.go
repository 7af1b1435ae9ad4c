package version

import (
	"runtime/debug"
	"testing"
)

func stub(t *testing.T, version, commit string, bi *debug.BuildInfo) {
	t.Helper()
	origVersion, origCommit, origRead := Version, GitCommit, readBuildInfo
	t.Cleanup(func() {
		Version, GitCommit, readBuildInfo = origVersion, origCommit, origRead
	})
	Version, GitCommit = version, commit
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
}

func TestShort(t *testing.T) {
	vcs := &debug.BuildInfo{
		GoVersion: "go1.26.0",
		Main:      debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	tests := []struct {
		name    string
		version string
		commit  string
		bi      *debug.BuildInfo
		want    string
	}{
		{"nothing known", "", "", nil, "dev"},
		{"linker version only", "1.2.0", "", nil, "1.2.0"},
		{"linker values", "1.2.0", "abc1234", nil, "1.2.0-abc1234"},
		{"vcs fallback", "", "", vcs, "dev-0123456-dirty"},
		{"linker commit wins", "1.2.0", "feedbee", vcs, "1.2.0-feedbee-dirty"},
		{"module version", "", "", &debug.BuildInfo{Main: debug.Module{Version: "v0.3.1"}}, "v0.3.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub(t, tt.version, tt.commit, tt.bi)
			if got := Short(); got != tt.want {
				t.Errorf("Short() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetGoVersion(t *testing.T) {
	stub(t, "", "", &debug.BuildInfo{GoVersion: "go1.26.0"})
	if got := Get().GoVersion; got != "go1.26.0" {
		t.Errorf("GoVersion = %q", got)
	}
}

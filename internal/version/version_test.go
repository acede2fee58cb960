package version

import (
	"runtime/debug"
	"testing"
)

func TestWithBuildSettings(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		{Key: "GOOS", Value: "linux"},
	}

	got := withBuildSettings(Info{Version: "dev", Commit: "unknown", Date: "unknown"}, settings)
	if got.Commit != "0123456789ab" {
		t.Errorf("expected short commit, got %q", got.Commit)
	}
	if got.Date != "2026-01-02T03:04:05Z" {
		t.Errorf("expected vcs time, got %q", got.Date)
	}
}

func TestWithBuildSettings_LdflagsWin(t *testing.T) {
	settings := []debug.BuildSetting{{Key: "vcs.revision", Value: "ffff"}}

	got := withBuildSettings(Info{Version: "1.2.0", Commit: "abc", Date: "unknown"}, settings)
	if got.Commit != "abc" {
		t.Errorf("ldflags commit should win, got %q", got.Commit)
	}
	if got.String() != "1.2.0 (abc, unknown)" {
		t.Errorf("unexpected String(): %q", got.String())
	}
}

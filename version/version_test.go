package version

import (
	"runtime/debug"
	"testing"
)

func stubBuild(t *testing.T, version, commit, buildTime string, bi *debug.BuildInfo) {
	t.Helper()
	origVersion, origCommit, origBuildTime, origRead := Version, GitCommit, BuildTime, readBuildInfo
	t.Cleanup(func() {
		Version, GitCommit, BuildTime, readBuildInfo = origVersion, origCommit, origBuildTime, origRead
	})
	Version, GitCommit, BuildTime = version, commit, buildTime
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
}

func TestGetVersionInfo_Dev(t *testing.T) {
	stubBuild(t, "dev", "", "", nil)

	info := GetVersionInfo()
	if info.Version != "dev" || info.IsRelease {
		t.Errorf("expected unreleased dev build, got %+v", info)
	}
	if info.String() != "dev" {
		t.Errorf("expected 'dev', got %q", info.String())
	}
}

func TestGetVersionInfo_Linked(t *testing.T) {
	stubBuild(t, "1.4.0", "abc1234", "2026-03-01T10:30:00Z", nil)

	info := GetVersionInfo()
	if !info.IsRelease {
		t.Error("expected release build")
	}
	if info.BuildDate.Year() != 2026 {
		t.Errorf("expected parsed build date, got %v", info.BuildDate)
	}
	if info.String() != "1.4.0-abc1234" {
		t.Errorf("unexpected string %q", info.String())
	}
}

func TestGetVersionInfo_VCSFallback(t *testing.T) {
	stubBuild(t, "1.4.0", "", "", &debug.BuildInfo{
		GoVersion: "go1.25.5",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2026-02-10T08:00:00Z"},
		},
	})

	info := GetVersionInfo()
	if info.GitCommit != "0123456" {
		t.Errorf("expected short commit, got %q", info.GitCommit)
	}
	if info.GoVersion != "go1.25.5" {
		t.Errorf("expected go version from build info, got %q", info.GoVersion)
	}
	if info.BuildTime != "2026-02-10T08:00:00Z" {
		t.Errorf("expected vcs time, got %q", info.BuildTime)
	}
	if info.IsRelease {
		t.Error("dirty tree must not count as a release")
	}
	if info.String() != "1.4.0-0123456-dirty" {
		t.Errorf("unexpected string %q", info.String())
	}
}

func TestGetVersionInfo_LinkedCommitWins(t *testing.T) {
	stubBuild(t, "1.4.0", "feedbee", "", &debug.BuildInfo{
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef"}},
	})

	if got := GetVersionInfo().GitCommit; got != "feedbee" {
		t.Errorf("expected linked commit, got %q", got)
	}
}

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime"
	"strings"
	"testing"
)

func setBuildVars(t *testing.T, version, commit, dirty, buildTime string) {
	t.Helper()
	saved := []string{Version, GitCommit, GitDirty, BuildTime}
	t.Cleanup(func() {
		Version, GitCommit, GitDirty, BuildTime = saved[0], saved[1], saved[2], saved[3]
	})
	Version, GitCommit, GitDirty, BuildTime = version, commit, dirty, buildTime
}

func TestLinkerValuesWin(t *testing.T) {
	setBuildVars(t, "1.2.0", "abc1234", "false", "2026-10-01T00:00:00Z")

	if got, want := Info(), "1.2.0 (abc1234, 2026-10-01T00:00:00Z)"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}

	GitDirty = "true"
	if got, want := Info(), "1.2.0 (abc1234-dirty, 2026-10-01T00:00:00Z)"; got != want {
		t.Errorf("Info() dirty = %q, want %q", got, want)
	}
	if got := Short(); got != "1.2.0" {
		t.Errorf("Short() = %q, want %q", got, "1.2.0")
	}
}

func TestFallbacks(t *testing.T) {
	setBuildVars(t, "0.1.0-dev", "", "", "")

	build := Current()
	if build.Commit == "" || build.Time == "" {
		t.Errorf("Current() = %+v, want commit and time filled", build)
	}
	if build.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", build.GoVersion, runtime.Version())
	}
	if len(build.Commit) > 12 {
		t.Errorf("Commit = %q, want at most 12 characters", build.Commit)
	}
}

func TestFull(t *testing.T) {
	setBuildVars(t, "1.2.0", "abc1234", "false", "now")
	full := Full()
	if !strings.HasPrefix(full, Info()) || !strings.Contains(full, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("Full() = %q", full)
	}
}

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags -X at release builds, for example:
//
//	go build -ldflags "-X github.com/riskful/grouplist/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Empty values fall back to the VCS stamp the go command embeds.
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	GitDirty  = ""
	BuildTime = ""
)

// Build describes the running binary.
type Build struct {
	Version   string
	Commit    string
	Dirty     bool
	Time      string
	GoVersion string
}

// Current resolves the build description from ldflags, then from the
// embedded build info.
func Current() Build {
	build := Build{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     GitDirty == "true",
		Time:      BuildTime,
		GoVersion: runtime.Version(),
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if build.Commit == "" {
					build.Commit = shortCommit(setting.Value)
				}
			case "vcs.modified":
				if GitDirty == "" {
					build.Dirty = setting.Value == "true"
				}
			case "vcs.time":
				if build.Time == "" {
					build.Time = setting.Value
				}
			}
		}
	}
	if build.Commit == "" {
		build.Commit = "unknown"
	}
	if build.Time == "" {
		build.Time = "unknown"
	}
	return build
}

func shortCommit(revision string) string {
	if len(revision) > 12 {
		return revision[:12]
	}
	return revision
}

// String is "version (commit[-dirty], time)".
func (b Build) String() string {
	dirty := ""
	if b.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", b.Version, b.Commit, dirty, b.Time)
}

// Info returns the one-line form used by --version.
func Info() string {
	return Current().String()
}

// Full adds the Go toolchain and platform.
func Full() string {
	build := Current()
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s", build, build.GoVersion, runtime.GOOS, runtime.GOARCH)
}

// Short returns the version number alone, as reported by /healthz.
func Short() string {
	return Version
}

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports what build of grouplist is running.
//
// Release builds inject [Version], [GitCommit], [GitDirty] and
// [BuildTime] with -ldflags -X. Anything left empty is taken from the
// VCS stamp in runtime/debug build info, so a plain "go build" from a
// checkout still reports its commit.
package version

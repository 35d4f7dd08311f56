// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the exit path shared by the grouplist
// binaries: [Fatal] prints the error and exits with the status the
// error chain asks for via [Coder].
package process

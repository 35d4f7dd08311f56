// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError ends the command with Code after the command has already
// written its own output (for example, a partial batch of results).
// No "error:" line is printed for it.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) ExitCode() int { return e.Code }

// Silent tells process.Fatal not to print the error.
func (e *ExitError) Silent() bool { return true }

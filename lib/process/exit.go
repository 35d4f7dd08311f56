// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Coder is an error that selects the process exit status.
type Coder interface {
	ExitCode() int
}

// silencer is an error whose message has already been shown.
type silencer interface {
	Silent() bool
}

// ExitCode is the status for err: 0 for nil, the code of the first
// Coder in the chain, otherwise 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder Coder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

// Fatal reports err on stderr and exits with ExitCode(err). It is for
// main(), where the structured logger may not exist yet.
func Fatal(err error) {
	report(os.Stderr, err)
	os.Exit(ExitCode(err))
}

func report(output io.Writer, err error) {
	var quiet silencer
	if errors.As(err, &quiet) && quiet.Silent() {
		return
	}
	fmt.Fprintf(output, "error: %v\n", err)
}

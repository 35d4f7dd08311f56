// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

type codedError struct {
	code   int
	silent bool
}

func (e *codedError) Error() string { return fmt.Sprintf("coded %d", e.code) }
func (e *codedError) ExitCode() int { return e.code }
func (e *codedError) Silent() bool  { return e.silent }

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"coded", &codedError{code: 3}, 3},
		{"wrapped", fmt.Errorf("listing: %w", &codedError{code: 5}), 5},
	}
	for _, test := range tests {
		if got := ExitCode(test.err); got != test.want {
			t.Errorf("%s: ExitCode = %d, want %d", test.name, got, test.want)
		}
	}
}

func TestReport(t *testing.T) {
	var output bytes.Buffer
	report(&output, errors.New("store unavailable"))
	if got := output.String(); got != "error: store unavailable\n" {
		t.Errorf("report = %q", got)
	}

	output.Reset()
	report(&output, fmt.Errorf("wrapped: %w", &codedError{code: 2, silent: true}))
	if output.Len() != 0 {
		t.Errorf("silent error printed %q", output.String())
	}
}

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package versionstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestConflictErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("writing: %w", &ConflictError{Key: "whitelist.html", Expected: "a", Current: "b"})
	if !errors.Is(err, ErrVersionConflict) {
		t.Error("errors.Is(ConflictError, ErrVersionConflict) = false")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("ConflictError matches ErrNotFound")
	}

	var conflict *ConflictError
	if !errors.As(err, &conflict) || conflict.Current != "b" {
		t.Errorf("errors.As did not recover the conflict: %v", err)
	}
}

func TestUnavailableKeepsCause(t *testing.T) {
	err := Unavailable(context.DeadlineExceeded)
	if !errors.Is(err, ErrUnavailable) {
		t.Error("Unavailable(err) does not match ErrUnavailable")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("Unavailable(err) lost its cause")
	}
	if Unavailable(err) != err {
		t.Error("Unavailable wrapped an already-unavailable error twice")
	}
	if Unavailable(nil) != nil {
		t.Error("Unavailable(nil) != nil")
	}
}

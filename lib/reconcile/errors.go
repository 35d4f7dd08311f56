// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation. Kind values are themselves
// errors so that callers can match with errors.Is(err, KindConflict).
type Kind string

const (
	KindBadRequest          Kind = "bad_request"
	KindUnauthorized        Kind = "unauthorized"
	KindNotFound            Kind = "not_found"
	KindConflict            Kind = "conflict"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
)

func (k Kind) Error() string {
	return string(k)
}

// Error is a classified failure.
type Error struct {
	Kind Kind

	// Detail is a human-readable description safe to return to clients.
	Detail string

	// State is the engine state the failure happened in, when the
	// failure came from the engine.
	State State

	// Err is the underlying cause, if any. Not shown to clients.
	Err error
}

func (err *Error) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("%s: %s: %v", err.Kind, err.Detail, err.Err)
	}
	return fmt.Sprintf("%s: %s", err.Kind, err.Detail)
}

func (err *Error) Unwrap() error {
	return err.Err
}

// Is matches the error's Kind.
func (err *Error) Is(target error) bool {
	kind, ok := target.(Kind)
	return ok && kind == err.Kind
}

// Errorf returns an *Error of the given kind with a formatted detail.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or KindUpstreamUnavailable for
// errors that were not classified.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindUpstreamUnavailable
}

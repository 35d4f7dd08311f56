// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package versionstore

import (
	"context"
	"errors"
	"fmt"
)

// Version identifies one revision of an artifact. Its content is
// meaningful only to the store that issued it.
type Version string

// NoVersion is the expected version for creating an artifact that must
// not already exist.
const NoVersion Version = ""

// Consistency describes the concurrency guarantee a store gives.
type Consistency string

const (
	// Versioned stores reject writes made against a stale version.
	Versioned Consistency = "versioned"

	// LastWriterWins stores apply every write unconditionally.
	LastWriterWins Consistency = "last-writer-wins"
)

// Artifact is the stored text of one list and the version it was read
// at.
type Artifact struct {
	Key     string
	Content []byte
	Version Version
}

// Store reads and conditionally writes artifacts by key.
type Store interface {
	// Fetch returns the current artifact. Fails with ErrNotFound when
	// the key does not exist and ErrUnavailable for any other failure.
	Fetch(ctx context.Context, key string) (*Artifact, error)

	// Write replaces the artifact if its current version equals
	// expected, returning the new version. message describes the
	// change for stores that keep history.
	Write(ctx context.Context, key string, content []byte, expected Version, message string) (Version, error)

	// Consistency reports whether Write honours expected.
	Consistency() Consistency
}

var (
	// ErrNotFound means the artifact does not exist.
	ErrNotFound = errors.New("versionstore: artifact not found")

	// ErrVersionConflict means the artifact changed since it was
	// fetched.
	ErrVersionConflict = errors.New("versionstore: version conflict")

	// ErrAlreadyExists means a create-only write found an existing
	// artifact.
	ErrAlreadyExists = errors.New("versionstore: artifact already exists")

	// ErrUnavailable covers every other store failure: network,
	// authentication, rate limiting, timeouts, I/O.
	ErrUnavailable = errors.New("versionstore: store unavailable")
)

// ConflictError carries the versions involved in a rejected write.
type ConflictError struct {
	Key      string
	Expected Version
	Current  Version
}

func (err *ConflictError) Error() string {
	if err.Current == "" {
		return fmt.Sprintf("versionstore: %s: expected version %q is stale", err.Key, err.Expected)
	}
	return fmt.Sprintf("versionstore: %s: expected version %q, current %q", err.Key, err.Expected, err.Current)
}

// Is makes errors.Is(err, ErrVersionConflict) hold.
func (err *ConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}

// unavailableError wraps a backend failure so that it matches
// ErrUnavailable while keeping the cause in the chain.
type unavailableError struct {
	cause error
}

func (err *unavailableError) Error() string {
	return "versionstore: store unavailable: " + err.cause.Error()
}

func (err *unavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func (err *unavailableError) Unwrap() error {
	return err.cause
}

// Unavailable marks err as an ErrUnavailable failure. Returns nil for a
// nil err.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	return &unavailableError{cause: err}
}

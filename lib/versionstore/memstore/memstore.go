// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package memstore is an in-process [versionstore.Store]. Versions are
// monotonically increasing revision numbers. Contents are lost when the
// process exits; use it for tests and dry runs.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/riskful/grouplist/lib/versionstore"
)

type entry struct {
	content  []byte
	revision uint64
}

// Store is a versioned in-memory store. The zero value is not usable;
// call New.
type Store struct {
	mu       sync.Mutex
	entries  map[string]entry
	revision uint64
}

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Seed stores content under key unconditionally and returns its version.
// Intended for test setup.
func (s *Store) Seed(key string, content []byte) versionstore.Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(key, content)
}

// Fetch implements versionstore.Store.
func (s *Store) Fetch(ctx context.Context, key string) (*versionstore.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, versionstore.Unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("memstore: %s: %w", key, versionstore.ErrNotFound)
	}
	return &versionstore.Artifact{
		Key:     key,
		Content: slices.Clone(current.content),
		Version: formatRevision(current.revision),
	}, nil
}

// Write implements versionstore.Store.
func (s *Store) Write(ctx context.Context, key string, content []byte, expected versionstore.Version, _ string) (versionstore.Version, error) {
	if err := ctx.Err(); err != nil {
		return versionstore.NoVersion, versionstore.Unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.entries[key]
	switch {
	case expected == versionstore.NoVersion && exists:
		return versionstore.NoVersion, fmt.Errorf("memstore: %s: %w", key, versionstore.ErrAlreadyExists)
	case expected != versionstore.NoVersion && !exists:
		return versionstore.NoVersion, &versionstore.ConflictError{Key: key, Expected: expected}
	case exists && formatRevision(current.revision) != expected:
		return versionstore.NoVersion, &versionstore.ConflictError{
			Key:      key,
			Expected: expected,
			Current:  formatRevision(current.revision),
		}
	}
	return s.putLocked(key, content), nil
}

// Consistency implements versionstore.Store.
func (s *Store) Consistency() versionstore.Consistency {
	return versionstore.Versioned
}

func (s *Store) putLocked(key string, content []byte) versionstore.Version {
	s.revision++
	s.entries[key] = entry{content: slices.Clone(content), revision: s.revision}
	return formatRevision(s.revision)
}

func formatRevision(revision uint64) versionstore.Version {
	return versionstore.Version("r" + strconv.FormatUint(revision, 10))
}

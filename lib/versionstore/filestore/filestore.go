// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package filestore keeps artifacts as files under a root directory.
//
// The version of an artifact is the hex BLAKE3 digest of its content.
// Writes take an exclusive flock on a sidecar lock file next to the
// artifact, recompute the digest of the current content, and replace
// the file by rename only when the digest matches the expected
// version. Readers never take the lock: rename is atomic, so a
// concurrent Fetch sees either the old or the new content.
//
// The lock is advisory and only coordinates processes on the same host
// that use this package. It is a development and single-host backend;
// shared deployments use githubstore.
package filestore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"

	"github.com/riskful/grouplist/lib/versionstore"
)

// Store is a versioned store rooted at a directory.
type Store struct {
	root   string
	logger *slog.Logger
}

// New returns a store rooted at root, creating the directory if needed.
func New(root string, logger *slog.Logger) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("filestore: root directory is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: creating root %s: %w", root, err)
	}
	return &Store{root: root, logger: logger}, nil
}

// Fetch implements versionstore.Store.
func (s *Store) Fetch(ctx context.Context, key string) (*versionstore.Artifact, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, versionstore.Unavailable(err)
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("filestore: %s: %w", key, versionstore.ErrNotFound)
	}
	if err != nil {
		return nil, versionstore.Unavailable(fmt.Errorf("filestore: reading %s: %w", key, err))
	}
	return &versionstore.Artifact{Key: key, Content: content, Version: Digest(content)}, nil
}

// Write implements versionstore.Store.
func (s *Store) Write(ctx context.Context, key string, content []byte, expected versionstore.Version, message string) (versionstore.Version, error) {
	path, err := s.path(key)
	if err != nil {
		return versionstore.NoVersion, err
	}
	if err := ctx.Err(); err != nil {
		return versionstore.NoVersion, versionstore.Unavailable(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return versionstore.NoVersion, versionstore.Unavailable(fmt.Errorf("filestore: creating directory for %s: %w", key, err))
	}

	unlock, err := lockFile(path + ".lock")
	if err != nil {
		return versionstore.NoVersion, versionstore.Unavailable(fmt.Errorf("filestore: locking %s: %w", key, err))
	}
	defer unlock()

	current, err := os.ReadFile(path)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return versionstore.NoVersion, versionstore.Unavailable(fmt.Errorf("filestore: reading %s: %w", key, err))
	}

	switch {
	case expected == versionstore.NoVersion && exists:
		return versionstore.NoVersion, fmt.Errorf("filestore: %s: %w", key, versionstore.ErrAlreadyExists)
	case expected != versionstore.NoVersion && !exists:
		return versionstore.NoVersion, &versionstore.ConflictError{Key: key, Expected: expected}
	case exists && Digest(current) != expected:
		return versionstore.NoVersion, &versionstore.ConflictError{Key: key, Expected: expected, Current: Digest(current)}
	}

	if err := replaceFile(path, content); err != nil {
		return versionstore.NoVersion, versionstore.Unavailable(fmt.Errorf("filestore: writing %s: %w", key, err))
	}

	version := Digest(content)
	s.logger.Debug("artifact written",
		"key", key,
		"version", string(version),
		"message", message,
	)
	return version, nil
}

// Consistency implements versionstore.Store.
func (s *Store) Consistency() versionstore.Consistency {
	return versionstore.Versioned
}

// Digest returns the version of content: its BLAKE3-256 digest in hex.
func Digest(content []byte) versionstore.Version {
	sum := blake3.Sum256(content)
	return versionstore.Version(hex.EncodeToString(sum[:]))
}

// path resolves key under the root, rejecting keys that would escape
// it.
func (s *Store) path(key string) (string, error) {
	if key == "" || filepath.IsAbs(key) {
		return "", fmt.Errorf("filestore: invalid key %q", key)
	}
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("filestore: key %q escapes the store root", key)
	}
	return filepath.Join(s.root, cleaned), nil
}

// lockFile takes an exclusive flock on path, creating it if needed.
func lockFile(path string) (func(), error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	for {
		err = unix.Flock(int(file.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		file.Close()
		return nil, err
	}
	return func() {
		unix.Flock(int(file.Fd()), unix.LOCK_UN)
		file.Close()
	}, nil
}

// replaceFile writes content to a temporary file in the same directory
// and renames it over path.
func replaceFile(path string, content []byte) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	temporaryPath := temporary.Name()
	if _, err := temporary.Write(content); err != nil {
		temporary.Close()
		os.Remove(temporaryPath)
		return err
	}
	if err := temporary.Sync(); err != nil {
		temporary.Close()
		os.Remove(temporaryPath)
		return err
	}
	if err := temporary.Close(); err != nil {
		os.Remove(temporaryPath)
		return err
	}
	if err := os.Chmod(temporaryPath, 0o644); err != nil {
		os.Remove(temporaryPath)
		return err
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return err
	}
	return nil
}

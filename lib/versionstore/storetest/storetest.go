// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package storetest checks a [versionstore.Store] implementation against
// the store contract. Backend test files call [Run] with a constructor
// that returns a fresh, empty store for every subtest.
package storetest

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/riskful/grouplist/lib/versionstore"
)

// Run exercises the contract. Conditional-write subtests are skipped for
// stores that report versionstore.LastWriterWins; for those, Run checks
// that every write is applied instead.
func Run(t *testing.T, newStore func(t *testing.T) versionstore.Store) {
	t.Helper()

	t.Run("FetchMissing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Fetch(context.Background(), "missing.html")
		if !errors.Is(err, versionstore.ErrNotFound) {
			t.Fatalf("Fetch(missing) error = %v, want ErrNotFound", err)
		}
		if errors.Is(err, versionstore.ErrUnavailable) {
			t.Errorf("not-found error also matches ErrUnavailable: %v", err)
		}
	})

	t.Run("CreateThenFetch", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		version, err := store.Write(ctx, "list.html", []byte("one"), versionstore.NoVersion, "create")
		if err != nil {
			t.Fatalf("Write(create): %v", err)
		}
		artifact, err := store.Fetch(ctx, "list.html")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if !bytes.Equal(artifact.Content, []byte("one")) {
			t.Errorf("Content = %q, want %q", artifact.Content, "one")
		}
		if artifact.Key != "list.html" {
			t.Errorf("Key = %q, want %q", artifact.Key, "list.html")
		}
		if store.Consistency() == versionstore.Versioned && artifact.Version != version {
			t.Errorf("fetched version %q, write returned %q", artifact.Version, version)
		}
	})

	t.Run("UpdateWithFetchedVersion", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		mustWrite(t, store, "list.html", "one", versionstore.NoVersion)
		artifact := mustFetch(t, store, "list.html")

		if _, err := store.Write(ctx, "list.html", []byte("two"), artifact.Version, "update"); err != nil {
			t.Fatalf("Write(update): %v", err)
		}
		if got := mustFetch(t, store, "list.html"); string(got.Content) != "two" {
			t.Errorf("Content = %q, want %q", got.Content, "two")
		}
	})

	if newStore(t).Consistency() == versionstore.LastWriterWins {
		t.Run("LastWriterWins", func(t *testing.T) {
			store := newStore(t)
			mustWrite(t, store, "list.html", "one", versionstore.NoVersion)
			stale := mustFetch(t, store, "list.html").Version
			mustWrite(t, store, "list.html", "two", stale)
			mustWrite(t, store, "list.html", "three", stale)
			mustWrite(t, store, "list.html", "four", versionstore.NoVersion)
			if got := mustFetch(t, store, "list.html"); string(got.Content) != "four" {
				t.Errorf("Content = %q, want %q", got.Content, "four")
			}
		})
		return
	}

	t.Run("CreateExisting", func(t *testing.T) {
		store := newStore(t)
		mustWrite(t, store, "list.html", "one", versionstore.NoVersion)
		_, err := store.Write(context.Background(), "list.html", []byte("two"), versionstore.NoVersion, "create")
		if !errors.Is(err, versionstore.ErrAlreadyExists) {
			t.Fatalf("second create error = %v, want ErrAlreadyExists", err)
		}
		if got := mustFetch(t, store, "list.html"); string(got.Content) != "one" {
			t.Errorf("Content = %q, want %q (create must not overwrite)", got.Content, "one")
		}
	})

	t.Run("StaleVersionConflicts", func(t *testing.T) {
		store := newStore(t)
		mustWrite(t, store, "list.html", "one", versionstore.NoVersion)
		stale := mustFetch(t, store, "list.html").Version

		mustWrite(t, store, "list.html", "two", stale)
		_, err := store.Write(context.Background(), "list.html", []byte("three"), stale, "update")
		if !errors.Is(err, versionstore.ErrVersionConflict) {
			t.Fatalf("stale write error = %v, want ErrVersionConflict", err)
		}
		if got := mustFetch(t, store, "list.html"); string(got.Content) != "two" {
			t.Errorf("Content = %q, want %q", got.Content, "two")
		}
	})

	t.Run("ConcurrentStaleWritesOneWins", func(t *testing.T) {
		store := newStore(t)
		mustWrite(t, store, "list.html", "base", versionstore.NoVersion)
		version := mustFetch(t, store, "list.html").Version

		const writers = 8
		var wait sync.WaitGroup
		results := make([]error, writers)
		for index := range writers {
			wait.Add(1)
			go func() {
				defer wait.Done()
				_, results[index] = store.Write(context.Background(), "list.html", []byte{byte('a' + index)}, version, "race")
			}()
		}
		wait.Wait()

		successes := 0
		for _, err := range results {
			switch {
			case err == nil:
				successes++
			case errors.Is(err, versionstore.ErrVersionConflict):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		if successes != 1 {
			t.Errorf("%d writes succeeded with the same version, want exactly 1", successes)
		}
	})

	t.Run("UpdateMissingConflicts", func(t *testing.T) {
		store := newStore(t)
		mustWrite(t, store, "other.html", "x", versionstore.NoVersion)
		version := mustFetch(t, store, "other.html").Version
		_, err := store.Write(context.Background(), "list.html", []byte("x"), version, "update")
		if err == nil {
			t.Fatal("write with a version to a missing key succeeded")
		}
		if errors.Is(err, versionstore.ErrUnavailable) {
			t.Errorf("error = %v, want a conflict or not-found, not unavailability", err)
		}
	})
}

func mustWrite(t *testing.T, store versionstore.Store, key, content string, expected versionstore.Version) versionstore.Version {
	t.Helper()
	version, err := store.Write(context.Background(), key, []byte(content), expected, "test")
	if err != nil {
		t.Fatalf("Write(%s, %q): %v", key, content, err)
	}
	return version
}

func mustFetch(t *testing.T, store versionstore.Store, key string) *versionstore.Artifact {
	t.Helper()
	artifact, err := store.Fetch(context.Background(), key)
	if err != nil {
		t.Fatalf("Fetch(%s): %v", key, err)
	}
	return artifact
}

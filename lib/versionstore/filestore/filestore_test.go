// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/riskful/grouplist/lib/versionstore"
	"github.com/riskful/grouplist/lib/versionstore/storetest"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) versionstore.Store {
		store, err := New(t.TempDir(), nil)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return store
	})
}

func TestVersionIsContentDigest(t *testing.T) {
	root := t.TempDir()
	store, err := New(root, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "whitelist.html"), []byte("hand edited"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	artifact, err := store.Fetch(context.Background(), "whitelist.html")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if artifact.Version != Digest([]byte("hand edited")) {
		t.Errorf("Version = %q, want digest of content", artifact.Version)
	}
	if len(artifact.Version) != 64 {
		t.Errorf("len(Version) = %d, want 64 hex characters", len(artifact.Version))
	}
}

func TestExternalEditInvalidatesVersion(t *testing.T) {
	root := t.TempDir()
	store, err := New(root, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	version, err := store.Write(ctx, "lists/blacklist.html", []byte("v1"), versionstore.NoVersion, "create")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "lists", "blacklist.html"), []byte("edited"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err = store.Write(ctx, "lists/blacklist.html", []byte("v2"), version, "update")
	if err == nil {
		t.Fatal("write over an externally edited file succeeded")
	}
	var conflict *versionstore.ConflictError
	if !errors.As(err, &conflict) || conflict.Current != Digest([]byte("edited")) {
		t.Errorf("error = %v, want conflict reporting the edited digest", err)
	}
}

func TestRejectsEscapingKeys(t *testing.T) {
	store, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, key := range []string{"", "../outside.html", "/etc/passwd", "a/../../b"} {
		if _, err := store.Fetch(context.Background(), key); err == nil {
			t.Errorf("Fetch(%q) succeeded, want error", key)
		}
	}
}

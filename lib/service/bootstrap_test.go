// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/riskful/grouplist/lib/config"
	"github.com/riskful/grouplist/lib/groupid"
	"github.com/riskful/grouplist/lib/reconcile"
	"github.com/riskful/grouplist/lib/versionstore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func memoryConfig() *config.Config {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	cfg.Lists = []config.ListConfig{
		{Name: "whitelist", Key: "whitelist.html", Format: "html"},
		{Name: "blacklist", Key: "blacklist.json", Format: "json"},
	}
	return cfg
}

func TestBootstrapMemory(t *testing.T) {
	result, cleanup, err := Bootstrap(BootstrapConfig{
		Config: memoryConfig(),
		Logger: discardLogger(),
	})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	defer cleanup()

	if len(result.Lists) != 2 {
		t.Fatalf("len(Lists) = %d, want 2", len(result.Lists))
	}
	if result.Lists[0].Name != "whitelist" || result.Lists[1].Name != "blacklist" {
		t.Errorf("list order = %q, %q", result.Lists[0].Name, result.Lists[1].Name)
	}
	if result.Engines["blacklist"] != result.Lists[1].Engine {
		t.Error("Engines and Lists disagree on the blacklist engine")
	}
	if got := result.Store.Consistency(); got != versionstore.Versioned {
		t.Errorf("Consistency = %q, want %q", got, versionstore.Versioned)
	}

	ctx := context.Background()
	engine := result.Engines["blacklist"]
	if _, err := engine.Apply(ctx, "blacklist.json", reconcile.Add(42)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	artifact, err := result.Store.Fetch(ctx, "blacklist.json")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !json.Valid(artifact.Content) {
		t.Errorf("json list written as %q", artifact.Content)
	}
}

func TestBootstrapFileAndBlob(t *testing.T) {
	directory := t.TempDir()
	keyPath := filepath.Join(directory, "blob.key")
	if err := os.WriteFile(keyPath, []byte("correct horse battery staple\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name        string
		store       config.StoreConfig
		consistency versionstore.Consistency
	}{
		{
			name:        "file",
			store:       config.StoreConfig{Backend: config.BackendFile, File: config.FileConfig{Root: filepath.Join(directory, "lists")}},
			consistency: versionstore.Versioned,
		},
		{
			name:        "blob",
			store:       config.StoreConfig{Backend: config.BackendBlob, Blob: config.BlobConfig{Path: filepath.Join(directory, "lists.db")}},
			consistency: versionstore.LastWriterWins,
		},
		{
			name: "sealed blob",
			store: config.StoreConfig{Backend: config.BackendBlob, Blob: config.BlobConfig{
				Path:        filepath.Join(directory, "sealed.db"),
				Compression: "lz4",
				KeyFile:     keyPath,
			}},
			consistency: versionstore.LastWriterWins,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := memoryConfig()
			cfg.Store = test.store

			result, cleanup, err := Bootstrap(BootstrapConfig{Config: cfg, Logger: discardLogger()})
			if err != nil {
				t.Fatalf("Bootstrap: %v", err)
			}
			defer cleanup()

			if got := result.Store.Consistency(); got != test.consistency {
				t.Errorf("Consistency = %q, want %q", got, test.consistency)
			}
			engine := result.Engines["whitelist"]
			ctx := context.Background()
			if _, err := engine.Apply(ctx, "whitelist.html", reconcile.Add(7)); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			listing, err := engine.List(ctx, "whitelist.html")
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if !listing.Set.Contains(groupid.ID(7)) {
				t.Errorf("listing = %v, want it to contain 7", listing.Set)
			}
		})
	}
}

func TestBootstrapMissingBlobKey(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store = config.StoreConfig{Backend: config.BackendBlob, Blob: config.BlobConfig{
		Path:    filepath.Join(t.TempDir(), "lists.db"),
		KeyFile: filepath.Join(t.TempDir(), "absent.key"),
	}}
	if _, _, err := Bootstrap(BootstrapConfig{Config: cfg, Logger: discardLogger()}); err == nil {
		t.Fatal("Bootstrap with missing blob key file succeeded")
	}
}

func TestBootstrapGitHubToken(t *testing.T) {
	directory := t.TempDir()
	tokenPath := filepath.Join(directory, "token")
	if err := os.WriteFile(tokenPath, []byte("  ghp_example\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := memoryConfig()
	cfg.Store = config.StoreConfig{
		Backend: config.BackendGitHub,
		GitHub: config.GitHubConfig{
			Owner:     "riskful",
			Repo:      "lists",
			TokenFile: tokenPath,
		},
	}
	result, cleanup, err := Bootstrap(BootstrapConfig{Config: cfg, Logger: discardLogger()})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	defer cleanup()
	if got := result.Store.Consistency(); got != versionstore.Versioned {
		t.Errorf("Consistency = %q, want %q", got, versionstore.Versioned)
	}

	cfg.Store.GitHub.TokenFile = filepath.Join(directory, "missing")
	if _, _, err := Bootstrap(BootstrapConfig{Config: cfg, Logger: discardLogger()}); err == nil {
		t.Error("expected error for missing token file")
	}
}

func TestBootstrapRejectsInvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.Lists = nil
	_, _, err := Bootstrap(BootstrapConfig{Config: cfg, Logger: discardLogger()})
	if err == nil {
		t.Fatal("expected error for configuration without lists")
	}
	if !strings.Contains(err.Error(), "at least one list") {
		t.Errorf("error = %q, want it to mention the missing lists", err)
	}

	if _, _, err := Bootstrap(BootstrapConfig{Logger: discardLogger()}); err == nil {
		t.Error("expected error for nil Config")
	}
}

func TestNewLogger(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var output bytes.Buffer
	logger := NewLogger(&output, slog.LevelWarn)
	logger.Info("dropped")
	logger.Warn("kept", "list", "whitelist")

	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), output.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if record["msg"] != "kept" || record["list"] != "whitelist" {
		t.Errorf("record = %v", record)
	}
}

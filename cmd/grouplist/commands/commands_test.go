// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/riskful/grouplist/cmd/grouplist/cli"
	"github.com/riskful/grouplist/lib/listapi"
	"github.com/riskful/grouplist/lib/reconcile"
	"github.com/riskful/grouplist/lib/secret"
	"github.com/riskful/grouplist/lib/versionstore/memstore"
)

// captureStdout runs fn with os.Stdout redirected and returns what it
// wrote along with fn's error.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	original := os.Stdout
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = writer

	runErr := fn()

	writer.Close()
	os.Stdout = original

	var buffer bytes.Buffer
	io.Copy(&buffer, reader)
	reader.Close()

	return buffer.String(), runErr
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return captureStdout(t, func() error {
		return Root().Execute(context.Background(), args)
	})
}

func category(err error) cli.ErrorCategory {
	var toolErr *cli.ToolError
	if errors.As(err, &toolErr) {
		return toolErr.Category
	}
	return ""
}

// isolate clears the target environment variables.
func isolate(t *testing.T) {
	t.Setenv(ServerEnvVar, "")
	t.Setenv("GROUPLIST_CONFIG", "")
}

func writeDirectConfig(t *testing.T) string {
	t.Helper()
	directory := t.TempDir()
	path := filepath.Join(directory, "grouplist.yaml")
	content := `store:
  backend: file
  file:
    root: ` + filepath.Join(directory, "lists") + `
lists:
  - name: whitelist
    key: whitelist.html
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDirectMode(t *testing.T) {
	isolate(t)
	configPath := writeDirectConfig(t)

	output, err := execute(t, "add", "--config", configPath, "whitelist", "5", "3")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	want := "Group ID 5 added to whitelist\nGroup ID 3 added to whitelist\n"
	if output != want {
		t.Errorf("add output = %q, want %q", output, want)
	}

	output, err = execute(t, "list", "--config", configPath, "whitelist")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if output != "3\n5\n" {
		t.Errorf("list output = %q, want %q", output, "3\n5\n")
	}

	output, err = execute(t, "remove", "--config", configPath, "whitelist", "3")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if output != "Group ID 3 removed from whitelist\n" {
		t.Errorf("remove output = %q", output)
	}

	output, err = execute(t, "list", "--json", "--config", configPath, "whitelist")
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	var result listing
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("decoding %q: %v", output, err)
	}
	if len(result.IDs) != 1 || result.IDs[0] != 5 || result.Consistency != "versioned" {
		t.Errorf("listing = %+v, want [5] versioned", result)
	}

	output, err = execute(t, "reset", "--yes", "--config", configPath, "whitelist")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if output != "whitelist reset\n" {
		t.Errorf("reset output = %q", output)
	}
	output, err = execute(t, "list", "--config", configPath, "whitelist")
	if err != nil {
		t.Fatalf("list after reset: %v", err)
	}
	if output != "" {
		t.Errorf("list after reset = %q, want empty", output)
	}

	_, err = execute(t, "list", "--config", configPath, "blacklist")
	if category(err) != cli.CategoryNotFound {
		t.Errorf("unknown list error = %v, want not_found category", err)
	}
}

func newRemoteServer(t *testing.T) string {
	t.Helper()
	shared, err := secret.NewFromBytes([]byte("s3cret"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { shared.Close() })

	handler := listapi.NewHandler(listapi.Config{
		Lists: []listapi.List{{
			Name:   "whitelist",
			Key:    "whitelist.html",
			Engine: reconcile.New(reconcile.Config{Store: memstore.New()}),
		}},
		Secret: shared,
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server.URL
}

func writeSecret(t *testing.T, value string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte(value+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestServerMode(t *testing.T) {
	isolate(t)
	url := newRemoteServer(t)
	secretPath := writeSecret(t, "s3cret")

	output, err := execute(t, "add", "--server", url, "--secret-file", secretPath, "whitelist", "10")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if output != "Group ID 10 added to whitelist\n" {
		t.Errorf("add output = %q", output)
	}

	output, err = execute(t, "add", "--json", "--server", url, "--secret-file", secretPath, "whitelist", "10")
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	var outcomes []outcome
	if err := json.Unmarshal([]byte(output), &outcomes); err != nil {
		t.Fatalf("decoding %q: %v", output, err)
	}
	if len(outcomes) != 1 || outcomes[0].Changed || outcomes[0].GroupID != 10 || outcomes[0].Action != "add" {
		t.Errorf("outcomes = %+v, want one unchanged add of 10", outcomes)
	}

	// GROUPLIST_SERVER stands in for --server.
	t.Setenv(ServerEnvVar, url)
	output, err = execute(t, "list", "--secret-file", secretPath, "whitelist")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if output != "10\n" {
		t.Errorf("list output = %q, want %q", output, "10\n")
	}
}

func TestServerModeErrors(t *testing.T) {
	isolate(t)
	url := newRemoteServer(t)

	_, err := execute(t, "list", "--server", url, "--secret-file", writeSecret(t, "wrong"), "whitelist")
	if category(err) != cli.CategoryForbidden {
		t.Errorf("wrong secret error = %v, want forbidden category", err)
	}
	if !errors.Is(err, reconcile.KindUnauthorized) {
		t.Errorf("wrong secret error does not match KindUnauthorized: %v", err)
	}

	secretPath := writeSecret(t, "s3cret")
	_, err = execute(t, "remove", "--server", url, "--secret-file", secretPath, "blacklist", "1")
	if category(err) != cli.CategoryNotFound {
		t.Errorf("unknown list error = %v, want not_found category", err)
	}

	_, err = execute(t, "list", "--server", url, "whitelist")
	if category(err) != cli.CategoryValidation {
		t.Errorf("missing secret error = %v, want validation category", err)
	}
}

func TestArgumentValidation(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing ID", []string{"add", "whitelist"}, "usage"},
		{"non-numeric ID", []string{"add", "whitelist", "12abc"}, "invalid group ID"},
		{"zero ID", []string{"remove", "whitelist", "0"}, "out of range"},
		{"list arity", []string{"list"}, "usage"},
		{"unconfirmed reset", []string{"reset", "whitelist"}, "not confirmed"},
		{"no target", []string{"list", "whitelist"}, "GROUPLIST_CONFIG"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := execute(t, test.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if category(err) != cli.CategoryValidation {
				t.Errorf("category = %q, want validation (%v)", category(err), err)
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error = %q, want it to contain %q", err, test.want)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	output, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(output, "grouplist ") {
		t.Errorf("version output = %q", output)
	}
}

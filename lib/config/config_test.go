// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/riskful/grouplist/lib/envelope"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Listen != ":8080" {
		t.Errorf("listen = %q, want :8080", cfg.Listen)
	}
	if cfg.Store.Backend != BackendGitHub {
		t.Errorf("store.backend = %q, want github", cfg.Store.Backend)
	}
	if cfg.GroupsAPI.Timeout != 10*time.Second {
		t.Errorf("groups_api.timeout = %v, want 10s", cfg.GroupsAPI.Timeout)
	}
	whitelist, ok := cfg.List("whitelist")
	if !ok || !whitelist.ValidateGroups || whitelist.Key != "whitelist.html" {
		t.Errorf("whitelist = %+v, %v", whitelist, ok)
	}
	blacklist, ok := cfg.List("blacklist")
	if !ok || blacklist.ValidateGroups {
		t.Errorf("blacklist = %+v, %v", blacklist, ok)
	}
}

func TestLoad_RequiresEnvVar(t *testing.T) {
	t.Setenv(EnvVar, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when GROUPLIST_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "GROUPLIST_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_WithEnvVar(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "grouplist.yaml")
	configContent := `
listen: 127.0.0.1:9000
log_level: debug
secret_file: /run/secrets/list
store:
  backend: github
  github:
    owner: vlnezi
    repo: riskful-whitelist
    branch: main
    token_file: /run/secrets/github
groups_api:
  timeout: 3s
lists:
  - name: whitelist
    key: whitelist.html
    validate_groups: true
  - name: partners
    key: data/partners.json
    format: json
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv(EnvVar, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}

	if cfg.Listen != "127.0.0.1:9000" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if level, _ := cfg.SlogLevel(); level != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", level)
	}
	if cfg.Store.GitHub.Repo != "riskful-whitelist" || cfg.Store.GitHub.Branch != "main" {
		t.Errorf("store.github = %+v", cfg.Store.GitHub)
	}
	if cfg.GroupsAPI.Timeout != 3*time.Second {
		t.Errorf("groups_api.timeout = %v, want 3s", cfg.GroupsAPI.Timeout)
	}
	if cfg.GroupsAPI.BaseURL != "https://groups.roblox.com" {
		t.Errorf("groups_api.base_url default lost: %q", cfg.GroupsAPI.BaseURL)
	}
	if len(cfg.Lists) != 2 {
		t.Fatalf("lists = %+v, want the two configured lists only", cfg.Lists)
	}
	partners, ok := cfg.List("partners")
	if !ok || partners.EnvelopeFormat() != envelope.FormatDocument {
		t.Errorf("partners = %+v, want json format", partners)
	}
	if _, ok := cfg.List("blacklist"); ok {
		t.Error("default blacklist survived an explicit lists section")
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(empty): %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("listen = %q, want default", cfg.Listen)
	}
}

func TestParse_UnknownKey(t *testing.T) {
	if _, err := Parse([]byte("listen: :80\nlisten_addr: :81\n")); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestExpandVariables(t *testing.T) {
	t.Setenv("GROUPLIST_TEST_DIR", "/srv/lists")
	cfg, err := Parse([]byte(`
secret_file: ${GROUPLIST_TEST_DIR}/secret
store:
  backend: file
  file:
    root: ${GROUPLIST_TEST_UNSET:-/var/lib/grouplist}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.SecretFile != "/srv/lists/secret" {
		t.Errorf("secret_file = %q", cfg.SecretFile)
	}
	if cfg.Store.File.Root != "/var/lib/grouplist" {
		t.Errorf("store.file.root = %q", cfg.Store.File.Root)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr []string
	}{
		{
			name: "memory backend with defaults",
			yaml: "store:\n  backend: memory\n",
		},
		{
			name:    "github without repository",
			yaml:    "store:\n  backend: github\n",
			wantErr: []string{"store.github.owner", "store.github.token_file"},
		},
		{
			name:    "github over http",
			yaml:    "store:\n  backend: github\n  github: {owner: o, repo: r, token_file: t, base_url: 'http://ghe'}\n",
			wantErr: []string{"must use https"},
		},
		{
			name:    "blob without path",
			yaml:    "store:\n  backend: blob\n",
			wantErr: []string{"store.blob.path"},
		},
		{
			name:    "blob with unknown compression",
			yaml:    "store:\n  backend: blob\n  blob: {path: /tmp/l.db, compression: brotli}\n",
			wantErr: []string{"store.blob.compression"},
		},
		{
			name:    "unknown backend",
			yaml:    "store:\n  backend: s3\n",
			wantErr: []string{"store.backend"},
		},
		{
			name:    "bad log level",
			yaml:    "log_level: loud\nstore:\n  backend: memory\n",
			wantErr: []string{"log_level"},
		},
		{
			name: "bad lists",
			yaml: `store:
  backend: memory
lists:
  - {name: Whitelist, key: a.html}
  - {name: dup, key: b.html}
  - {name: dup, key: b.html, format: xml}
`,
			wantErr: []string{"lists[0].name", "lists[2].name \"dup\" is duplicated", "lists[2].key", "lists[2].format"},
		},
		{
			name:    "no lists",
			yaml:    "store:\n  backend: memory\nlists: []\n",
			wantErr: []string{"at least one list"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := Parse([]byte(test.yaml))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			err = cfg.Validate()
			if len(test.wantErr) == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want errors mentioning %v", test.wantErr)
			}
			for _, want := range test.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Validate() = %v, missing %q", err, want)
				}
			}
		})
	}
}

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/riskful/grouplist/lib/envelope"
)

// Store backends.
const (
	BackendGitHub = "github"
	BackendBlob   = "blob"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// EnvVar names the environment variable Load reads the config path from.
const EnvVar = "GROUPLIST_CONFIG"

// Config is the configuration for the list service and the operator CLI.
type Config struct {
	// Listen is the TCP address the HTTP API binds to.
	// Default: :8080
	Listen string `yaml:"listen"`

	// LogLevel is one of debug, info, warn, error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	// SecretFile holds the shared secret clients must present. When
	// empty, every list and update request is rejected.
	SecretFile string `yaml:"secret_file"`

	// Store selects and configures the artifact backend.
	Store StoreConfig `yaml:"store"`

	// GroupsAPI configures group existence checks on add.
	GroupsAPI GroupsAPIConfig `yaml:"groups_api"`

	// Lists are the group lists served.
	Lists []ListConfig `yaml:"lists"`
}

// StoreConfig selects the backend holding list artifacts.
type StoreConfig struct {
	// Backend is one of github, blob, file, memory.
	// Default: github
	Backend string `yaml:"backend"`

	GitHub GitHubConfig `yaml:"github"`
	Blob   BlobConfig   `yaml:"blob"`
	File   FileConfig   `yaml:"file"`
}

// GitHubConfig configures the repository-file backend.
type GitHubConfig struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`

	// Branch to read and commit to. Empty uses the default branch.
	Branch string `yaml:"branch"`

	// TokenFile holds a token with contents read/write permission.
	TokenFile string `yaml:"token_file"`

	// BaseURL overrides the API root for GitHub Enterprise.
	BaseURL string `yaml:"base_url"`
}

// BlobConfig configures the SQLite backend.
type BlobConfig struct {
	// Path is the database file. Created if missing.
	Path string `yaml:"path"`

	// Compression for large records: zstd, lz4, or none.
	// Default: zstd
	Compression string `yaml:"compression"`

	// KeyFile, when set, holds key material for sealing records at
	// rest. At least 16 bytes after trimming.
	KeyFile string `yaml:"key_file"`
}

// FileConfig configures the local directory backend.
type FileConfig struct {
	// Root is the directory artifacts are stored under.
	Root string `yaml:"root"`
}

// GroupsAPIConfig configures the upstream groups API.
type GroupsAPIConfig struct {
	// BaseURL of the groups API.
	// Default: https://groups.roblox.com
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each lookup.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// ListConfig describes one served list.
type ListConfig struct {
	// Name appears in request paths: /lists/{name}/update.
	Name string `yaml:"name"`

	// Key is the artifact key in the store (a repository path for the
	// github backend).
	Key string `yaml:"key"`

	// Format is the envelope written when no usable artifact exists:
	// html (default) or json.
	Format string `yaml:"format"`

	// ValidateGroups checks that a group exists before adding it.
	ValidateGroups bool `yaml:"validate_groups"`
}

// EnvelopeFormat returns the list's parsed Format. Only meaningful
// after Validate has succeeded.
func (l ListConfig) EnvelopeFormat() envelope.Format {
	format, _ := envelope.ParseFormat(l.Format)
	return format
}

// Default returns the configuration used as the base before the file is
// applied. The two lists match the original deployment: a validated
// whitelist and an unvalidated blacklist.
func Default() *Config {
	return &Config{
		Listen:   ":8080",
		LogLevel: "info",
		Store: StoreConfig{
			Backend: BackendGitHub,
		},
		GroupsAPI: GroupsAPIConfig{
			BaseURL: "https://groups.roblox.com",
			Timeout: 10 * time.Second,
		},
		Lists: []ListConfig{
			{Name: "whitelist", Key: "whitelist.html", Format: "html", ValidateGroups: true},
			{Name: "blacklist", Key: "blacklist.html", Format: "html"},
		},
	}
}

// Load loads configuration from the file named by GROUPLIST_CONFIG.
// There is no fallback: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your grouplist.yaml config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path over Default. Unknown keys are
// rejected. ${VAR} and ${VAR:-default} are expanded in path fields only.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration over Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	// An empty document decodes to io.EOF and leaves the defaults.
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	c.SecretFile = expandVars(c.SecretFile)
	c.Store.GitHub.TokenFile = expandVars(c.Store.GitHub.TokenFile)
	c.Store.Blob.Path = expandVars(c.Store.Blob.Path)
	c.Store.Blob.KeyFile = expandVars(c.Store.Blob.KeyFile)
	c.Store.File.Root = expandVars(c.Store.File.Root)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

var listNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Listen == "" {
		errs = append(errs, errors.New("listen is required"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	switch c.Store.Backend {
	case BackendGitHub:
		github := c.Store.GitHub
		if github.Owner == "" || github.Repo == "" {
			errs = append(errs, errors.New("store.github.owner and store.github.repo are required"))
		}
		if github.TokenFile == "" {
			errs = append(errs, errors.New("store.github.token_file is required"))
		}
		if github.BaseURL != "" && !strings.HasPrefix(github.BaseURL, "https://") {
			errs = append(errs, fmt.Errorf("store.github.base_url must use https, got %q", github.BaseURL))
		}
	case BackendBlob:
		if c.Store.Blob.Path == "" {
			errs = append(errs, errors.New("store.blob.path is required"))
		}
		switch c.Store.Blob.Compression {
		case "", "zstd", "lz4", "none":
		default:
			errs = append(errs, fmt.Errorf("store.blob.compression must be one of zstd, lz4, none, got %q", c.Store.Blob.Compression))
		}
	case BackendFile:
		if c.Store.File.Root == "" {
			errs = append(errs, errors.New("store.file.root is required"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("store.backend must be one of: %v",
			[]string{BackendGitHub, BackendBlob, BackendFile, BackendMemory}))
	}

	if c.GroupsAPI.Timeout < 0 {
		errs = append(errs, errors.New("groups_api.timeout must not be negative"))
	}

	if len(c.Lists) == 0 {
		errs = append(errs, errors.New("at least one list is required"))
	}
	names := make(map[string]bool)
	keys := make(map[string]bool)
	for index, list := range c.Lists {
		if !listNamePattern.MatchString(list.Name) {
			errs = append(errs, fmt.Errorf("lists[%d].name %q must match %s", index, list.Name, listNamePattern))
		} else if names[list.Name] {
			errs = append(errs, fmt.Errorf("lists[%d].name %q is duplicated", index, list.Name))
		}
		names[list.Name] = true

		if list.Key == "" {
			errs = append(errs, fmt.Errorf("lists[%d].key is required", index))
		} else if keys[list.Key] {
			errs = append(errs, fmt.Errorf("lists[%d].key %q is shared with another list", index, list.Key))
		}
		keys[list.Key] = true

		if _, err := envelope.ParseFormat(list.Format); err != nil {
			errs = append(errs, fmt.Errorf("lists[%d].format: %w", index, err))
		}
	}

	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q must be one of debug, info, warn, error", c.LogLevel)
	}
	return level, nil
}

// List returns the list named name.
func (c *Config) List(name string) (ListConfig, bool) {
	for _, list := range c.Lists {
		if list.Name == name {
			return list, true
		}
	}
	return ListConfig{}, false
}

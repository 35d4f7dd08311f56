// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/riskful/grouplist/lib/clock"
	"github.com/riskful/grouplist/lib/config"
	"github.com/riskful/grouplist/lib/github"
	"github.com/riskful/grouplist/lib/listapi"
	"github.com/riskful/grouplist/lib/reconcile"
	"github.com/riskful/grouplist/lib/roblox"
	"github.com/riskful/grouplist/lib/secret"
	"github.com/riskful/grouplist/lib/versionstore"
	"github.com/riskful/grouplist/lib/versionstore/blobstore"
	"github.com/riskful/grouplist/lib/versionstore/filestore"
	"github.com/riskful/grouplist/lib/versionstore/githubstore"
	"github.com/riskful/grouplist/lib/versionstore/memstore"
)

// BootstrapConfig controls the [Bootstrap] process.
type BootstrapConfig struct {
	// Config is the validated service configuration.
	Config *config.Config

	// Logger is the structured logger. If nil, Bootstrap creates one
	// via [NewLogger] at the configured level.
	Logger *slog.Logger

	// Clock drives rate-limit backoff, blob timestamps, and the
	// groups cache. Defaults to clock.Real().
	Clock clock.Clock

	// HTTPClient is used for the GitHub and groups APIs. Nil selects
	// each client's default.
	HTTPClient *http.Client
}

// BootstrapResult holds the state produced by [Bootstrap].
type BootstrapResult struct {
	// Store is the artifact backend shared by every list. Closed by
	// the cleanup function returned from Bootstrap.
	Store versionstore.Store

	// Lists are the served lists in configuration order, ready to pass
	// to listapi.NewHandler.
	Lists []listapi.List

	// Engines indexes the same engines by list name.
	Engines map[string]*reconcile.Engine

	Clock  clock.Clock
	Logger *slog.Logger
}

// Bootstrap builds the store, the optional group validator, and one
// reconcile engine per configured list. The caller must call the
// returned cleanup function once the engines are no longer in use.
func Bootstrap(config BootstrapConfig) (*BootstrapResult, func(), error) {
	cfg := config.Config
	if cfg == nil {
		return nil, nil, fmt.Errorf("service: Config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		level, _ := cfg.SlogLevel()
		logger = NewLogger(os.Stderr, level)
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	store, closeStore, err := OpenStore(cfg.Store, clk, logger, config.HTTPClient)
	if err != nil {
		return nil, nil, err
	}

	var validator reconcile.GroupValidator
	for _, list := range cfg.Lists {
		if list.ValidateGroups {
			validator = roblox.NewGroupsClient(roblox.Config{
				BaseURL:    cfg.GroupsAPI.BaseURL,
				HTTPClient: config.HTTPClient,
				Timeout:    cfg.GroupsAPI.Timeout,
				Clock:      clk,
				Logger:     logger.With("component", "groups"),
			})
			break
		}
	}

	result := &BootstrapResult{
		Store:   store,
		Engines: make(map[string]*reconcile.Engine, len(cfg.Lists)),
		Clock:   clk,
		Logger:  logger,
	}
	for _, list := range cfg.Lists {
		engineConfig := reconcile.Config{
			Store:  store,
			Format: list.EnvelopeFormat(),
			Logger: logger.With("list", list.Name),
		}
		if list.ValidateGroups {
			engineConfig.Validator = validator
		}
		engine := reconcile.New(engineConfig)
		result.Engines[list.Name] = engine
		result.Lists = append(result.Lists, listapi.List{
			Name:   list.Name,
			Key:    list.Key,
			Engine: engine,
		})
	}

	logger.Info("lists configured",
		"backend", cfg.Store.Backend,
		"consistency", string(store.Consistency()),
		"lists", len(result.Lists),
	)
	return result, closeStore, nil
}

// OpenStore constructs the backend selected by storeConfig. The
// returned function releases backend resources and is never nil on
// success.
func OpenStore(storeConfig config.StoreConfig, clk clock.Clock, logger *slog.Logger, httpClient *http.Client) (versionstore.Store, func(), error) {
	noop := func() {}
	switch storeConfig.Backend {
	case config.BackendGitHub:
		token, err := secret.ReadFromPath(storeConfig.GitHub.TokenFile)
		if err != nil {
			return nil, nil, fmt.Errorf("reading github token: %w", err)
		}
		closeToken := func() {
			if err := token.Close(); err != nil {
				logger.Error("releasing github token", "error", err)
			}
		}
		client, err := github.NewClient(github.Config{
			BaseURL:    storeConfig.GitHub.BaseURL,
			Token:      token,
			HTTPClient: httpClient,
			Clock:      clk,
			Logger:     logger.With("component", "github"),
		})
		if err != nil {
			closeToken()
			return nil, nil, err
		}
		store, err := githubstore.New(githubstore.Config{
			Client: client,
			Owner:  storeConfig.GitHub.Owner,
			Repo:   storeConfig.GitHub.Repo,
			Branch: storeConfig.GitHub.Branch,
			Logger: logger,
		})
		if err != nil {
			closeToken()
			return nil, nil, err
		}
		return store, closeToken, nil

	case config.BackendBlob:
		var key *secret.Buffer
		if storeConfig.Blob.KeyFile != "" {
			var err error
			key, err = secret.ReadFromPath(storeConfig.Blob.KeyFile)
			if err != nil {
				return nil, nil, fmt.Errorf("reading blob key: %w", err)
			}
			// The store derives its own key; the material is not kept.
			defer key.Close()
		}
		store, err := blobstore.Open(blobstore.Config{
			Path:          storeConfig.Blob.Path,
			Compression:   storeConfig.Blob.Compression,
			EncryptionKey: key,
			Clock:         clk,
			Logger:        logger,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("blob store opened",
			"path", storeConfig.Blob.Path,
			"compression", cmp.Or(storeConfig.Blob.Compression, "zstd"),
			"sealed", key != nil,
		)
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("closing blob store", "error", err)
			}
		}, nil

	case config.BackendFile:
		store, err := filestore.New(storeConfig.File.Root, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	case config.BackendMemory:
		logger.Warn("memory backend selected; lists are lost on restart")
		return memstore.New(), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", storeConfig.Backend)
}

// NewLogger creates the service logger: a JSON handler writing to
// output at level. It also sets the default slog logger so that
// third-party code using slog.Info etc. gets the same handler.
func NewLogger(output io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

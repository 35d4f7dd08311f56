// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package githubstore keeps list artifacts as files in a GitHub
// repository. An artifact's version is the file's blob SHA and every
// write is a commit conditioned on that SHA, so concurrent writers are
// serialized by GitHub itself.
package githubstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/riskful/grouplist/lib/github"
	"github.com/riskful/grouplist/lib/versionstore"
)

// Config holds the repository coordinates for a Store.
type Config struct {
	// Client performs the API calls. Required.
	Client *github.Client

	// Owner and Repo name the repository holding the list files.
	Owner string
	Repo  string

	// Branch is the branch read and committed to. Empty uses the
	// repository's default branch.
	Branch string

	Logger *slog.Logger
}

// Store implements versionstore.Store over the GitHub contents API.
type Store struct {
	client *github.Client
	owner  string
	repo   string
	branch string
	logger *slog.Logger
}

// New validates the configuration and returns a Store.
func New(config Config) (*Store, error) {
	if config.Client == nil {
		return nil, errors.New("githubstore: Client is required")
	}
	if config.Owner == "" || config.Repo == "" {
		return nil, errors.New("githubstore: Owner and Repo are required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		client: config.Client,
		owner:  config.Owner,
		repo:   config.Repo,
		branch: config.Branch,
		logger: logger,
	}, nil
}

// Consistency reports versionstore.Versioned.
func (s *Store) Consistency() versionstore.Consistency {
	return versionstore.Versioned
}

// Fetch reads key from the configured branch.
func (s *Store) Fetch(ctx context.Context, key string) (*versionstore.Artifact, error) {
	file, err := s.client.GetContents(ctx, s.owner, s.repo, key, s.branch)
	if err != nil {
		if github.IsNotFound(err) {
			return nil, fmt.Errorf("githubstore: %s/%s:%s: %w", s.owner, s.repo, key, versionstore.ErrNotFound)
		}
		s.warnAuth(err)
		return nil, versionstore.Unavailable(fmt.Errorf("githubstore: fetching %s: %w", key, err))
	}
	content, err := file.Decode()
	if err != nil {
		return nil, versionstore.Unavailable(err)
	}
	return &versionstore.Artifact{
		Key:     key,
		Content: content,
		Version: versionstore.Version(file.SHA),
	}, nil
}

// Write commits content to key. An empty expected version creates the
// file; otherwise expected must be the file's current blob SHA.
func (s *Store) Write(ctx context.Context, key string, content []byte, expected versionstore.Version, message string) (versionstore.Version, error) {
	request := github.NewPutContentsRequest(message, content, string(expected), s.branch)
	response, err := s.client.PutContents(ctx, s.owner, s.repo, key, request)
	if err != nil {
		return versionstore.NoVersion, s.classifyWriteError(key, expected, err)
	}

	s.logger.Info("committed list file",
		"repository", s.owner+"/"+s.repo,
		"path", key,
		"commit", response.Commit.SHA,
		"sha", response.Content.SHA,
	)
	return versionstore.Version(response.Content.SHA), nil
}

// classifyWriteError maps GitHub's responses to a conditional PUT.
// GitHub answers a stale SHA with 409, a create over an existing file
// with 422 ("sha wasn't supplied"), and an update of a file deleted
// underneath us with 404.
func (s *Store) classifyWriteError(key string, expected versionstore.Version, err error) error {
	conflict := &versionstore.ConflictError{Key: key, Expected: expected}
	switch {
	case github.IsConflict(err):
		return fmt.Errorf("%w: %v", conflict, err)
	case github.IsValidationFailed(err) && expected == versionstore.NoVersion:
		return fmt.Errorf("githubstore: %s: %w", key, versionstore.ErrAlreadyExists)
	case github.IsValidationFailed(err):
		return fmt.Errorf("%w: %v", conflict, err)
	case github.IsNotFound(err) && expected != versionstore.NoVersion:
		return fmt.Errorf("%w: %v", conflict, err)
	default:
		s.warnAuth(err)
		return versionstore.Unavailable(fmt.Errorf("githubstore: writing %s: %w", key, err))
	}
}

// warnAuth logs token problems, which surface to clients only as an
// upstream failure.
func (s *Store) warnAuth(err error) {
	if github.IsAuthFailure(err) {
		s.logger.Error("github token rejected or lacks contents permission",
			"repository", s.owner+"/"+s.repo,
			"error", err,
		)
	}
}

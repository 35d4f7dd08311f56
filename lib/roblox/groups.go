// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package roblox checks group IDs against the Roblox groups API before
// they are added to a list.
package roblox

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/riskful/grouplist/lib/clock"
	"github.com/riskful/grouplist/lib/groupid"
	"github.com/riskful/grouplist/lib/netutil"
)

// DefaultBaseURL is the public groups API.
const DefaultBaseURL = "https://groups.roblox.com"

// DefaultCacheTTL is how long a confirmed group is remembered.
const DefaultCacheTTL = 10 * time.Minute

// Config configures a GroupsClient.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient defaults to an http.Client with Timeout.
	HTTPClient *http.Client

	// Timeout bounds each lookup when HTTPClient is nil. Defaults to
	// 10 seconds.
	Timeout time.Duration

	// CacheTTL is how long a group confirmed to exist is trusted
	// without another lookup. Zero uses DefaultCacheTTL; negative
	// disables caching.
	CacheTTL time.Duration

	Clock  clock.Clock
	Logger *slog.Logger
}

// GroupsClient looks up groups by ID.
type GroupsClient struct {
	baseURL    string
	httpClient *http.Client
	ttl        time.Duration
	clock      clock.Clock
	logger     *slog.Logger

	mu        sync.Mutex
	confirmed map[groupid.ID]time.Time
}

// NewGroupsClient returns a client for the groups API.
func NewGroupsClient(config Config) *GroupsClient {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	ttl := config.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GroupsClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		ttl:        ttl,
		clock:      clk,
		logger:     logger,
		confirmed:  make(map[groupid.ID]time.Time),
	}
}

// group is the subset of the groups API response we read.
type group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GroupExists reports whether the API knows a group with this ID. A 400
// or 404 answer, or a body describing a different group, means the
// group does not exist. Any other failure is returned as an error.
func (c *GroupsClient) GroupExists(ctx context.Context, id groupid.ID) (bool, error) {
	if c.cached(id) {
		return true, nil
	}

	url := fmt.Sprintf("%s/v1/groups/%d", c.baseURL, int64(id))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("roblox: creating request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return false, fmt.Errorf("roblox: looking up group %d: %w", int64(id), err)
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusOK:
	case response.StatusCode == http.StatusBadRequest, response.StatusCode == http.StatusNotFound:
		c.logger.Info("group lookup rejected", "group_id", int64(id), "status", response.StatusCode)
		return false, nil
	default:
		return false, fmt.Errorf("roblox: looking up group %d: HTTP %d: %s",
			int64(id), response.StatusCode, netutil.ErrorBody(response.Body))
	}

	var found group
	if err := netutil.DecodeResponse(response.Body, &found); err != nil {
		return false, fmt.Errorf("roblox: decoding group %d: %w", int64(id), err)
	}
	if found.ID != int64(id) {
		c.logger.Info("group lookup returned a different group", "group_id", int64(id), "returned_id", found.ID)
		return false, nil
	}

	c.remember(id)
	return true, nil
}

func (c *GroupsClient) cached(id groupid.ID) bool {
	if c.ttl < 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	expires, ok := c.confirmed[id]
	if !ok {
		return false
	}
	if !c.clock.Now().Before(expires) {
		delete(c.confirmed, id)
		return false
	}
	return true
}

func (c *GroupsClient) remember(id groupid.ID) {
	if c.ttl < 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmed[id] = c.clock.Now().Add(c.ttl)
}

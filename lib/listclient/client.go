// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package listclient calls a running group list service.
package listclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/riskful/grouplist/lib/groupid"
	"github.com/riskful/grouplist/lib/listapi"
	"github.com/riskful/grouplist/lib/netutil"
	"github.com/riskful/grouplist/lib/reconcile"
	"github.com/riskful/grouplist/lib/secret"
)

// Client is an HTTP client for the list API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	secret     *secret.Buffer
}

// New returns a client for the service at baseURL. The secret buffer is
// borrowed; the caller closes it after the client is done.
func New(baseURL string, shared *secret.Buffer, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("listclient: invalid server URL %q", baseURL)
	}
	if shared == nil {
		return nil, errors.New("listclient: secret is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		secret:     shared,
	}, nil
}

// Error is a failure reported by the service.
type Error struct {
	StatusCode int
	Kind       reconcile.Kind
	Details    string
}

func (err *Error) Error() string {
	if err.Details == "" {
		return fmt.Sprintf("listclient: HTTP %d: %s", err.StatusCode, err.Kind)
	}
	return fmt.Sprintf("listclient: HTTP %d: %s: %s", err.StatusCode, err.Kind, err.Details)
}

// Is matches the reported kind, so errors.Is(err, reconcile.KindConflict)
// holds for a 409.
func (err *Error) Is(target error) bool {
	kind, ok := target.(reconcile.Kind)
	return ok && kind == err.Kind
}

// List returns the IDs in the named list.
func (c *Client) List(ctx context.Context, name string) (*listapi.ListResponse, error) {
	var response listapi.ListResponse
	request := listapi.ListRequest{Secret: c.secret.String()}
	if err := c.post(ctx, "/lists/"+url.PathEscape(name)+"/list", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Add inserts id into the named list.
func (c *Client) Add(ctx context.Context, name string, id groupid.ID) (*listapi.UpdateResponse, error) {
	return c.update(ctx, name, listapi.UpdateRequest{GroupID: listapi.NumericID(id)})
}

// Remove deletes id from the named list.
func (c *Client) Remove(ctx context.Context, name string, id groupid.ID) (*listapi.UpdateResponse, error) {
	return c.update(ctx, name, listapi.UpdateRequest{RemoveGroupID: listapi.NumericID(id)})
}

// Reset empties the named list.
func (c *Client) Reset(ctx context.Context, name string) (*listapi.UpdateResponse, error) {
	return c.update(ctx, name, listapi.UpdateRequest{Reset: true})
}

func (c *Client) update(ctx context.Context, name string, request listapi.UpdateRequest) (*listapi.UpdateResponse, error) {
	request.Secret = c.secret.String()
	var response listapi.UpdateResponse
	if err := c.post(ctx, "/lists/"+url.PathEscape(name)+"/update", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("listclient: encoding request: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("listclient: creating request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("listclient: POST %s: %w", path, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		data, _ := netutil.ReadResponse(response.Body)
		var failure listapi.ErrorResponse
		if json.Unmarshal(data, &failure) != nil || failure.Error == "" {
			return &Error{StatusCode: response.StatusCode, Kind: reconcile.KindUpstreamUnavailable, Details: strings.TrimSpace(string(data))}
		}
		return &Error{StatusCode: response.StatusCode, Kind: reconcile.Kind(failure.Error), Details: failure.Details}
	}

	if err := netutil.DecodeResponse(response.Body, result); err != nil {
		return fmt.Errorf("listclient: decoding %s response: %w", path, err)
	}
	return nil
}

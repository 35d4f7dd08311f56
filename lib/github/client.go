// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/riskful/grouplist/lib/clock"
	"github.com/riskful/grouplist/lib/netutil"
	"github.com/riskful/grouplist/lib/secret"
)

// apiVersion pins the REST API version header.
const apiVersion = "2022-11-28"

const defaultBaseURL = "https://api.github.com"

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the API root. Defaults to https://api.github.com.
	// Must use HTTPS.
	BaseURL string

	// Token is a token with contents read/write permission on the list
	// repository. Required. Borrowed: it must stay open for the life of
	// the Client.
	Token *secret.Buffer

	// HTTPClient defaults to http.DefaultClient. Its Timeout bounds
	// every request.
	HTTPClient *http.Client

	// MaxRateLimitWait bounds how long a call sleeps for an exhausted
	// rate limit window. Defaults to DefaultMaxRateLimitWait.
	MaxRateLimitWait time.Duration

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client is a small GitHub REST client: bearer auth, rate limit
// tracking with bounded waits, conditional GETs, and typed errors.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       bearerAuth
	limiter    *rateLimiter
	cache      *responseCache
	logger     *slog.Logger
}

// NewClient returns a Client. It fails on a non-HTTPS base URL or a
// missing token.
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(cmp.Or(config.BaseURL, defaultBaseURL), "/")
	if !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("github: API client requires HTTPS (got %q)", baseURL)
	}
	if config.Token == nil || config.Token.Len() == 0 {
		return nil, fmt.Errorf("github: no token configured")
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: cmp.Or(config.HTTPClient, http.DefaultClient),
		auth:       bearerAuth{token: config.Token},
		limiter:    newRateLimiter(cmp.Or[clock.Clock](config.Clock, clock.Real()), config.MaxRateLimitWait),
		cache:      newResponseCache(),
		logger:     cmp.Or(config.Logger, slog.Default()),
	}, nil
}

// do sends one API request to path (relative to the base URL) and
// returns the body of a 2xx response. Non-2xx responses become
// *APIError. A rate-limited response is retried once when its backoff
// fits within the wait limit.
func (client *Client) do(ctx context.Context, method, path string, requestBody any) ([]byte, error) {
	url := client.baseURL + path
	for attempt := 0; ; attempt++ {
		status, body, err := client.roundTrip(ctx, method, url, requestBody)
		if err != nil {
			return nil, err
		}
		if status >= 200 && status < 300 {
			return body.data, nil
		}

		apiError := parseAPIError(status, body.data)
		if attempt > 0 || !IsRateLimited(apiError) {
			return nil, apiError
		}
		delay := client.limiter.backoff(body.header)
		if delay <= 0 {
			return nil, apiError
		}
		client.logger.Info("github rate limited, backing off",
			"duration", delay,
			"method", method,
			"path", path,
		)
		if err := client.limiter.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

type responseBody struct {
	data   []byte
	header http.Header
}

// roundTrip performs a single exchange, applying the conditional GET
// cache and updating rate limit state.
func (client *Client) roundTrip(ctx context.Context, method, url string, requestBody any) (int, responseBody, error) {
	if err := client.limiter.admit(ctx); err != nil {
		return 0, responseBody{}, err
	}

	var reader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return 0, responseBody{}, fmt.Errorf("github: encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	request, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, responseBody{}, fmt.Errorf("github: creating request: %w", err)
	}
	request.Header.Set("Authorization", client.auth.header())
	request.Header.Set("Accept", "application/vnd.github+json")
	request.Header.Set("X-GitHub-Api-Version", apiVersion)
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	cached, haveCached := client.cache.lookup(url)
	if method == http.MethodGet && haveCached {
		request.Header.Set("If-None-Match", cached.etag)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return 0, responseBody{}, fmt.Errorf("github: %s %s: %w", method, url, err)
	}
	defer response.Body.Close()
	client.limiter.observe(response.Header)

	if response.StatusCode == http.StatusNotModified && haveCached {
		return http.StatusOK, responseBody{data: cached.body, header: response.Header}, nil
	}

	data, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return 0, responseBody{}, fmt.Errorf("github: reading response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		if method == http.MethodGet {
			client.cache.store(url, response.Header.Get("ETag"), data)
		} else {
			client.cache.forget(strings.SplitN(url, "?", 2)[0])
		}
	}
	return response.StatusCode, responseBody{data: data, header: response.Header}, nil
}

// get decodes the JSON body of a GET into result.
func (client *Client) get(ctx context.Context, path string, result any) error {
	body, err := client.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, result)
}

// put sends a PUT and decodes the response into result when non-nil.
func (client *Client) put(ctx context.Context, path string, requestBody, result any) error {
	body, err := client.do(ctx, http.MethodPut, path, requestBody)
	if err != nil || result == nil {
		return err
	}
	return json.Unmarshal(body, result)
}

// parseAPIError builds an APIError from a non-2xx response. Bodies
// that are not GitHub's error JSON become the message verbatim.
func parseAPIError(statusCode int, body []byte) *APIError {
	var wire struct {
		Message          string            `json:"message"`
		DocumentationURL string            `json:"documentation_url"`
		Errors           []ValidationError `json:"errors"`
	}
	if json.Unmarshal(body, &wire) != nil || wire.Message == "" {
		return &APIError{StatusCode: statusCode, Message: netutil.ErrorBody(bytes.NewReader(body))}
	}
	return &APIError{
		StatusCode:       statusCode,
		Message:          wire.Message,
		DocumentationURL: wire.DocumentationURL,
		Errors:           wire.Errors,
	}
}

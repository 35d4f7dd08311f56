// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"fmt"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name:     "message only",
			err:      &APIError{StatusCode: 404, Message: "Not Found"},
			expected: "github: HTTP 404: Not Found",
		},
		{
			name: "sha mismatch reported by code",
			err: &APIError{
				StatusCode: 422,
				Message:    "Invalid request.",
				Errors:     []ValidationError{{Resource: "Contents", Field: "sha", Code: "invalid"}},
			},
			expected: "github: HTTP 422: Invalid request.; Contents.sha: invalid",
		},
		{
			name: "message preferred over code",
			err: &APIError{
				StatusCode: 422,
				Message:    "Invalid request.",
				Errors: []ValidationError{
					{Resource: "Contents", Field: "sha", Code: "missing_field"},
					{Resource: "Contents", Field: "content", Code: "invalid", Message: "is not base64"},
				},
			},
			expected: "github: HTTP 422: Invalid request.; Contents.sha: missing_field; Contents.content: is not base64",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.err.Error(); got != test.expected {
				t.Errorf("got %q, want %q", got, test.expected)
			}
		})
	}
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		notFound    bool
		conflict    bool
		validation  bool
		rateLimited bool
		auth        bool
	}{
		{name: "404", err: &APIError{StatusCode: 404, Message: "Not Found"}, notFound: true},
		{name: "409", err: &APIError{StatusCode: 409, Message: "list.html does not match abc"}, conflict: true},
		{name: "422", err: &APIError{StatusCode: 422, Message: "Invalid request."}, validation: true},
		{name: "429", err: &APIError{StatusCode: 429, Message: "Too Many Requests"}, rateLimited: true},
		{name: "403 rate limit", err: &APIError{StatusCode: 403, Message: "API rate limit exceeded for user"}, rateLimited: true},
		{name: "403 abuse detection", err: &APIError{StatusCode: 403, Message: "You have triggered an abuse detection mechanism"}, rateLimited: true},
		{name: "403 permission", err: &APIError{StatusCode: 403, Message: "Resource not accessible by personal access token"}, auth: true},
		{name: "401", err: &APIError{StatusCode: 401, Message: "Bad credentials"}, auth: true},
		{name: "wrapped 404", err: fmt.Errorf("fetching list: %w", &APIError{StatusCode: 404}), notFound: true},
		{name: "plain error", err: fmt.Errorf("connection reset")},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsNotFound(test.err); got != test.notFound {
				t.Errorf("IsNotFound = %v, want %v", got, test.notFound)
			}
			if got := IsConflict(test.err); got != test.conflict {
				t.Errorf("IsConflict = %v, want %v", got, test.conflict)
			}
			if got := IsValidationFailed(test.err); got != test.validation {
				t.Errorf("IsValidationFailed = %v, want %v", got, test.validation)
			}
			if got := IsRateLimited(test.err); got != test.rateLimited {
				t.Errorf("IsRateLimited = %v, want %v", got, test.rateLimited)
			}
			if got := IsAuthFailure(test.err); got != test.auth {
				t.Errorf("IsAuthFailure = %v, want %v", got, test.auth)
			}
		})
	}
}

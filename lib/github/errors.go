// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the GitHub REST API. GitHub
// returns a JSON body with a message, a documentation URL, and on 422
// a list of field-level failures.
type APIError struct {
	StatusCode       int
	Message          string
	DocumentationURL string
	Errors           []ValidationError
}

// ValidationError is one field-level failure from a 422 response.
type ValidationError struct {
	Resource string `json:"resource"`
	Code     string `json:"code"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

func (err *APIError) Error() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "github: HTTP %d: %s", err.StatusCode, err.Message)
	for _, validationError := range err.Errors {
		detail := validationError.Message
		if detail == "" {
			detail = validationError.Code
		}
		fmt.Fprintf(&builder, "; %s.%s: %s", validationError.Resource, validationError.Field, detail)
	}
	return builder.String()
}

// statusOf returns the status of the APIError in err's chain, or 0.
func statusOf(err error) (int, string) {
	var apiError *APIError
	if !errors.As(err, &apiError) {
		return 0, ""
	}
	return apiError.StatusCode, apiError.Message
}

// IsNotFound reports a 404. For the contents API this means the file,
// branch, or repository does not exist, or the token cannot see it.
func IsNotFound(err error) bool {
	status, _ := statusOf(err)
	return status == http.StatusNotFound
}

// IsConflict reports a 409: the sha in a contents PUT is not the
// file's current blob.
func IsConflict(err error) bool {
	status, _ := statusOf(err)
	return status == http.StatusConflict
}

// IsValidationFailed reports a 422. A contents PUT without a sha for a
// file that already exists fails this way.
func IsValidationFailed(err error) bool {
	status, _ := statusOf(err)
	return status == http.StatusUnprocessableEntity
}

// IsRateLimited reports a primary (403 with a rate limit message) or
// secondary (429) rate limit.
func IsRateLimited(err error) bool {
	status, message := statusOf(err)
	return status == http.StatusTooManyRequests ||
		(status == http.StatusForbidden && isRateLimitMessage(message))
}

// IsAuthFailure reports a rejected or under-privileged token: 401, or
// a 403 that is not a rate limit.
func IsAuthFailure(err error) bool {
	status, message := statusOf(err)
	return status == http.StatusUnauthorized ||
		(status == http.StatusForbidden && !isRateLimitMessage(message))
}

func isRateLimitMessage(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "abuse detection")
}

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds reads of JSON API response bodies for the
// GitHub, groups and list service clients.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// MaxResponseSize bounds JSON API response reads. A GitHub contents
// document for a 1 MB file, base64 encoded, fits comfortably.
const MaxResponseSize int64 = 16 << 20

// MaxErrorBody bounds the text ErrorBody keeps.
const MaxErrorBody = 4 << 10

// TooLargeError is returned for a body longer than the read limit.
type TooLargeError struct {
	Limit int64
}

func (err *TooLargeError) Error() string {
	return fmt.Sprintf("response body exceeds %d bytes", err.Limit)
}

// ReadLimited reads all of body, failing with *TooLargeError instead of
// truncating once limit is passed.
func ReadLimited(body io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	switch {
	case err != nil:
		return nil, err
	case int64(len(data)) > limit:
		return nil, &TooLargeError{Limit: limit}
	}
	return data, nil
}

// ReadResponse is ReadLimited at MaxResponseSize.
func ReadResponse(body io.Reader) ([]byte, error) {
	return ReadLimited(body, MaxResponseSize)
}

// DecodeResponse JSON-decodes a bounded response body into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// ErrorBody returns the trimmed start of an error response for use in
// messages. Read errors yield whatever arrived first.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxErrorBody))
	return strings.TrimSpace(string(data))
}

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package github provides a small typed client for the parts of the
// GitHub REST API that back a repository-hosted list: reading a file
// with its blob SHA and writing it back conditioned on that SHA.
//
// The client authenticates with a personal access token or
// fine-grained token. It handles rate limiting (X-RateLimit-* headers
// with one automatic backoff), conditional GETs (ETags), and
// structured error mapping ([APIError], [IsNotFound], [IsConflict],
// [IsValidationFailed]).
//
// All requests are made over HTTPS. The client refuses non-HTTPS base
// URLs.
package github

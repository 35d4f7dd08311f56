// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the HTTP server lifecycle shared by the
// group list binaries: bind, signal readiness, serve until the context
// is cancelled, then drain in-flight requests.
//
// Routing and request handling belong to the caller; see lib/listapi.
package service

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package listapi serves the group list HTTP API.
//
// Every list and update request carries the shared secret in its JSON
// body. The secret is checked before anything else about the request
// is looked at, and a server without a configured secret rejects every
// such request.
//
// Routes, for each configured list {name}:
//
//	POST /lists/{name}/list     {"secret"}
//	POST /lists/{name}/update   {"secret", "groupId"?, "removeGroupId"?, "reset"?, "action"?}
//	GET  /healthz
//
// plus the legacy single-list routes /list-whitelist, /update-whitelist
// and /update-blacklist when lists of those names exist.
//
// Failures are reported as {"error": kind, "details": text} with the
// status given by [StatusFor].
package listapi

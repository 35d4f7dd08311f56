// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Grouplist-service serves the group list HTTP API.
//
// It loads grouplist.yaml (--config or $GROUPLIST_CONFIG), opens the
// configured store backend, and serves every configured list:
//
//	POST /lists/{name}/list
//	POST /lists/{name}/update
//	GET  /healthz
//
// plus /list-whitelist, /update-whitelist, and /update-blacklist when
// lists with those names exist. Requests carry the shared secret from
// secret_file in their JSON body.
//
// SIGINT or SIGTERM stops accepting connections and drains in-flight
// requests before exit.
package main

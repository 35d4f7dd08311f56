// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool is the connection pool under the blob store. It
// wraps zombiezen.com/go/sqlite's sqlitex.Pool and prepares every
// connection the same way:
//
//   - journal_mode=WAL
//   - synchronous=FULL, since the database holds the only copy of the lists
//   - busy_timeout from Config.BusyTimeout (5s unless set)
//   - cache_size=-2048 (2 MB per connection)
//   - temp_store=MEMORY
//
// A borrowed connection belongs to one goroutine until it is returned.
// [Pool.WithConn] scopes the borrow to a callback:
//
//	err := pool.WithConn(ctx, func(conn *sqlite.Conn) error {
//	    return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{...})
//	})
package sqlitepool

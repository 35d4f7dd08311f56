// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds the shared list secret and the upstream API
// token in memory that is kept out of swap and core dumps.
//
// [Buffer] allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock, and marks it excluded from core
// dumps via madvise(MADV_DONTDUMP). On Close, the memory is zeroed,
// unlocked, and unmapped.
//
// Constructors:
//
//   - [New] -- allocates a zero-filled buffer of a given size
//   - [NewFromBytes] -- copies into protected memory, zeros the source
//   - [ReadFromPath] -- reads a file (or stdin for "-"), trimming whitespace
//
// Request secrets are checked with [Buffer.Equal], which compares in
// constant time. After Close, any access panics. Close is idempotent.
package secret

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package versionstore defines the contract between list reconciliation
// and the backing store that holds each list's artifact.
//
// A [Store] fetches an artifact together with an opaque [Version] and
// writes a new artifact conditioned on the version obtained at fetch
// time. A write whose expected version no longer matches the stored
// one fails with [ErrVersionConflict]; the store never silently
// overwrites a concurrent update. Writing with [NoVersion] creates the
// artifact only if it does not exist yet and fails with
// [ErrAlreadyExists] otherwise.
//
// Stores that cannot offer conditional writes report
// [LastWriterWins] from [Store.Consistency]. Callers surface that tier
// to their clients: with such a store two concurrent updates can lose
// one of the mutations. This is a documented gap, not a bug in the
// backend.
//
// Implementations live in subpackages:
//
//   - githubstore: a file in a GitHub repository (blob SHA as version)
//   - filestore: files under a local directory (BLAKE3 digest as version)
//   - blobstore: a SQLite key-value table (last writer wins)
//   - memstore: an in-process map, for tests and dry runs
package versionstore

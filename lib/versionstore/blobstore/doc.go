// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package blobstore keeps artifacts in a SQLite key-value table.
//
// Each row holds a CBOR-encoded record: the artifact content
// (compressed with zstd or lz4 above [compressionThreshold]), the
// compression tag, the write time, and the change message. With
// [Config.EncryptionKey] set the encoded record is sealed with
// XChaCha20-Poly1305 under an HKDF-derived key, authenticated against
// the row key.
//
// A blob store exposes no version token. Fetch returns
// [versionstore.NoVersion] and Write ignores the expected version: every
// write is an unconditional upsert. [Store.Consistency] reports
// [versionstore.LastWriterWins]. Two requests that fetch the same
// content and write concurrently can therefore lose one mutation; the
// service surfaces this tier on every response so that callers know
// which guarantee applies.
package blobstore

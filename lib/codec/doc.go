// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding used for stored records.
//
// JSON is used for everything a client or operator sees: the HTTP API,
// CLI --json output, and the document envelope. CBOR is used for the
// blob store's per-key records, which are never shown to anyone.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same record always produces identical bytes.
//
//	data, err := codec.Marshal(value)
//	stored, err := codec.Decode[record](data)
//
// Decoding is strict about shape and lenient about content: duplicate
// map keys, indefinite-length items and tags are errors, but unknown
// fields are ignored so a newer record with extra fields still reads.
package codec

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package envelope reads and writes the identifier list embedded in a
// stored artifact.
//
// Two envelope formats are recognized:
//
//   - Delimited text: arbitrary surrounding text (typically an HTML
//     page) containing [OpenMarker] and a later [CloseMarker]. The
//     region between them holds one decimal ID per line.
//   - Structured document: a JSON (or JSONC) document whose top-level
//     value is an array of IDs, or an object with the array under
//     "groups".
//
// [Decode] never fails. When neither format can be located it falls
// back to repair: every line whose trimmed content is only decimal
// digits is taken as an ID, and the result carries no envelope so that
// [Encode] synthesizes a well-formed one. Decoding is lossy-tolerant:
// lines or elements that do not yield a valid ID are dropped without
// affecting the rest.
//
// [Encode] replaces only the data region of the envelope it was given
// and leaves everything around it byte-for-byte intact.
package envelope

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package groupid defines group identifiers and the deduplicated,
// ordered identifier set that every list operation works on.
//
// An [ID] is a strictly positive integer no larger than [MaxID]. The
// upper bound is the largest integer a JSON consumer represents exactly,
// so every ID written by this module survives a round trip through a
// float64-based reader.
//
// A [Set] is immutable: [Set.Add] and [Set.Remove] return a new set.
// Sets are always sorted ascending and never contain duplicates, which
// makes serialization deterministic and diffs of the stored artifact
// minimal.
package groupid

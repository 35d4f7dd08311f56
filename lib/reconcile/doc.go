// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package reconcile applies a single mutation to a stored group list.
//
// Each [Engine.Apply] call runs one pass of the update protocol:
//
//	Idle → Fetching → Decoding → Applying → Encoding → Writing → Done
//
// with any failure ending in Failed. The artifact is fetched once,
// decoded (falling back to repair when the envelope is damaged), the
// mutation applied to the deduplicated set, and the result written back
// conditioned on the fetched version. A concurrent writer surfaces as
// [KindConflict]; the engine never retries on its own.
//
// Errors returned by the engine are *[Error] values whose [Kind] maps
// directly onto a client-visible failure class:
//
//	if errors.Is(err, reconcile.KindConflict) {
//	    // refetch and retry at the caller's discretion
//	}
package reconcile

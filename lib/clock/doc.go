// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Components that read the time or wait (rate-limit backoff, the groups
// cache, blob record timestamps) take a Clock instead of calling the
// time package. Production code passes Real(); tests pass Fake(), which
// moves only when Advance is called.
//
//	fakeClock := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go client.Fetch(ctx, key) // waits on fakeClock.After
//	fakeClock.WaitForTimers(1)
//	fakeClock.Advance(time.Minute)
//
// WaitForTimers blocks until a goroutine has registered its wait, which
// removes the race between registration and Advance.
package clock

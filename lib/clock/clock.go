// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the time source for rate limit backoff, groups API cache
// expiry, and blob store timestamps.
type Clock interface {
	Now() time.Time

	// After fires once d has elapsed; immediately when d <= 0.
	After(d time.Duration) <-chan time.Time
}

// Real returns the wall clock.
func Real() Clock { return wallClock{} }

type wallClock struct{}

func (wallClock) Now() time.Time                         { return time.Now() }
func (wallClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/riskful/grouplist/lib/clock"
)

// DefaultMaxRateLimitWait bounds how long one call waits for a rate
// limit window before giving up.
const DefaultMaxRateLimitWait = time.Minute

// rateLimiter follows the X-RateLimit-* headers of the last response.
// An exhausted window is waited out when it resets within maxWait;
// otherwise the call fails at once with a 429 APIError.
type rateLimiter struct {
	mu        sync.Mutex
	remaining int64
	reset     time.Time
	known     bool
	clock     clock.Clock
	maxWait   time.Duration
}

func newRateLimiter(clk clock.Clock, maxWait time.Duration) *rateLimiter {
	if maxWait <= 0 {
		maxWait = DefaultMaxRateLimitWait
	}
	return &rateLimiter{clock: clk, maxWait: maxWait}
}

// observe records the window reported by a response. Responses without
// both headers leave the state alone.
func (limiter *rateLimiter) observe(header http.Header) {
	remaining, ok := headerInt(header, "X-RateLimit-Remaining")
	if !ok {
		return
	}
	reset, ok := headerInt(header, "X-RateLimit-Reset")
	if !ok {
		return
	}
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	limiter.remaining = remaining
	limiter.reset = time.Unix(reset, 0)
	limiter.known = true
}

// admit blocks while the window is exhausted.
func (limiter *rateLimiter) admit(ctx context.Context) error {
	limiter.mu.Lock()
	exhausted := limiter.known && limiter.remaining <= 0
	delay := limiter.reset.Sub(limiter.clock.Now())
	limiter.mu.Unlock()

	if !exhausted || delay <= 0 {
		return nil
	}
	return limiter.sleep(ctx, delay)
}

// backoff returns how long to wait before retrying a rate-limited
// response: Retry-After for secondary limits, else the reset time.
func (limiter *rateLimiter) backoff(header http.Header) time.Duration {
	if seconds, ok := headerInt(header, "Retry-After"); ok && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if reset, ok := headerInt(header, "X-RateLimit-Reset"); ok {
		if delay := time.Unix(reset, 0).Sub(limiter.clock.Now()); delay > 0 {
			return delay
		}
	}
	return 0
}

func (limiter *rateLimiter) sleep(ctx context.Context, delay time.Duration) error {
	if delay > limiter.maxWait {
		return &APIError{
			StatusCode: http.StatusTooManyRequests,
			Message:    fmt.Sprintf("rate limit exhausted for %s, longer than the %s wait limit", delay.Round(time.Second), limiter.maxWait),
		}
	}
	select {
	case <-limiter.clock.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func headerInt(header http.Header, name string) (int64, bool) {
	raw := header.Get(name)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Buffer is a secret held in an anonymous mapping that is mlocked,
// excluded from core dumps, and zeroed on Close. Reads after Close
// panic. A Buffer must not be copied.
type Buffer struct {
	mu     sync.Mutex
	region []byte
	closed bool
}

// New returns a zero-filled buffer of size bytes. The caller must
// Close it.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}
	region, err := lockedRegion(size)
	if err != nil {
		return nil, err
	}
	return &Buffer{region: region}, nil
}

// NewFromBytes copies source into a new buffer and zeros source.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}
	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}
	copy(buffer.region, source)
	Zero(source)
	return buffer, nil
}

// lockedRegion maps size bytes outside the Go heap, locks them into
// RAM and marks them MADV_DONTDUMP.
func lockedRegion(size int) ([]byte, error) {
	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap failed: %w", err)
	}
	if err := unix.Mlock(region); err != nil {
		unix.Munmap(region)
		return nil, fmt.Errorf("secret: mlock failed (check RLIMIT_MEMLOCK): %w", err)
	}
	if err := unix.Madvise(region, unix.MADV_DONTDUMP); err != nil {
		releaseRegion(region)
		return nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP) failed: %w", err)
	}
	return region, nil
}

// releaseRegion zeros, unlocks and unmaps region, returning the first
// failure.
func releaseRegion(region []byte) error {
	Zero(region)
	if err := unix.Munlock(region); err != nil {
		unix.Munmap(region)
		return fmt.Errorf("secret: munlock failed: %w", err)
	}
	if err := unix.Munmap(region); err != nil {
		return fmt.Errorf("secret: munmap failed: %w", err)
	}
	return nil
}

// open returns the live region; the caller holds b.mu.
func (b *Buffer) open() []byte {
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.region
}

// Bytes returns a slice aliasing the locked region. It is invalid after
// Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open()
}

// String returns a heap copy of the secret, for APIs that only take
// strings (HTTP headers). Prefer Bytes.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.open())
}

// Len returns the secret length, or zero after Close.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.region)
}

// Close zeros and releases the region. It is idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	region := b.region
	b.region = nil
	return releaseRegion(region)
}

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"crypto/subtle"
)

// Equal reports whether candidate matches the secret. The comparison
// takes time independent of where the first difference is. A closed
// buffer matches nothing.
func (b *Buffer) Equal(candidate []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}
	return subtle.ConstantTimeCompare(b.region, candidate) == 1
}

// Zero overwrites data with zeros.
func Zero(data []byte) {
	clear(data)
}

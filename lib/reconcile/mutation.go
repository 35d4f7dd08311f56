// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"fmt"

	"github.com/riskful/grouplist/lib/groupid"
)

// Op is a mutation kind.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpReset  Op = "reset"
)

// ParseOp accepts "add", "remove", or "reset".
func ParseOp(name string) (Op, error) {
	switch op := Op(name); op {
	case OpAdd, OpRemove, OpReset:
		return op, nil
	default:
		return "", Errorf(KindBadRequest, "unknown action %q", name)
	}
}

// Mutation is the single change one Apply call makes. ID is ignored for
// OpReset.
type Mutation struct {
	Op Op
	ID groupid.ID
}

// Add returns a mutation inserting id.
func Add(id groupid.ID) Mutation { return Mutation{Op: OpAdd, ID: id} }

// Remove returns a mutation deleting id.
func Remove(id groupid.ID) Mutation { return Mutation{Op: OpRemove, ID: id} }

// Reset returns a mutation replacing the list with the empty set.
func Reset() Mutation { return Mutation{Op: OpReset} }

// Validate checks the mutation before any I/O.
func (m Mutation) Validate() error {
	switch m.Op {
	case OpAdd, OpRemove:
		if !m.ID.Valid() {
			return Errorf(KindBadRequest, "invalid group ID %d", int64(m.ID))
		}
		return nil
	case OpReset:
		return nil
	default:
		return Errorf(KindBadRequest, "unknown action %q", string(m.Op))
	}
}

// message is the commit message recorded for the mutation.
func (m Mutation) message(key string) string {
	switch m.Op {
	case OpAdd:
		return fmt.Sprintf("Add group ID %d", int64(m.ID))
	case OpRemove:
		return fmt.Sprintf("Remove group ID %d", int64(m.ID))
	default:
		return "Reset " + key
	}
}

func (m Mutation) String() string {
	if m.Op == OpReset {
		return string(m.Op)
	}
	return fmt.Sprintf("%s %d", m.Op, int64(m.ID))
}

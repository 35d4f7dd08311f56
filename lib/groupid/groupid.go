// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package groupid

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ID is a group identifier.
type ID int64

// MaxID is the largest accepted identifier (2^53 - 1).
const MaxID ID = 1<<53 - 1

// Valid reports whether id is within (0, MaxID].
func (id ID) Valid() bool {
	return id > 0 && id <= MaxID
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Parse parses a complete decimal token as an ID. Leading and trailing
// whitespace is ignored; anything else that is not a digit, including a
// sign, is an error.
func Parse(token string) (ID, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return 0, fmt.Errorf("empty group ID")
	}
	if strings.TrimLeft(trimmed, "0123456789") != "" {
		return 0, fmt.Errorf("invalid group ID %q", token)
	}
	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid group ID %q", token)
	}
	id := ID(value)
	if !id.Valid() {
		return 0, fmt.Errorf("group ID %d out of range", value)
	}
	return id, nil
}

// ParsePrefix parses the leading run of decimal digits in token, after
// optional whitespace. "123abc" yields 123. Returns false when the token
// has no leading digits or the value is out of range.
func ParsePrefix(token string) (ID, bool) {
	trimmed := strings.TrimLeft(token, " \t")
	end := 0
	for end < len(trimmed) && trimmed[end] >= '0' && trimmed[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	value, err := strconv.ParseInt(trimmed[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	id := ID(value)
	return id, id.Valid()
}

// Set is an ordered, duplicate-free collection of valid IDs. The zero
// value is an empty set.
type Set struct {
	ids []ID
}

// NewSet builds a set from ids, dropping invalid values and duplicates.
func NewSet(ids ...ID) Set {
	kept := make([]ID, 0, len(ids))
	for _, id := range ids {
		if id.Valid() {
			kept = append(kept, id)
		}
	}
	slices.Sort(kept)
	return Set{ids: slices.Compact(kept)}
}

// Len returns the number of IDs in the set.
func (s Set) Len() int {
	return len(s.ids)
}

// Contains reports whether id is a member.
func (s Set) Contains(id ID) bool {
	_, found := slices.BinarySearch(s.ids, id)
	return found
}

// Add returns a set that contains id. The boolean is false when id was
// already present or is invalid, in which case s is returned unchanged.
func (s Set) Add(id ID) (Set, bool) {
	if !id.Valid() {
		return s, false
	}
	index, found := slices.BinarySearch(s.ids, id)
	if found {
		return s, false
	}
	return Set{ids: slices.Insert(slices.Clone(s.ids), index, id)}, true
}

// Remove returns a set without id. The boolean is false when id was not
// a member.
func (s Set) Remove(id ID) (Set, bool) {
	index, found := slices.BinarySearch(s.ids, id)
	if !found {
		return s, false
	}
	return Set{ids: slices.Delete(slices.Clone(s.ids), index, index+1)}, true
}

// IDs returns the members in ascending order. The slice is a copy.
func (s Set) IDs() []ID {
	return slices.Clone(s.ids)
}

// Int64s returns the members as plain integers, ascending. Never nil, so
// that an empty set serializes as [] rather than null.
func (s Set) Int64s() []int64 {
	values := make([]int64, len(s.ids))
	for index, id := range s.ids {
		values[index] = int64(id)
	}
	return values
}

// Equal reports whether both sets have the same members.
func (s Set) Equal(other Set) bool {
	return slices.Equal(s.ids, other.ids)
}

func (s Set) String() string {
	parts := make([]string, len(s.ids))
	for index, id := range s.ids {
		parts[index] = id.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Limits applied while decoding. Stored records are small and flat; a
// corrupt length prefix must not allocate what it claims.
const (
	maxContainerItems = 1 << 16
	maxNesting        = 16
)

var (
	encMode = mustEncMode(cbor.CoreDetEncOptions())
	decMode = mustDecMode(cbor.DecOptions{
		DefaultMapType:   reflect.TypeFor[map[string]any](),
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		IndefLength:      cbor.IndefLengthForbidden,
		TagsMd:           cbor.TagsForbidden,
		MaxArrayElements: maxContainerItems,
		MaxMapPairs:      maxContainerItems,
		MaxNestedLevels:  maxNesting,
	})
)

func mustEncMode(options cbor.EncOptions) cbor.EncMode {
	mode, err := options.EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: encoder options: %v", err))
	}
	return mode
}

func mustDecMode(options cbor.DecOptions) cbor.DecMode {
	mode, err := options.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: decoder options: %v", err))
	}
	return mode
}

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes data into v. Duplicate map keys, indefinite-length
// items and tags are rejected.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Decode is Unmarshal into a fresh T.
func Decode[T any](data []byte) (T, error) {
	var value T
	if err := decMode.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

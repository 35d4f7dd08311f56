// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeJSONNilCollections(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil slice", []int64(nil), "[]"},
		{"nil map", map[string]int(nil), "{}"},
		{"struct", struct{ IDs []int64 }{}, `{
  "IDs": null
}`},
		{"number", 42, "42"},
		{"nil", nil, "null"},
	}
	for _, test := range tests {
		var output bytes.Buffer
		if err := encodeJSON(&output, test.value); err != nil {
			t.Fatalf("%s: encodeJSON: %v", test.name, err)
		}
		if got := strings.TrimSpace(output.String()); got != test.want {
			t.Errorf("%s: encodeJSON = %s, want %s", test.name, got, test.want)
		}
	}
}

func TestEmitJSONWithoutFlag(t *testing.T) {
	var output JSONOutput
	done, err := output.EmitJSON([]string{"x"})
	if done || err != nil {
		t.Errorf("EmitJSON without --json = (%v, %v), want (false, nil)", done, err)
	}
}

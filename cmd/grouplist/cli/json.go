// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"io"
	"os"
	"reflect"
)

// JSONOutput adds --json to a parameter struct by embedding:
//
//	type listParams struct {
//	    cli.JSONOutput
//	    targetParams
//	}
type JSONOutput struct {
	OutputJSON bool `json:"-" flag:"json" desc:"print machine-readable JSON instead of text"`
}

// EmitJSON prints result as JSON when --json is set and reports
// whether it did. Callers fall through to text output on false.
func (j *JSONOutput) EmitJSON(result any) (bool, error) {
	if !j.OutputJSON {
		return false, nil
	}
	return true, WriteJSON(result)
}

// WriteJSON prints value to stdout as indented JSON.
func WriteJSON(value any) error {
	return encodeJSON(os.Stdout, value)
}

// encodeJSON writes value with nil slices and maps at the top level
// rendered as [] and {} rather than null.
func encodeJSON(output io.Writer, value any) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(emptyForNil(value))
}

func emptyForNil(value any) any {
	reflected := reflect.ValueOf(value)
	switch {
	case reflected.Kind() == reflect.Slice && reflected.IsNil():
		return reflect.MakeSlice(reflected.Type(), 0, 0).Interface()
	case reflected.Kind() == reflect.Map && reflected.IsNil():
		return reflect.MakeMap(reflected.Type()).Interface()
	}
	return value
}

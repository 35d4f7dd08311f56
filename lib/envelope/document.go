// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/riskful/grouplist/lib/groupid"
)

// groupsField is the object member that holds the ID array.
const groupsField = "groups"

// decodeDocument parses text as JSONC. Comments and trailing commas are
// accepted since these files are edited by hand. Returns false when the
// text is not a JSON array or object.
func decodeDocument(text []byte) (Decoded, bool) {
	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 || (trimmed[0] != '[' && trimmed[0] != '{') {
		return Decoded{}, false
	}
	stripped := jsonc.ToJSON(trimmed)

	if stripped[0] == '[' {
		var elements []json.RawMessage
		if err := json.Unmarshal(stripped, &elements); err != nil {
			return Decoded{}, false
		}
		return Decoded{
			Set:      groupid.NewSet(coerceElements(elements)...),
			Outcome:  Document,
			Envelope: Envelope{Format: FormatDocument},
		}, true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(stripped, &fields); err != nil {
		return Decoded{}, false
	}
	var elements []json.RawMessage
	if raw, ok := fields[groupsField]; ok {
		// A non-array "groups" member counts as no IDs.
		_ = json.Unmarshal(raw, &elements)
	}
	return Decoded{
		Set:      groupid.NewSet(coerceElements(elements)...),
		Outcome:  Document,
		Envelope: Envelope{Format: FormatDocument, fields: fields},
	}, true
}

// coerceElements converts array elements into IDs. Integral numbers and
// strings with a leading decimal number are accepted; everything else is
// dropped.
func coerceElements(elements []json.RawMessage) []groupid.ID {
	ids := make([]groupid.ID, 0, len(elements))
	for _, element := range elements {
		if id, ok := coerceElement(element); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func coerceElement(element json.RawMessage) (groupid.ID, bool) {
	var text string
	if err := json.Unmarshal(element, &text); err == nil {
		return groupid.ParsePrefix(strings.TrimSpace(text))
	}

	var number json.Number
	decoder := json.NewDecoder(bytes.NewReader(element))
	decoder.UseNumber()
	if err := decoder.Decode(&number); err != nil {
		return 0, false
	}
	if value, err := number.Int64(); err == nil {
		id := groupid.ID(value)
		return id, id.Valid()
	}
	value, err := number.Float64()
	if err != nil || value != math.Trunc(value) || value > float64(groupid.MaxID) {
		return 0, false
	}
	id := groupid.ID(value)
	return id, id.Valid()
}

// encodeDocument writes the same top-level shape that was decoded. The
// output is indented with two spaces and ends with a newline.
func encodeDocument(set groupid.Set, envelope Envelope) []byte {
	var value any = set.Int64s()
	if envelope.fields != nil {
		fields := make(map[string]any, len(envelope.fields)+1)
		for name, raw := range envelope.fields {
			fields[name] = raw
		}
		fields[groupsField] = set.Int64s()
		value = fields
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		// Only IDs and previously valid raw JSON are marshaled.
		panic("envelope: encoding document: " + err.Error())
	}
	return append(data, '\n')
}

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"strings"

	"github.com/riskful/grouplist/lib/groupid"
)

const (
	// OpenMarker starts the data region.
	OpenMarker = `<pre id="raw-data">`

	// CloseMarker ends the data region. Only the first occurrence after
	// OpenMarker counts.
	CloseMarker = `</pre>`
)

const (
	templatePrefix = "<!-- Raw data for the script, hidden from browser view -->\n"
	templateSuffix = "\n</body>\n</html>"
)

// Template is the artifact written for an empty set when no prior
// envelope exists.
const Template = templatePrefix + OpenMarker + "\n" + CloseMarker + templateSuffix

// decodeDelimited locates the marker pair and parses the region between
// them. Returns false when either marker is missing.
func decodeDelimited(text string) (Decoded, bool) {
	start := strings.Index(text, OpenMarker)
	if start < 0 {
		return Decoded{}, false
	}
	regionStart := start + len(OpenMarker)
	length := strings.Index(text[regionStart:], CloseMarker)
	if length < 0 {
		return Decoded{}, false
	}
	regionEnd := regionStart + length

	var ids []groupid.ID
	for _, line := range strings.Split(text[regionStart:regionEnd], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if id, ok := groupid.ParsePrefix(line); ok {
			ids = append(ids, id)
		}
	}

	return Decoded{
		Set:     groupid.NewSet(ids...),
		Outcome: WellFormed,
		Envelope: Envelope{
			Format: FormatDelimited,
			Prefix: text[:start],
			Suffix: text[regionEnd+len(CloseMarker):],
		},
	}, true
}

// encodeDelimited writes the region as a newline after the opening
// marker followed by the IDs joined with newlines, with no newline
// before the closing marker. An empty set leaves only the leading
// newline.
func encodeDelimited(set groupid.Set, envelope Envelope) []byte {
	var builder strings.Builder
	builder.WriteString(envelope.Prefix)
	builder.WriteString(OpenMarker)
	builder.WriteByte('\n')
	for index, id := range set.IDs() {
		if index > 0 {
			builder.WriteByte('\n')
		}
		builder.WriteString(id.String())
	}
	builder.WriteString(CloseMarker)
	builder.WriteString(envelope.Suffix)
	return []byte(builder.String())
}

// dataRegion returns the text between the markers of a delimited
// artifact, excluding the newline that follows the opening marker.
// Returns false when the markers are not found.
func dataRegion(text []byte) (string, bool) {
	decoded, ok := decodeDelimited(string(text))
	if !ok {
		return "", false
	}
	region := string(text)[len(decoded.Envelope.Prefix)+len(OpenMarker) : len(text)-len(decoded.Envelope.Suffix)-len(CloseMarker)]
	return strings.TrimPrefix(region, "\n"), true
}

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"strings"

	"github.com/riskful/grouplist/lib/groupid"
)

// repair recovers IDs from text with no recognizable envelope. Only
// lines consisting entirely of decimal digits (after trimming) are
// kept; this is stricter than the delimited path, which accepts a
// leading number followed by other characters. The returned envelope
// has FormatNone, so encoding re-establishes a well-formed artifact.
func repair(text string) Decoded {
	var ids []groupid.ID
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !isDigits(line) {
			continue
		}
		if id, err := groupid.Parse(line); err == nil {
			ids = append(ids, id)
		}
	}
	return Decoded{
		Set:     groupid.NewSet(ids...),
		Outcome: Repaired,
	}
}

func isDigits(line string) bool {
	if line == "" {
		return false
	}
	for index := 0; index < len(line); index++ {
		if line[index] < '0' || line[index] > '9' {
			return false
		}
	}
	return true
}

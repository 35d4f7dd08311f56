// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/riskful/grouplist/lib/groupid"
)

// Format identifies the envelope shape of an artifact.
type Format int

const (
	// FormatNone means no usable envelope was found. Encoding with it
	// synthesizes a delimited envelope from [Template].
	FormatNone Format = iota

	// FormatDelimited is text with an [OpenMarker]/[CloseMarker] pair.
	FormatDelimited

	// FormatDocument is a JSON array or {"groups": [...]} object.
	FormatDocument
)

func (f Format) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatDelimited:
		return "delimited"
	case FormatDocument:
		return "document"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// ParseFormat maps a configuration name to a Format. "html" and
// "delimited" select FormatDelimited; "json" and "document" select
// FormatDocument.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "html", "delimited", "":
		return FormatDelimited, nil
	case "json", "document":
		return FormatDocument, nil
	default:
		return FormatNone, fmt.Errorf("unknown envelope format %q (want html or json)", name)
	}
}

// Outcome reports how [Decode] obtained the identifier set.
type Outcome int

const (
	// WellFormed: a delimited region was found and parsed.
	WellFormed Outcome = iota

	// Document: the artifact parsed as a structured document.
	Document

	// Repaired: no envelope was found; IDs were recovered from stray
	// digit-only lines.
	Repaired

	// Empty: the artifact had no content at all.
	Empty
)

func (o Outcome) String() string {
	switch o {
	case WellFormed:
		return "well_formed"
	case Document:
		return "document"
	case Repaired:
		return "repaired"
	case Empty:
		return "empty"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// Envelope is the parsed wrapper around an artifact's data region.
// Only the data region changes on [Encode]; prefix, suffix and any
// other document fields are carried through unchanged.
type Envelope struct {
	Format Format

	// Prefix and Suffix are the text before the opening marker and
	// after the closing marker. FormatDelimited only.
	Prefix string
	Suffix string

	// fields holds the top-level object members of a document
	// envelope. Nil when the document's top level is an array.
	fields map[string]json.RawMessage
}

// New returns an empty envelope of the given format, used when there is
// no prior artifact to preserve. FormatDelimited yields [Template];
// FormatDocument yields a bare JSON array.
func New(format Format) Envelope {
	switch format {
	case FormatDocument:
		return Envelope{Format: FormatDocument}
	default:
		return Envelope{Format: FormatDelimited, Prefix: templatePrefix, Suffix: templateSuffix}
	}
}

// Decoded is the result of [Decode].
type Decoded struct {
	Set      groupid.Set
	Outcome  Outcome
	Envelope Envelope
}

// utf8BOM is dropped from the front of artifact text before decoding.
var utf8BOM = []byte("\xef\xbb\xbf")

// Decode extracts the identifier set from artifact text. It tries the
// delimited envelope first, then the structured document, then repair.
// A leading UTF-8 byte order mark is ignored and not re-encoded.
func Decode(text []byte) Decoded {
	text = bytes.TrimPrefix(text, utf8BOM)
	if len(bytes.TrimSpace(text)) == 0 {
		return Decoded{Outcome: Empty}
	}
	if decoded, ok := decodeDelimited(string(text)); ok {
		return decoded
	}
	if decoded, ok := decodeDocument(text); ok {
		return decoded
	}
	return repair(string(text))
}

// Encode serializes set into envelope. An envelope with FormatNone is
// replaced by the delimited template.
func Encode(set groupid.Set, envelope Envelope) []byte {
	switch envelope.Format {
	case FormatDocument:
		return encodeDocument(set, envelope)
	case FormatDelimited:
		return encodeDelimited(set, envelope)
	default:
		return encodeDelimited(set, New(FormatDelimited))
	}
}

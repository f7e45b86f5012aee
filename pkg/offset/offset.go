// Package offset converts positions between byte space and codepoint space.
//
// Containers store positions in one of two units: MOBI/AZW3 HTML and EPUB
// parts are addressed in bytes, KFX content blocks in codepoints. Text
// processing in Go works on byte indices into strings, so every match found
// inside a segment has to be translated into the unit of the segment it came
// from. The translation is done per match because the text preceding a match
// may contain multi-byte sequences.
package offset

import "unicode/utf8"

// Unit is the unit a segment offset is expressed in.
type Unit uint8

const (
	// Byte offsets index the raw container buffer.
	Byte Unit = iota
	// Codepoint offsets count Unicode scalar values.
	Codepoint
)

func (u Unit) String() string {
	switch u {
	case Byte:
		return "byte"
	case Codepoint:
		return "codepoint"
	default:
		return "unknown"
	}
}

// CodepointToByte returns anchor plus the byte length of the first cp
// codepoints of text. Offsets past the end of text are clamped to len(text).
func CodepointToByte(text string, anchor, cp int) int {
	if cp <= 0 {
		return anchor
	}
	n := 0
	for i := range text {
		if n == cp {
			return anchor + i
		}
		n++
	}
	return anchor + len(text)
}

// ByteToCodepoint returns anchor plus the number of codepoints in text[:b].
// A b that falls inside a multi-byte sequence counts the partial sequence as
// one codepoint, matching how Go ranges over invalid UTF-8.
func ByteToCodepoint(text string, anchor, b int) int {
	if b <= 0 {
		return anchor
	}
	if b > len(text) {
		b = len(text)
	}
	return anchor + utf8.RuneCountInString(text[:b])
}

// Absolute converts byteIndex, a byte index into the decoded text of a
// segment anchored at anchor, into an absolute offset in unit.
func Absolute(unit Unit, text string, anchor, byteIndex int) int {
	if unit == Codepoint {
		return ByteToCodepoint(text, anchor, byteIndex)
	}
	return anchor + byteIndex
}

// Span converts a [start, end) byte range inside text into absolute offsets.
func Span(unit Unit, text string, anchor, start, end int) (int, int) {
	s := Absolute(unit, text, anchor, start)
	if unit == Codepoint {
		return s, s + utf8.RuneCountInString(text[start:end])
	}
	return s, anchor + end
}

// Package segment turns book containers into ordered runs of positioned text.
//
// A Segment carries the raw bytes found between two tags together with the
// offset of its first content byte (or codepoint, for KFX) in the container.
// Decoding is left to the consumer so byte offsets stay valid: Text is a pure
// function and never alters the segment.
package segment

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/japaniel/wordray/pkg/offset"
)

// Segment is a positioned run of text.
type Segment struct {
	// Start is the offset of the first content byte or codepoint.
	Start int
	// Raw holds the undecoded content. It must not be modified.
	Raw []byte
	// Unit is the unit of Start.
	Unit offset.Unit
	// Part identifies the document part for formats split into many files.
	Part string
}

// Text decodes the segment. Invalid UTF-8 is kept byte for byte so indices
// into the result are valid byte offsets into Raw.
func (s Segment) Text() string { return string(s.Raw) }

// Absolute converts a byte index into Text() to an offset in the unit of s.
func (s Segment) Absolute(byteIndex int) int {
	return offset.Absolute(s.Unit, s.Text(), s.Start, byteIndex)
}

// Format is the closed set of supported containers.
type Format string

const (
	KFX  Format = "KFX"
	AZW3 Format = "AZW3"
	AZW  Format = "AZW"
	MOBI Format = "MOBI"
	EPUB Format = "EPUB"
)

// ParseFormat maps a format tag to a Format, case-insensitively.
func ParseFormat(tag string) (Format, error) {
	switch f := Format(strings.ToUpper(strings.TrimSpace(tag))); f {
	case KFX, AZW3, AZW, MOBI, EPUB:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, tag)
	}
}

// IsKindle reports whether annotations for f go to Kindle sidecar stores
// rather than into the document itself.
func (f Format) IsKindle() bool { return f != EPUB }

// Source yields the segments of one book. Segments may be ranged over any
// number of times.
type Source interface {
	Segments() iter.Seq[Segment]
}

// sliceSource holds segments parsed up front from an in-memory buffer.
type sliceSource []Segment

func (s sliceSource) Segments() iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		for _, seg := range s {
			if !yield(seg) {
				return
			}
		}
	}
}

// Each pattern matches one run of text between a '>' and the next '<'.
// MOBI excludes '>' from the run; EPUB bodies only exclude '<'.
var (
	mobiBetweenTags = regexp.MustCompile(`>[^<>]+<`)
	epubBetweenTags = regexp.MustCompile(`>[^<]+<`)
)

// scan emits one segment per tag-delimited run in buf. base is added to
// every start offset.
func scan(re *regexp.Regexp, buf []byte, base int, part string) []Segment {
	var out []Segment
	for _, m := range re.FindAllIndex(buf, -1) {
		out = append(out, Segment{
			Start: base + m[0] + 1,
			Raw:   buf[m[0]+1 : m[1]-1],
			Unit:  offset.Byte,
			Part:  part,
		})
	}
	return out
}

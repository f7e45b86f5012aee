// Package annotate rewrites EPUB content documents: it wraps entity
// mentions in footnote references, dictionary matches in ruby glosses, and
// adds an X-Ray footnote page to the package.
package annotate

import (
	"cmp"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/japaniel/wordray/pkg/dictionary"
	"github.com/japaniel/wordray/pkg/entity"
	"github.com/japaniel/wordray/pkg/segment"
)

// Mark wraps body[Start:End] in Open and Close.
type Mark struct {
	Start, End  int
	Open, Close string
}

// Splice inserts marks into body in a single left-to-right pass. Offsets
// refer to the unmodified body. Marks are applied in ascending Start order,
// stable for equal starts; a mark overlapping one already applied, or out
// of range, is dropped.
func Splice(body string, marks []Mark) string {
	if len(marks) == 0 {
		return body
	}
	sorted := slices.Clone(marks)
	slices.SortStableFunc(sorted, func(a, b Mark) int { return cmp.Compare(a.Start, b.Start) })

	var sb strings.Builder
	sb.Grow(len(body) + len(sorted)*32)
	last := 0
	for _, m := range sorted {
		if m.Start < last || m.End < m.Start || m.End > len(body) {
			continue
		}
		sb.WriteString(body[last:m.Start])
		sb.WriteString(m.Open)
		sb.WriteString(body[m.Start:m.End])
		sb.WriteString(m.Close)
		last = m.End
	}
	sb.WriteString(body[last:])
	return sb.String()
}

// FootnotePage is the href, relative to the content documents, of the
// generated footnote page.
const FootnotePage = "x_ray.xhtml"

// NoteRefs returns one footnote reference per occurrence.
func NoteRefs(occs []entity.Occurrence) []Mark {
	marks := make([]Mark, 0, len(occs))
	for _, o := range occs {
		marks = append(marks, Mark{
			Start: o.Start,
			End:   o.End,
			Open:  fmt.Sprintf(`<a epub:type="noteref" href="%s#%d">`, FootnotePage, o.EntityID),
			Close: "</a>",
		})
	}
	return marks
}

// Gloss is a dictionary match located in a part body.
type Gloss struct {
	Start, End int
	Short      string
}

// Glosses converts the matches found in seg's text into body offsets.
func Glosses(seg segment.Segment, matches []dictionary.Match) []Gloss {
	out := make([]Gloss, 0, len(matches))
	for _, m := range matches {
		out = append(out, Gloss{
			Start: seg.Absolute(m.Start),
			End:   seg.Absolute(m.End),
			Short: m.Gloss.Short,
		})
	}
	return out
}

// Rubies returns one ruby annotation per gloss.
func Rubies(glosses []Gloss) []Mark {
	marks := make([]Mark, 0, len(glosses))
	for _, g := range glosses {
		if g.Short == "" {
			continue
		}
		marks = append(marks, Mark{
			Start: g.Start,
			End:   g.End,
			Open:  "<ruby>",
			Close: "<rt>" + html.EscapeString(g.Short) + "</rt></ruby>",
		})
	}
	return marks
}

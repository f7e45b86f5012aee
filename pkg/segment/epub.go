package segment

import (
	"errors"
	"fmt"
	"iter"

	"github.com/japaniel/wordray/pkg/epub"
)

// OpenEPUB extracts the archive into a working copy. The caller owns the
// returned book and must Close it.
func OpenEPUB(path string) (*epub.Book, error) {
	b, err := epub.Open(path)
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, epub.ErrDRMProtected):
		return nil, bookError(path, fmt.Errorf("%w: %v", ErrDRMProtected, err))
	default:
		return nil, bookError(path, fmt.Errorf("%w: %v", ErrCorruptContainer, err))
	}
}

type epubSource struct{ book *epub.Book }

// FromEPUB returns the segments of every part's body. Offsets are byte
// offsets relative to the start of the part's <body> element and restart at
// zero for each part.
func FromEPUB(b *epub.Book) Source { return epubSource{book: b} }

func (s epubSource) Segments() iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		for _, p := range s.book.Parts() {
			for _, seg := range scan(epubBetweenTags, []byte(p.Body()), 0, p.Href) {
				if !yield(seg) {
					return
				}
			}
		}
	}
}

package segment

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for a format tag outside the closed set.
	ErrUnsupportedFormat = errors.New("segment: unsupported format")

	// ErrJointMOBI is returned for dual-format MOBI files carrying both a
	// MOBI6 and a KF8 section.
	ErrJointMOBI = errors.New("segment: joint MOBI files are not supported")

	// ErrDRMProtected is returned for encrypted books.
	ErrDRMProtected = errors.New("segment: book is DRM protected")

	// ErrCorruptContainer is returned when the container cannot be decoded.
	ErrCorruptContainer = errors.New("segment: corrupt container")
)

// BookError reports a container-level failure for one book.
type BookError struct {
	Book string
	Err  error
}

func (e *BookError) Error() string { return fmt.Sprintf("book %s: %v", e.Book, e.Err) }

func (e *BookError) Unwrap() error { return e.Err }

func bookError(book string, err error) error {
	return &BookError{Book: book, Err: err}
}

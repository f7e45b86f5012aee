package segment

import (
	"fmt"
	"os"
)

// KF8Variant distinguishes plain MOBI6 files from KF8 ones.
type KF8Variant string

const (
	VariantMOBI6      KF8Variant = ""
	VariantStandalone KF8Variant = "standalone"
	VariantJoint      KF8Variant = "joint"
)

// MOBIContent is the decoded text layer of a MOBI/AZW3 book.
type MOBIContent struct {
	// HTML is the concatenated markup; segment offsets index into it.
	HTML      []byte
	Variant   KF8Variant
	Encrypted bool
}

// MOBIDecoder decodes a MOBI family container into its HTML text layer.
type MOBIDecoder interface {
	Decode(path string) (MOBIContent, error)
}

// HTMLFileDecoder treats path as an already decoded HTML text layer.
type HTMLFileDecoder struct{}

func (HTMLFileDecoder) Decode(path string) (MOBIContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MOBIContent{}, err
	}
	return MOBIContent{HTML: data}, nil
}

// OpenMOBI decodes the book and scans its HTML for runs of text between tags.
func OpenMOBI(path string, dec MOBIDecoder) (Source, error) {
	if dec == nil {
		dec = HTMLFileDecoder{}
	}
	content, err := dec.Decode(path)
	if err != nil {
		return nil, bookError(path, fmt.Errorf("%w: %v", ErrCorruptContainer, err))
	}
	return FromMOBI(path, content)
}

// FromMOBI validates decoded content and scans it.
func FromMOBI(book string, content MOBIContent) (Source, error) {
	switch {
	case content.Variant == VariantJoint:
		return nil, bookError(book, ErrJointMOBI)
	case content.Encrypted:
		return nil, bookError(book, ErrDRMProtected)
	}
	return sliceSource(scan(mobiBetweenTags, content.HTML, 0, "")), nil
}

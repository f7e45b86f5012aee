package epub

import "errors"

var (
	// ErrInvalidEPub indicates the archive is missing container.xml, the OPF,
	// or a manifest entry it references.
	ErrInvalidEPub = errors.New("epub: invalid ePub file")

	// ErrDRMProtected indicates the archive carries a DRM encryption descriptor.
	ErrDRMProtected = errors.New("epub: file is DRM protected")

	// ErrUnsafePath is returned for archive entries escaping the archive root.
	ErrUnsafePath = errors.New("epub: unsafe archive path")
)

// Package epub manages an extracted working copy of an EPUB archive.
//
// Open unpacks the archive into a temporary directory and loads every XHTML
// content document listed in the manifest. Callers read and rewrite parts in
// the working copy, then Package writes a new archive. The original file is
// never modified, and Close discards the working copy.
package epub

import (
	"archive/zip"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Namespace URIs used inside content documents.
const (
	NamespaceXHTML = "http://www.w3.org/1999/xhtml"
	NamespaceOPS   = "http://www.idpf.org/2007/ops"
)

const xhtmlMediaType = "application/xhtml+xml"

// Part is one XHTML content document of the book.
type Part struct {
	// Href is the manifest href, relative to the OPF directory.
	Href string
	// Path is the file location inside the working copy.
	Path string
	// Content is the full document as read from the working copy.
	Content string
	// BodyStart and BodyEnd delimit "<body...</body>" inside Content.
	BodyStart, BodyEnd int
}

// Body returns the <body> element of the part, tags included.
func (p *Part) Body() string { return p.Content[p.BodyStart:p.BodyEnd] }

// Book is an extracted EPUB working copy.
type Book struct {
	// Source is the path of the original archive.
	Source string
	// Dir is the root of the working copy.
	Dir string
	// OPFPath is the absolute path of the package document.
	OPFPath string

	manifest []ManifestItem
	parts    []*Part
}

// Open extracts the EPUB at src into a fresh temporary directory and loads
// its content documents. Any failure removes the working copy.
func Open(src string) (*Book, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("epub: open %s: %w", src, err)
	}
	defer zr.Close()

	if err := checkDRM(&zr.Reader); err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "wordray-epub-")
	if err != nil {
		return nil, err
	}
	b := &Book{Source: src, Dir: dir}
	if err := b.load(&zr.Reader); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return b, nil
}

func (b *Book) load(zr *zip.Reader) error {
	if err := extractAll(zr, b.Dir); err != nil {
		return err
	}
	data, err := os.ReadFile(filepath.Join(b.Dir, filepath.FromSlash(containerPath)))
	if err != nil {
		return fmt.Errorf("epub: read container.xml: %w", errors.Join(ErrInvalidEPub, err))
	}
	opfRel, err := parseContainer(data)
	if err != nil {
		return err
	}
	if !isSafePath(opfRel) {
		return fmt.Errorf("%w: %s", ErrUnsafePath, opfRel)
	}
	b.OPFPath = filepath.Join(b.Dir, filepath.FromSlash(opfRel))
	opfData, err := os.ReadFile(b.OPFPath)
	if err != nil {
		return fmt.Errorf("epub: read OPF %s: %w", opfRel, errors.Join(ErrInvalidEPub, err))
	}
	pkg, err := parseOPF(opfData)
	if err != nil {
		return err
	}
	b.manifest = pkg.Manifest.Items

	for _, item := range b.manifest {
		if item.MediaType != xhtmlMediaType || item.IsNav() {
			continue
		}
		p, err := b.loadPart(item.Href)
		if err != nil {
			return err
		}
		b.parts = append(b.parts, p)
	}
	return nil
}

func (b *Book) loadPart(href string) (*Part, error) {
	p := b.Resolve(href)
	if p == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsafePath, href)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("epub: manifest item %s: %w", href, errors.Join(ErrInvalidEPub, err))
	}
	content := string(data)
	start := strings.Index(content, "<body")
	end := strings.Index(content, "</body>")
	if start < 0 || end < start {
		return nil, fmt.Errorf("epub: %s has no <body> element: %w", href, ErrInvalidEPub)
	}
	return &Part{
		Href:      href,
		Path:      p,
		Content:   content,
		BodyStart: start,
		BodyEnd:   end + len("</body>"),
	}, nil
}

// Resolve maps a manifest href to a path inside the working copy. It returns
// "" when href would escape the archive root.
func (b *Book) Resolve(href string) string {
	rel := path.Join(b.opfDir(), href)
	if !isSafePath(rel) {
		return ""
	}
	return filepath.Join(b.Dir, filepath.FromSlash(rel))
}

func (b *Book) opfDir() string {
	rel, err := filepath.Rel(b.Dir, b.OPFPath)
	if err != nil {
		return "."
	}
	return path.Dir(filepath.ToSlash(rel))
}

// Parts returns the content documents in manifest order.
func (b *Book) Parts() []*Part { return b.parts }

// Manifest returns the manifest items of the package document.
func (b *Book) Manifest() []ManifestItem { return b.manifest }

// HrefDir returns the directory, relative to the OPF, holding the first
// manifest item whose media type starts with prefix. It returns "" when such
// items live next to the OPF or there are none.
func (b *Book) HrefDir(mediaTypePrefix string) string {
	for _, item := range b.manifest {
		if !strings.HasPrefix(item.MediaType, mediaTypePrefix) || item.IsNav() {
			continue
		}
		if dir := path.Dir(item.Href); dir != "." {
			return dir
		}
		return ""
	}
	return ""
}

// WritePart replaces the content of p in the working copy.
func (b *Book) WritePart(p *Part, content string) error {
	if err := os.WriteFile(p.Path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("epub: write %s: %w", p.Href, err)
	}
	p.Content = content
	start := strings.Index(content, "<body")
	end := strings.Index(content, "</body>")
	if start >= 0 && end >= start {
		p.BodyStart, p.BodyEnd = start, end+len("</body>")
	}
	return nil
}

// WriteFile writes data to href, relative to the OPF directory, creating
// directories as needed.
func (b *Book) WriteFile(href string, data []byte) error {
	p := b.Resolve(href)
	if p == "" {
		return fmt.Errorf("%w: %s", ErrUnsafePath, href)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// OutputPath is the derived name of the annotated archive.
func (b *Book) OutputPath(suffix string) string {
	ext := filepath.Ext(b.Source)
	return strings.TrimSuffix(b.Source, ext) + suffix + ext
}

// Package writes the working copy to dest.
func (b *Book) Package(dest string) error {
	if err := zipDir(b.Dir, dest); err != nil {
		return fmt.Errorf("epub: package %s: %w", dest, err)
	}
	return nil
}

// Close removes the working copy. It is safe to call more than once.
func (b *Book) Close() error {
	if b.Dir == "" {
		return nil
	}
	err := os.RemoveAll(b.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		err = nil
	}
	b.Dir = ""
	return err
}

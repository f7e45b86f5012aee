package epub

import (
	"encoding/xml"
	"fmt"
	"html"
	"os"
	"path"
	"regexp"
	"strings"
)

// containerPath is the well-known location of container.xml.
const containerPath = "META-INF/container.xml"

type containerXML struct {
	XMLName   xml.Name `xml:"container"`
	RootFiles []struct {
		FullPath  string `xml:"full-path,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"rootfiles>rootfile"`
}

// opfPackage holds the parts of the OPF the annotator needs. The OPF itself
// is never re-serialized; edits are spliced into the original bytes.
type opfPackage struct {
	XMLName  xml.Name `xml:"package"`
	Manifest struct {
		Items []ManifestItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

// ManifestItem is one <item> of the OPF manifest.
type ManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

// IsNav reports whether the item is the EPUB 3 navigation document.
func (m ManifestItem) IsNav() bool {
	for _, p := range strings.Fields(m.Properties) {
		if p == "nav" {
			return true
		}
	}
	return false
}

func parseContainer(data []byte) (string, error) {
	var c containerXML
	if err := xml.Unmarshal(stripBOM(data), &c); err != nil {
		return "", fmt.Errorf("epub: parse container.xml: %w", err)
	}
	var fallback string
	for _, rf := range c.RootFiles {
		p := strings.TrimSpace(rf.FullPath)
		if p == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rf.MediaType), "application/oebps-package+xml") {
			return p, nil
		}
		if fallback == "" {
			fallback = p
		}
	}
	if fallback == "" {
		return "", fmt.Errorf("epub: container.xml has no rootfile: %w", ErrInvalidEPub)
	}
	return fallback, nil
}

func parseOPF(data []byte) (*opfPackage, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(stripBOM(data), &pkg); err != nil {
		return nil, fmt.Errorf("epub: parse OPF: %w", err)
	}
	return &pkg, nil
}

var (
	manifestEnd = regexp.MustCompile(`</(?:[\w-]+:)?manifest\s*>`)
	spineEnd    = regexp.MustCompile(`</(?:[\w-]+:)?spine\s*>`)
)

// AddItems appends items to the manifest and, for each id in spine, an
// itemref to the spine. The package document is edited in place by
// splicing before the closing tags; everything else is kept byte for byte.
func (b *Book) AddItems(items []ManifestItem, spine ...string) error {
	data, err := os.ReadFile(b.OPFPath)
	if err != nil {
		return fmt.Errorf("epub: read OPF: %w", err)
	}
	opf := string(data)

	var sb strings.Builder
	for _, it := range items {
		fmt.Fprintf(&sb, `<item href="%s" id="%s" media-type="%s"`,
			html.EscapeString(it.Href), html.EscapeString(it.ID), html.EscapeString(it.MediaType))
		if it.Properties != "" {
			fmt.Fprintf(&sb, ` properties="%s"`, html.EscapeString(it.Properties))
		}
		sb.WriteString("/>\n")
	}
	if opf, err = spliceBefore(opf, manifestEnd, sb.String()); err != nil {
		return err
	}

	sb.Reset()
	for _, id := range spine {
		fmt.Fprintf(&sb, "<itemref idref=\"%s\"/>\n", html.EscapeString(id))
	}
	if opf, err = spliceBefore(opf, spineEnd, sb.String()); err != nil {
		return err
	}

	if err := os.WriteFile(b.OPFPath, []byte(opf), 0o644); err != nil {
		return fmt.Errorf("epub: write OPF: %w", err)
	}
	b.manifest = append(b.manifest, items...)
	return nil
}

func spliceBefore(s string, closing *regexp.Regexp, insert string) (string, error) {
	if insert == "" {
		return s, nil
	}
	loc := closing.FindStringIndex(s)
	if loc == nil {
		return "", fmt.Errorf("epub: OPF has no %s: %w", closing, ErrInvalidEPub)
	}
	return s[:loc[0]] + insert + s[loc[0]:], nil
}

// MediaTypeFor returns the image media type for a file name, or "" when
// the extension is not one EPUB readers display.
func MediaTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return ""
}

package annotate

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/japaniel/wordray/pkg/entity"
	"github.com/japaniel/wordray/pkg/epub"
	"github.com/japaniel/wordray/pkg/knowledge"
)

// Places is the structured source consulted for place-like entities.
type Places interface {
	Query(ctx context.Context, itemIDs []string) error
	GetCache(itemID string) (knowledge.Place, bool)
	SaveCache() error
	ItemLink(itemID string) string
}

// Images downloads media files to local paths.
type Images interface {
	GetImage(ctx context.Context, filename string) (string, error)
}

// footnoteImage is a map image referenced by the footnote page.
type footnoteImage struct {
	Filename string
	Local    string
}

func elem(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node { return &html.Node{Type: html.TextNode, Data: s} }

func appendAll(parent *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		parent.AppendChild(c)
	}
	return parent
}

// footnotes builds the footnote page. imagePrefix is prepended to image
// file names in src attributes.
type footnotes struct {
	searchPeople bool
	lookup       knowledge.Lookup
	places       Places
	images       Images
	imagePrefix  string
	logger       *slog.Logger

	body   *html.Node
	doc    *html.Node
	Images []footnoteImage
}

func newFootnotes() *footnotes {
	f := &footnotes{doc: &html.Node{Type: html.DocumentNode}, logger: slog.Default()}
	root := elem(atom.Html,
		"xmlns", "http://www.w3.org/1999/xhtml",
		"xmlns:epub", "http://www.idpf.org/2007/ops",
		"lang", "en-US",
		"xml:lang", "en-US")
	head := appendAll(elem(atom.Head),
		appendAll(elem(atom.Title), text("X-Ray")),
		elem(atom.Meta, "charset", "utf-8"))
	f.body = elem(atom.Body)
	appendAll(root, head, f.body)
	f.doc.AppendChild(root)
	return f
}

// describable reports whether e is looked up in the knowledge source.
func (f *footnotes) describable(e entity.Entity) bool {
	return f.lookup != nil && (f.searchPeople || !entity.IsPerson(e.Label))
}

func (f *footnotes) add(ctx context.Context, e entity.Entity) {
	aside := elem(atom.Aside, "id", strconv.Itoa(e.ID), "epub:type", "footnote")
	f.body.AppendChild(aside)

	intro, ok := knowledge.Intro{}, false
	if f.describable(e) {
		intro, ok = f.lookup.GetCache(e.Key)
	}
	if !ok {
		aside.AppendChild(text(e.Quote))
		return
	}
	appendAll(aside,
		text(intro.Intro+" "),
		appendAll(elem(atom.A, "href", f.lookup.SourceLink()+url.PathEscape(e.Key)), text(f.lookup.SourceName())))

	if f.places == nil || intro.ItemID == "" {
		return
	}
	place, ok := f.places.GetCache(intro.ItemID)
	if !ok {
		return
	}
	if regime, ok := knowledge.ParseRegimeType(place.DemocracyIndex); ok {
		aside.AppendChild(appendAll(elem(atom.P), text(regime)))
	}
	if img, ok := f.image(ctx, place.MapFilename); ok {
		aside.AppendChild(elem(atom.Img, "style", "max-width:100%", "src", f.imagePrefix+img.Filename, "alt", e.Key))
	}
	aside.AppendChild(appendAll(elem(atom.A, "href", f.places.ItemLink(intro.ItemID)), text("Wikidata")))
}

// image downloads a locator map once per page. Failures drop the image.
func (f *footnotes) image(ctx context.Context, filename string) (footnoteImage, bool) {
	if filename == "" || f.images == nil {
		return footnoteImage{}, false
	}
	name := knowledge.ImageFilename(filename)
	if epub.MediaTypeFor(name) == "" {
		return footnoteImage{}, false
	}
	for _, img := range f.Images {
		if img.Filename == name {
			return img, true
		}
	}
	local, err := f.images.GetImage(ctx, filename)
	if err != nil {
		f.logger.Warn("locator map download failed", "file", filename, "error", err)
		return footnoteImage{}, false
	}
	img := footnoteImage{Filename: name, Local: local}
	f.Images = append(f.Images, img)
	return img, true
}

func (f *footnotes) render(w io.Writer) error {
	if _, err := io.WriteString(w, "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n"); err != nil {
		return err
	}
	return html.Render(w, f.doc)
}

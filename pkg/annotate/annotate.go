package annotate

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/japaniel/wordray/pkg/entity"
	"github.com/japaniel/wordray/pkg/epub"
	"github.com/japaniel/wordray/pkg/knowledge"
)

// OutputSuffix is appended to the book's file stem to name the annotated
// copy.
const OutputSuffix = "_x_ray"

// Options configures an Annotator. Every source is optional; without a
// Lookup each footnote shows the entity's representative quote.
type Options struct {
	// SearchPeople also looks up entities labelled as persons.
	SearchPeople bool
	Lookup       knowledge.Lookup
	// Places adds regime type and locator map to place footnotes. It is
	// keyed by the item id Lookup reports.
	Places Places
	Images Images
	Logger *slog.Logger
}

// Result is what the annotation pass found in a book.
type Result struct {
	Entities []entity.Entity
	// Occurrences and Glosses are keyed by part href, in body byte offsets.
	Occurrences map[string][]entity.Occurrence
	Glosses     map[string][]Gloss
}

// Annotator rewrites an extracted EPUB working copy.
type Annotator struct {
	opts   Options
	logger *slog.Logger
}

// New returns an Annotator.
func New(opts Options) *Annotator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Annotator{opts: opts, logger: logger}
}

// Annotate writes the annotated copy of book next to the original and
// returns its path. Knowledge lookups happen first; once the first part is
// rewritten the pass runs to completion. The archive is packaged only when
// every write succeeded.
func (a *Annotator) Annotate(ctx context.Context, book *epub.Book, res Result) (string, error) {
	a.prefetch(ctx, res.Entities)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rewrites := a.rewrites(book, res)
	for _, rw := range rewrites {
		if err := book.WritePart(rw.part, rw.content); err != nil {
			return "", err
		}
	}
	a.logger.Info("parts rewritten", "parts", len(rewrites), "entities", len(res.Entities))

	if len(res.Entities) > 0 {
		if err := a.writeFootnotes(ctx, book, res.Entities); err != nil {
			return "", err
		}
	}

	dest := book.OutputPath(OutputSuffix)
	if err := book.Package(dest); err != nil {
		return "", err
	}
	return dest, nil
}

// prefetch fills the knowledge caches. Failures only cost descriptions.
func (a *Annotator) prefetch(ctx context.Context, entities []entity.Entity) {
	if a.opts.Lookup == nil {
		return
	}
	var titles []string
	for _, e := range entities {
		if a.opts.SearchPeople || !entity.IsPerson(e.Label) {
			titles = append(titles, e.Key)
		}
	}
	if err := a.opts.Lookup.Query(ctx, titles); err != nil {
		a.logger.Warn("knowledge lookup aborted", "source", a.opts.Lookup.SourceName(), "error", err)
		return
	}
	if a.opts.Places == nil {
		return
	}
	var ids []string
	for _, t := range titles {
		if in, ok := a.opts.Lookup.GetCache(t); ok && in.ItemID != "" {
			ids = append(ids, in.ItemID)
		}
	}
	if err := a.opts.Places.Query(ctx, ids); err != nil {
		a.logger.Warn("wikidata lookup aborted", "error", err)
	}
}

type rewrite struct {
	part    *epub.Part
	content string
}

// rewrites computes the new content of every part with marks, without
// touching the working copy.
func (a *Annotator) rewrites(book *epub.Book, res Result) []rewrite {
	var out []rewrite
	for _, p := range book.Parts() {
		occs := res.Occurrences[p.Href]
		glosses := res.Glosses[p.Href]
		if len(occs) == 0 && len(glosses) == 0 {
			continue
		}
		// Entity references come first so they win ties with glosses.
		marks := append(NoteRefs(occs), Rubies(glosses)...)
		body := Splice(p.Body(), marks)
		content := p.Content[:p.BodyStart] + body + p.Content[p.BodyEnd:]
		if len(occs) > 0 {
			content = AddEPubNamespace(content)
		}
		out = append(out, rewrite{part: p, content: content})
	}
	return out
}

// AddEPubNamespace declares the epub prefix on the root element of content
// when the document does not mention the OPS namespace yet.
func AddEPubNamespace(content string) string {
	if strings.Contains(content, epub.NamespaceOPS) {
		return content
	}
	xmlns := `xmlns="` + epub.NamespaceXHTML + `"`
	return strings.Replace(content, xmlns, xmlns+` xmlns:epub="`+epub.NamespaceOPS+`"`, 1)
}

// manifestID derives an XML id from an image file name.
func manifestID(filename string) string {
	return "x_ray_" + strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, filename)
}

// relPrefix is the href prefix leading from files in dir to the OPF
// directory.
func relPrefix(dir string) string {
	if dir == "" {
		return ""
	}
	return strings.Repeat("../", strings.Count(dir, "/")+1)
}

func (a *Annotator) writeFootnotes(ctx context.Context, book *epub.Book, entities []entity.Entity) error {
	xhtmlDir := book.HrefDir("application/xhtml+xml")
	imageDir := book.HrefDir("image/")

	f := newFootnotes()
	f.searchPeople = a.opts.SearchPeople
	f.lookup = a.opts.Lookup
	f.places = a.opts.Places
	f.images = a.opts.Images
	f.logger = a.logger
	f.imagePrefix = relPrefix(xhtmlDir)
	if imageDir != "" {
		f.imagePrefix += imageDir + "/"
	}
	for _, e := range entities {
		f.add(ctx, e)
	}

	var buf bytes.Buffer
	if err := f.render(&buf); err != nil {
		return fmt.Errorf("annotate: render footnotes: %w", err)
	}
	pageHref := path.Join(xhtmlDir, FootnotePage)
	if err := book.WriteFile(pageHref, buf.Bytes()); err != nil {
		return fmt.Errorf("annotate: write footnotes: %w", err)
	}
	items := []epub.ManifestItem{{ID: FootnotePage, Href: pageHref, MediaType: "application/xhtml+xml"}}

	for _, img := range f.Images {
		data, err := os.ReadFile(img.Local)
		if err != nil {
			return fmt.Errorf("annotate: copy image: %w", err)
		}
		href := path.Join(imageDir, img.Filename)
		if err := book.WriteFile(href, data); err != nil {
			return fmt.Errorf("annotate: copy image: %w", err)
		}
		items = append(items, epub.ManifestItem{ID: manifestID(img.Filename), Href: href, MediaType: epub.MediaTypeFor(img.Filename)})
	}
	if err := book.AddItems(items, FootnotePage); err != nil {
		return err
	}

	if a.opts.Lookup != nil {
		if err := a.opts.Lookup.SaveCache(); err != nil {
			a.logger.Warn("save knowledge cache", "error", err)
		}
	}
	if a.opts.Places != nil {
		if err := a.opts.Places.SaveCache(); err != nil {
			a.logger.Warn("save wikidata cache", "error", err)
		}
	}
	return nil
}

// Package pipeline annotates one book end to end: it extracts segments,
// resolves entities and lemmas, and writes either an annotated EPUB or the
// Kindle language layer and X-Ray sidecar files.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/japaniel/wordray/pkg/analyzer"
	"github.com/japaniel/wordray/pkg/annotate"
	"github.com/japaniel/wordray/pkg/config"
	"github.com/japaniel/wordray/pkg/db"
	"github.com/japaniel/wordray/pkg/dictionary"
	"github.com/japaniel/wordray/pkg/entity"
	"github.com/japaniel/wordray/pkg/knowledge"
	"github.com/japaniel/wordray/pkg/lemma"
	"github.com/japaniel/wordray/pkg/segment"
)

// Book identifies one input.
type Book struct {
	Path   string
	Format segment.Format
	// ASIN names the Kindle sidecar files.
	ASIN string
}

// Output lists what a run produced.
type Output struct {
	EPUB          string
	LanguageLayer string
	XRay          string
	Entities      int
	Glosses       int
}

// Deps are the collaborators of a Pipeline. Nil fields fall back to the
// built-in implementations or disable the feature that needs them.
type Deps struct {
	// Tagger defaults to the HTTP tagger when configured, the Japanese
	// analyzer for Japanese, and capitalised runs otherwise.
	Tagger entity.Tagger
	// Tokenizer and Canonicalizer feed the language layer.
	Tokenizer     lemma.Tokenizer
	Canonicalizer lemma.Canonicalizer
	// Lemmas enables the Kindle language layer.
	Lemmas *lemma.Table
	// Words enables EPUB Word Wise.
	Words *dictionary.Automaton
	// Lookup, Places and Images describe entities in footnotes.
	Lookup knowledge.Lookup
	Places annotate.Places
	Images annotate.Images

	KFX    segment.KFXDecoder
	MOBI   segment.MOBIDecoder
	Logger *slog.Logger
}

// Pipeline processes books with one configuration.
type Pipeline struct {
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger
}

// New returns a pipeline for cfg.
func New(cfg *config.Config, deps Deps) (*Pipeline, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.KFX == nil {
		deps.KFX = segment.JSONFileDecoder{}
	}
	if deps.MOBI == nil {
		deps.MOBI = segment.HTMLFileDecoder{}
	}

	var ja *analyzer.Analyzer
	if cfg.Language == "ja" && (deps.Tagger == nil || deps.Tokenizer == nil) {
		a, err := analyzer.New()
		if err != nil {
			return nil, fmt.Errorf("pipeline: japanese analyzer: %w", err)
		}
		ja = a
	}
	switch {
	case deps.Tagger != nil:
	case cfg.Entity.TaggerURL != "":
		deps.Tagger = entity.NewHTTPTagger(cfg.Entity.TaggerURL, nil)
	case ja != nil:
		deps.Tagger = analyzer.Tagger{Analyzer: ja}
	default:
		deps.Tagger = entity.CapitalTagger{}
	}
	if deps.Tokenizer == nil && ja != nil {
		deps.Tokenizer = ja
		if deps.Canonicalizer == nil && deps.Lemmas != nil {
			deps.Canonicalizer = lemma.Identity{Known: deps.Lemmas.Has}
		}
	}
	return &Pipeline{cfg: cfg, deps: deps, logger: deps.Logger}, nil
}

// Task wraps Run for a Runner.
func (p *Pipeline) Task(book Book, out *Output) Task {
	return func(ctx context.Context, report func(Progress)) error {
		o, err := p.Run(ctx, book, report)
		if out != nil {
			*out = o
		}
		return err
	}
}

// Run processes one book. Container failures are returned as
// *segment.BookError.
func (p *Pipeline) Run(ctx context.Context, book Book, report func(Progress)) (Output, error) {
	if report == nil {
		report = func(Progress) {}
	}
	logger := p.logger.With("book", book.Path, "format", book.Format)
	logger.Info("processing book")

	var (
		out Output
		err error
	)
	switch book.Format {
	case segment.EPUB:
		out, err = p.runEPUB(ctx, book, report, logger)
	case segment.KFX:
		var src segment.Source
		if src, err = segment.OpenKFX(book.Path, p.deps.KFX); err == nil {
			out, err = p.runKindle(ctx, book, src, report, logger)
		}
	case segment.AZW3, segment.AZW, segment.MOBI:
		var src segment.Source
		if src, err = segment.OpenMOBI(book.Path, p.deps.MOBI); err == nil {
			out, err = p.runKindle(ctx, book, src, report, logger)
		}
	default:
		err = &segment.BookError{Book: book.Path, Err: fmt.Errorf("%w: %q", segment.ErrUnsupportedFormat, book.Format)}
	}
	if err != nil {
		logger.Error("book failed", "error", err)
		return Output{}, err
	}
	report(Progress{Fraction: 1, Message: "Done"})
	logger.Info("book done", "entities", out.Entities, "glosses", out.Glosses)
	return out, nil
}

func (p *Pipeline) resolver() *entity.Resolver {
	ec := p.cfg.Entity
	return entity.NewResolver(p.deps.Tagger, entity.Options{
		Threshold: ec.Threshold,
		Normalizer: entity.Normalizer{
			FoldCase:        ec.FoldCase,
			StripHonorifics: ec.StripHonorifics,
			NFKC:            ec.NFKC,
		},
		Substring: dictionary.IsCJK(p.cfg.Language),
		Logger:    p.logger,
	})
}

// reporter scales per-segment progress into [from, to).
func reporter(report func(Progress), total int, from, to float64, msg string) func(i int) {
	step := max(total/100, 1)
	return func(i int) {
		if total == 0 || i%step != 0 {
			return
		}
		report(Progress{Fraction: from + (to-from)*float64(i)/float64(total), Message: msg})
	}
}

func countSegments(src segment.Source) int {
	n := 0
	for range src.Segments() {
		n++
	}
	return n
}

func (p *Pipeline) runEPUB(ctx context.Context, book Book, report func(Progress), logger *slog.Logger) (Output, error) {
	b, err := segment.OpenEPUB(book.Path)
	if err != nil {
		return Output{}, err
	}
	defer b.Close()

	src := segment.FromEPUB(b)
	resolver := p.resolver()
	wordWise := p.deps.Words != nil && p.cfg.Dictionary.WordWise
	res := annotate.Result{Glosses: make(map[string][]annotate.Gloss)}
	tick := reporter(report, countSegments(src), 0, 0.8, "Finding entities")

	var out Output
	i := 0
	for seg := range src.Segments() {
		if err := ctx.Err(); err != nil {
			return Output{}, err
		}
		if _, err := resolver.Process(ctx, seg); err != nil {
			return Output{}, &segment.BookError{Book: book.Path, Err: err}
		}
		if wordWise {
			g := annotate.Glosses(seg, p.deps.Words.Find(seg.Text()))
			res.Glosses[seg.Part] = append(res.Glosses[seg.Part], g...)
			out.Glosses += len(g)
		}
		i++
		tick(i)
	}

	res.Entities = resolver.Entities()
	res.Occurrences = make(map[string][]entity.Occurrence, len(resolver.Parts()))
	for _, part := range resolver.Parts() {
		res.Occurrences[part] = resolver.Occurrences(part)
	}
	out.Entities = len(res.Entities)

	report(Progress{Fraction: 0.8, Message: "Writing annotated book"})
	ann := annotate.New(annotate.Options{
		SearchPeople: p.cfg.Knowledge.SearchPeople,
		Lookup:       p.deps.Lookup,
		Places:       p.deps.Places,
		Images:       p.deps.Images,
		Logger:       logger,
	})
	if out.EPUB, err = ann.Annotate(ctx, b, res); err != nil {
		return Output{}, &segment.BookError{Book: book.Path, Err: err}
	}
	return out, nil
}

// difficultyFilter drops entries harder than limit.
type difficultyFilter struct {
	sink  lemma.Sink
	limit int
}

func (f difficultyFilter) Insert(e lemma.Entry) error {
	if e.Difficulty > f.limit {
		return nil
	}
	return f.sink.Insert(e)
}

func (p *Pipeline) runKindle(ctx context.Context, book Book, src segment.Source, report func(Progress), logger *slog.Logger) (out Output, err error) {
	var (
		ll      *db.LanguageLayer
		indexer *lemma.Indexer
		sink    lemma.Sink
	)
	if p.deps.Lemmas != nil {
		out.LanguageLayer = db.LanguageLayerPath(book.Path, p.cfg.Language, book.ASIN)
		if ll, err = db.CreateLanguageLayer(out.LanguageLayer, p.cfg.Language); err != nil {
			return Output{}, err
		}
		defer func() {
			if err != nil {
				ll.Discard()
			}
		}()
		indexer = lemma.NewIndexer(p.deps.Tokenizer, p.deps.Canonicalizer, p.deps.Lemmas)
		sink = difficultyFilter{sink: ll, limit: p.cfg.Dictionary.DifficultyLimit}
	}

	resolver := p.resolver()
	tick := reporter(report, countSegments(src), 0, 0.8, "Creating language layer and X-Ray")
	end, i := 0, 0
	for seg := range src.Segments() {
		if err := ctx.Err(); err != nil {
			return Output{}, err
		}
		if indexer != nil {
			if _, err := indexer.Index(seg, sink); err != nil {
				return Output{}, fmt.Errorf("pipeline: language layer: %w", err)
			}
		}
		if _, err := resolver.Process(ctx, seg); err != nil {
			return Output{}, &segment.BookError{Book: book.Path, Err: err}
		}
		end = max(end, seg.Absolute(len(seg.Raw)))
		i++
		tick(i)
	}
	if ll != nil {
		out.Glosses = ll.Len()
		if err := ll.Commit(); err != nil {
			return Output{}, err
		}
	}

	report(Progress{Fraction: 0.8, Message: "Writing X-Ray"})
	xray := p.xrayBook(ctx, resolver, end)
	out.Entities = len(xray.Entities)
	out.XRay = db.XRayPath(book.Path, book.ASIN)
	if err := db.WriteXRay(out.XRay, xray); err != nil {
		return Output{}, err
	}
	return out, nil
}

// xrayBook keeps entities mentioned at least MinimalCount times and
// attaches knowledge descriptions.
func (p *Pipeline) xrayBook(ctx context.Context, r *entity.Resolver, end int) db.XRayBook {
	var all []entity.Occurrence
	counts := make(map[int]int)
	for _, part := range r.Parts() {
		for _, o := range r.Occurrences(part) {
			counts[o.EntityID]++
			all = append(all, o)
		}
	}

	book := db.XRayBook{Descriptions: make(map[int]db.Description), End: end}
	keep := make(map[int]bool)
	var titles []string
	for _, e := range r.Entities() {
		if counts[e.ID] < p.cfg.Entity.MinimalCount {
			continue
		}
		keep[e.ID] = true
		book.Entities = append(book.Entities, e)
		if p.cfg.Knowledge.SearchPeople || !entity.IsPerson(e.Label) {
			titles = append(titles, e.Key)
		}
	}
	for _, o := range all {
		if keep[o.EntityID] {
			book.Occurrences = append(book.Occurrences, o)
		}
	}

	lookup := p.deps.Lookup
	if lookup == nil || len(titles) == 0 {
		return book
	}
	if err := lookup.Query(ctx, titles); err != nil {
		p.logger.Warn("knowledge lookup aborted", "error", err)
	}
	for _, e := range book.Entities {
		if p.cfg.Knowledge.SearchPeople || !entity.IsPerson(e.Label) {
			if in, ok := lookup.GetCache(e.Key); ok {
				book.Descriptions[e.ID] = db.Description{Text: in.Intro, Source: lookup.SourceName()}
			}
		}
	}
	if err := lookup.SaveCache(); err != nil {
		p.logger.Warn("save knowledge cache", "error", err)
	}
	return book
}

package entity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/japaniel/wordray/pkg/segment"
)

// DefaultThreshold is the WRatio score at or above which a mention joins an
// existing entity.
const DefaultThreshold = 85.7

const (
	minSpanLength   = 3
	defaultQuoteMax = 300
)

// Entity is one book-wide identity. IDs are dense and allocated in the
// order entities are first seen.
type Entity struct {
	ID    int
	Key   string
	Label string
	Quote string
}

// Occurrence is a mention of an entity. Start and End are in the unit of
// the segment it was found in; for EPUB parts they are byte offsets
// relative to the part body.
type Occurrence struct {
	Start, End int
	Text       string
	EntityID   int
	Part       string
}

// Options configures a Resolver.
type Options struct {
	// Threshold is the WRatio cutoff; zero means DefaultThreshold.
	Threshold  float64
	Normalizer Normalizer
	// Substring disables the word boundary check when locating spans,
	// for scripts written without spaces.
	Substring bool
	// QuoteMax caps representative quotes, in codepoints.
	QuoteMax int
	Logger   *slog.Logger
}

// Resolver folds tagged mentions into entities. It is not safe for
// concurrent use; a book is processed by one goroutine.
type Resolver struct {
	tagger Tagger
	opts   Options
	logger *slog.Logger

	entities []Entity
	keys     []string
	exact    map[string]int

	parts       []string
	occurrences map[string][]Occurrence
}

// NewResolver returns a resolver using tagger.
func NewResolver(tagger Tagger, opts Options) *Resolver {
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.QuoteMax == 0 {
		opts.QuoteMax = defaultQuoteMax
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		tagger:      tagger,
		opts:        opts,
		logger:      logger,
		exact:       make(map[string]int),
		occurrences: make(map[string][]Occurrence),
	}
}

// Process tags seg and records an occurrence for every span found in it.
// Spans shorter than three codepoints, spans repeated verbatim within the
// segment, and spans that cannot be located are dropped.
func (r *Resolver) Process(ctx context.Context, seg segment.Segment) ([]Occurrence, error) {
	text := seg.Text()
	spans, err := r.tagger.Tag(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("entity: tag segment at %d: %w", seg.Start, err)
	}

	var out []Occurrence
	seen := make(map[string]bool, len(spans))
	for _, sp := range spans {
		if utf8.RuneCountInString(sp.Text) < minSpanLength || seen[sp.Text] {
			continue
		}
		seen[sp.Text] = true

		i := r.locate(text, sp.Text)
		if i < 0 {
			r.logger.Debug("entity span not found in segment", "span", sp.Text, "segment", seg.Start)
			continue
		}
		id := r.Resolve(sp.Text, sp.Label, r.quote(text[i:]))
		occ := Occurrence{
			Start:    seg.Absolute(i),
			End:      seg.Absolute(i + len(sp.Text)),
			Text:     sp.Text,
			EntityID: id,
			Part:     seg.Part,
		}
		if _, ok := r.occurrences[seg.Part]; !ok {
			r.parts = append(r.parts, seg.Part)
		}
		r.occurrences[seg.Part] = append(r.occurrences[seg.Part], occ)
		out = append(out, occ)
	}
	return out, nil
}

func (r *Resolver) locate(text, span string) int {
	if r.opts.Substring {
		return strings.Index(text, span)
	}
	return FindWord(text, span)
}

func (r *Resolver) quote(s string) string {
	if utf8.RuneCountInString(s) <= r.opts.QuoteMax {
		return s
	}
	n := 0
	for i := range s {
		if n == r.opts.QuoteMax {
			return s[:i]
		}
		n++
	}
	return s
}

// Resolve returns the id of the entity name belongs to, allocating a new
// one when no existing entity scores at least the threshold.
func (r *Resolver) Resolve(name, label, quote string) int {
	key := r.opts.Normalizer.Normalize(name)
	if id, ok := r.exact[key]; ok {
		return id
	}
	if i, score, ok := ExtractOne(key, r.keys, r.opts.Threshold); ok {
		r.logger.Debug("entity folded", "mention", name, "entity", r.entities[i].Key, "score", score)
		return r.entities[i].ID
	}
	id := len(r.entities)
	r.entities = append(r.entities, Entity{ID: id, Key: name, Label: label, Quote: quote})
	r.keys = append(r.keys, key)
	r.exact[key] = id
	return id
}

// Entities returns the entities in id order.
func (r *Resolver) Entities() []Entity { return r.entities }

// Parts returns the parts with occurrences, in discovery order.
func (r *Resolver) Parts() []string { return r.parts }

// Occurrences returns the occurrences of part in discovery order.
func (r *Resolver) Occurrences(part string) []Occurrence { return r.occurrences[part] }

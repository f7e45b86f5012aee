package dictionary

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Gloss is the payload attached to every surface form of a word.
type Gloss struct {
	Short   string `msgpack:"short"`
	Full    string `msgpack:"full"`
	Example string `msgpack:"example"`
}

// Strategy selects how surfaces are matched against text.
type Strategy uint8

const (
	// Keyword matches whole words, ASCII case-insensitively, preferring the
	// longest leftmost surface. Used for space-delimited languages.
	Keyword Strategy = iota
	// Substring matches anywhere, including overlapping surfaces. Used for
	// CJK languages.
	Substring
)

func strategyFor(lang string) Strategy {
	if IsCJK(lang) {
		return Substring
	}
	return Keyword
}

// Match is one occurrence of a surface form in a text. Start and End are
// byte offsets into the searched text.
type Match struct {
	Start, End int
	Surface    string
	Gloss      Gloss
}

// Automaton maps surface forms to glosses. It is immutable once built and
// safe for concurrent use.
type Automaton struct {
	lang     string
	strategy Strategy
	surfaces []string
	glosses  []Gloss
	index    map[string]int
	ac       ahocorasick.AhoCorasick
}

// Build compiles the enabled words of lang and their forms. The first
// inserted surface wins; surfaces below MinLength are skipped.
func Build(lang string, words []Word) *Automaton {
	a := &Automaton{
		lang:     lang,
		strategy: strategyFor(lang),
		index:    make(map[string]int),
	}
	for _, w := range words {
		if !w.Enabled || a.has(w.Word) {
			continue
		}
		g := Gloss{Short: w.ShortGloss, Full: w.FullGloss, Example: w.Example}
		a.add(w.Word, g)
		for _, f := range w.Forms {
			a.add(f, g)
		}
	}
	a.compile()
	return a
}

func (a *Automaton) key(surface string) string {
	if a.strategy == Keyword {
		return strings.ToLower(surface)
	}
	return surface
}

func (a *Automaton) has(surface string) bool {
	_, ok := a.index[a.key(surface)]
	return ok
}

func (a *Automaton) add(surface string, g Gloss) {
	if !AcceptSurface(a.lang, surface) || a.has(surface) {
		return
	}
	a.index[a.key(surface)] = len(a.surfaces)
	a.surfaces = append(a.surfaces, surface)
	a.glosses = append(a.glosses, g)
}

func (a *Automaton) compile() {
	opts := ahocorasick.Opts{
		AsciiCaseInsensitive: a.strategy == Keyword,
		MatchKind:            ahocorasick.StandardMatch,
		DFA:                  true,
	}
	b := ahocorasick.NewAhoCorasickBuilder(opts)
	a.ac = b.Build(a.surfaces)
}

// Lang returns the language the automaton was built for.
func (a *Automaton) Lang() string { return a.lang }

// Strategy returns the matching strategy.
func (a *Automaton) Strategy() Strategy { return a.strategy }

// Len returns the number of surface forms.
func (a *Automaton) Len() int { return len(a.surfaces) }

// Lookup returns the gloss of an exact surface form.
func (a *Automaton) Lookup(surface string) (Gloss, bool) {
	i, ok := a.index[a.key(surface)]
	if !ok {
		return Gloss{}, false
	}
	return a.glosses[i], true
}

// Find returns non-overlapping matches in text, leftmost first, preferring
// the longest surface at each position.
func (a *Automaton) Find(text string) []Match {
	all := a.FindOverlapping(text)
	if len(all) == 0 {
		return nil
	}
	slices.SortStableFunc(all, func(x, y Match) int {
		if c := cmp.Compare(x.Start, y.Start); c != 0 {
			return c
		}
		return cmp.Compare(y.End, x.End)
	})
	out := all[:0]
	end := 0
	for _, m := range all {
		if m.Start < end {
			continue
		}
		out = append(out, m)
		end = m.End
	}
	return out
}

// FindOverlapping returns every occurrence of every surface in text. For
// the Keyword strategy only whole words count.
func (a *Automaton) FindOverlapping(text string) []Match {
	if len(a.surfaces) == 0 {
		return nil
	}
	var out []Match
	it := a.ac.IterOverlapping(text)
	for m := it.Next(); m != nil; m = it.Next() {
		if a.strategy == Keyword && !(wordBoundary(text, m.Start()) && wordBoundary(text, m.End())) {
			continue
		}
		out = append(out, a.match(text, m.Start(), m.End(), m.Pattern()))
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// wordBoundary reports whether a word boundary sits at byte i of text.
func wordBoundary(text string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWordRune(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWordRune(r)
	}
	return before != after
}

func (a *Automaton) match(text string, start, end, pattern int) Match {
	return Match{Start: start, End: end, Surface: text[start:end], Gloss: a.glosses[pattern]}
}

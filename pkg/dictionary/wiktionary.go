package dictionary

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
)

// Word is one extracted sense of a headword. A headword yields one Word per
// usable sense; only the first is enabled.
type Word struct {
	Enabled    bool     `msgpack:"enabled"`
	Word       string   `msgpack:"word"`
	POS        string   `msgpack:"pos"`
	ShortGloss string   `msgpack:"short"`
	FullGloss  string   `msgpack:"full"`
	Example    string   `msgpack:"example"`
	Forms      []string `msgpack:"forms"`
}

var posTypes = []string{"adj", "adv", "noun", "phrase", "proverb", "verb"}

var (
	// Only digits, punctuation or symbols; RE2's \W is ASCII-only.
	nonWordRe    = regexp.MustCompile(`^[^\p{L}\p{M}_]+$`)
	latinOnlyRe  = regexp.MustCompile(`^[a-zA-Z]+$`)
	parenRe      = regexp.MustCompile(`\([^)]+\)`)
	skipSenseTag = []string{"plural", "alternative"}
)

// kaikkiEntry is the subset of a kaikki.org JSONL line we read.
type kaikkiEntry struct {
	Word  string `json:"word"`
	POS   string `json:"pos"`
	Forms []struct {
		Form string `json:"form"`
	} `json:"forms"`
	Senses []struct {
		Glosses  []string `json:"glosses"`
		Tags     []string `json:"tags"`
		Examples []struct {
			Text string `json:"text"`
		} `json:"examples"`
	} `json:"senses"`
}

// ExtractWiktionary reads kaikki.org JSONL from r. When kindleLemmas is not
// nil, a sense is enabled only if its headword is in the set.
func ExtractWiktionary(r io.Reader, lang string, kindleLemmas map[string]bool) ([]Word, error) {
	var words []Word
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<20), 64<<20)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(strings.TrimSpace(string(raw))) == 0 {
			continue
		}
		var e kaikkiEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("dictionary: kaikki line %d: %w", line, err)
		}
		words = append(words, extractEntry(e, lang, kindleLemmas)...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dictionary: read kaikki: %w", err)
	}
	return words, nil
}

func extractEntry(e kaikkiEntry, lang string, kindleLemmas map[string]bool) []Word {
	if !slices.Contains(posTypes, e.POS) || !AcceptSurface(lang, e.Word) || nonWordRe.MatchString(e.Word) {
		return nil
	}
	if IsCJK(lang) && latinOnlyRe.MatchString(e.Word) {
		return nil
	}

	var forms []string
	for _, f := range e.Forms {
		if f.Form != "" && f.Form != e.Word && AcceptSurface(lang, f.Form) && !slices.Contains(forms, f.Form) {
			forms = append(forms, f.Form)
		}
	}

	var out []Word
	enabled := true
	for _, s := range e.Senses {
		if len(s.Glosses) == 0 || slices.ContainsFunc(s.Tags, func(t string) bool {
			return slices.Contains(skipSenseTag, t)
		}) {
			continue
		}
		var example string
		for _, ex := range s.Examples {
			if ex.Text != "" && ex.Text != "(obsolete)" {
				example = ex.Text
				break
			}
		}
		w := Word{
			Enabled:    enabled,
			Word:       e.Word,
			POS:        e.POS,
			ShortGloss: ShortDef(s.Glosses[0]),
			FullGloss:  s.Glosses[0],
			Example:    example,
			Forms:      forms,
		}
		if kindleLemmas != nil {
			w.Enabled = kindleLemmas[e.Word]
		}
		out = append(out, w)
		enabled = false
	}
	return out
}

// ShortDef drops parenthesised asides and keeps the gloss up to the first
// semicolon or comma.
func ShortDef(gloss string) string {
	s := parenRe.ReplaceAllString(gloss, "")
	if i := strings.IndexAny(s, ";,"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

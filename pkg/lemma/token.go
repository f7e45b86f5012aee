// Package lemma maps the words of a segment to lemma records and writes
// them, at their absolute offsets, to a language layer sink.
package lemma

import (
	"regexp"
	"strings"
)

// Token is a word found in a text. Start and End are byte offsets into the
// text. Base is the form handed to the Canonicalizer.
type Token struct {
	Start, End int
	Surface    string
	Base       string
}

// Tokenizer splits a decoded segment into tokens.
type Tokenizer interface {
	Tokens(text string) []Token
}

const softHyphen = "\u00ad"

var alphaRun = regexp.MustCompile(`[a-zA-Z\x{00AD}]{3,}`)

// AlphaRuns tokenizes runs of at least three ASCII letters, soft hyphens
// included. Base is lower-cased with soft hyphens removed.
type AlphaRuns struct{}

func (AlphaRuns) Tokens(text string) []Token {
	locs := alphaRun.FindAllStringIndex(text, -1)
	out := make([]Token, 0, len(locs))
	for _, m := range locs {
		surface := text[m[0]:m[1]]
		out = append(out, Token{
			Start:   m[0],
			End:     m[1],
			Surface: surface,
			Base:    strings.ToLower(strings.ReplaceAll(surface, softHyphen, "")),
		})
	}
	return out
}

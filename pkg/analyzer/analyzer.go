// Package analyzer wraps the kagome morphological analyzer for Japanese
// books: it splits unspaced text into tokens with byte positions, supplies
// dictionary base forms to the lemma indexer and reports proper nouns as
// named entities.
package analyzer

import (
	"slices"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/japaniel/wordray/pkg/lemma"
)

// Token represents a single analyzed unit of text.
type Token struct {
	// Start and End are byte offsets into the analyzed text.
	Start, End    int
	Surface       string   // The text as it appears (e.g. "行っ")
	BaseForm      string   // The dictionary form (e.g. "行く")
	Reading       string   // The pronunciation (katakana, e.g. "イッ")
	PartsOfSpeech []string // e.g. ["動詞", "自立", "*", "*"] (Kagome POS labels)
	// PrimaryPOS stores the first (primary) part of speech if available.
	PrimaryPOS string
}

// Analyzer handles text segmentation. It is safe for concurrent use.
type Analyzer struct {
	t *tokenizer.Tokenizer
}

// New creates a tokenizer backed by the IPA dictionary.
func New() (*Analyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Analyzer{t: t}, nil
}

// Analyze breaks text into tokens with readings and base forms.
// Whitespace-only tokens are dropped.
func (a *Analyzer) Analyze(text string) []Token {
	tokens := a.t.Tokenize(text)
	result := make([]Token, 0, len(tokens))

	for _, token := range tokens {
		if token.Class == tokenizer.DUMMY || strings.TrimSpace(token.Surface) == "" {
			continue
		}

		// IPA features: 0 POS, 1-3 sub-POS, 4 conjugation type,
		// 5 conjugation form, 6 base form, 7 reading, 8 pronunciation.
		features := token.Features()

		base := token.Surface
		if len(features) > 6 && features[6] != "*" {
			base = features[6]
		}
		reading := ""
		if len(features) > 7 && features[7] != "*" {
			reading = features[7]
		}
		primaryPOS := ""
		if len(features) > 0 {
			primaryPOS = features[0]
		}

		result = append(result, Token{
			Start:         token.Position,
			End:           token.Position + len(token.Surface),
			Surface:       token.Surface,
			BaseForm:      base,
			Reading:       reading,
			PartsOfSpeech: features,
			PrimaryPOS:    primaryPOS,
		})
	}
	return result
}

// functionPOS carry no dictionary entry of their own.
var functionPOS = []string{"記号", "助詞", "助動詞", "フィラー"}

// Tokens implements lemma.Tokenizer. Only content words are returned and
// Base is the dictionary form.
func (a *Analyzer) Tokens(text string) []lemma.Token {
	var out []lemma.Token
	for _, t := range a.Analyze(text) {
		if slices.Contains(functionPOS, t.PrimaryPOS) {
			continue
		}
		out = append(out, lemma.Token{Start: t.Start, End: t.End, Surface: t.Surface, Base: t.BaseForm})
	}
	return out
}

package entity

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultHonorifics are stripped or recognised without their trailing period
// and compared lower-case.
var DefaultHonorifics = []string{
	"mr", "mrs", "ms", "miss", "mx", "dr", "sir", "dame", "lady", "lord",
	"madam", "madame", "monsieur", "mademoiselle", "prof", "professor",
	"capt", "captain", "col", "colonel", "gen", "general", "lt", "sgt",
	"rev", "father", "king", "queen", "prince", "princess", "st", "saint",
	"uncle", "aunt",
}

// Normalizer maps an entity surface to the key used for identity matching.
type Normalizer struct {
	FoldCase        bool
	StripHonorifics bool
	NFKC            bool
	// Honorifics overrides DefaultHonorifics when not nil.
	Honorifics []string
}

// DefaultNormalizer folds case only.
func DefaultNormalizer() Normalizer {
	return Normalizer{FoldCase: true}
}

// Normalize returns the matching key of s. Whitespace runs collapse to a
// single space. Stripping never removes the last word.
func (n Normalizer) Normalize(s string) string {
	if n.NFKC {
		s = norm.NFKC.String(s)
	}
	fields := strings.Fields(s)
	if n.StripHonorifics {
		honorifics := n.Honorifics
		if honorifics == nil {
			honorifics = DefaultHonorifics
		}
		for len(fields) > 1 && slices.Contains(honorifics, strings.ToLower(strings.TrimSuffix(fields[0], "."))) {
			fields = fields[1:]
		}
	}
	s = strings.Join(fields, " ")
	if n.FoldCase {
		s = cases.Fold().String(s)
	}
	return s
}

// Package entity finds named entities in segments and folds their mentions
// into book-wide identities.
package entity

import (
	"context"
	"slices"
)

// Span is one named entity reported by a tagger.
type Span struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Tagger reports the named entities of a text.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]Span, error)
}

// TaggerFunc adapts a function to Tagger.
type TaggerFunc func(ctx context.Context, text string) ([]Span, error)

func (f TaggerFunc) Tag(ctx context.Context, text string) ([]Span, error) { return f(ctx, text) }

// Labels shared by the bundled taggers.
const (
	LabelPerson = "PERSON"
	LabelOrg    = "ORG"
	LabelGPE    = "GPE"
	LabelLoc    = "LOC"
	LabelMisc   = "MISC"
)

var personLabels = []string{LabelPerson, "PER", "FAC"}

// IsPerson reports whether label names a person.
func IsPerson(label string) bool { return slices.Contains(personLabels, label) }

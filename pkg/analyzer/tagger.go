package analyzer

import (
	"context"

	"github.com/japaniel/wordray/pkg/entity"
)

const properNoun = "固有名詞"

// IPA proper noun subclasses and the entity label each maps to.
var properNounLabels = map[string]string{
	"人名": entity.LabelPerson,
	"組織": entity.LabelOrg,
	"地域": entity.LabelGPE,
}

// Tagger reports runs of adjacent proper nouns as named entities, so a
// family name followed by a given name is one span.
type Tagger struct {
	*Analyzer
}

// Tag implements entity.Tagger.
func (t Tagger) Tag(ctx context.Context, text string) ([]entity.Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		spans      []entity.Span
		start, end = -1, -1
		label      string
	)
	flush := func() {
		if start >= 0 {
			spans = append(spans, entity.Span{Text: text[start:end], Label: label})
		}
		start, end = -1, -1
	}
	for _, tok := range t.Analyze(text) {
		pos := tok.PartsOfSpeech
		if len(pos) < 3 || pos[1] != properNoun {
			flush()
			continue
		}
		l, ok := properNounLabels[pos[2]]
		if !ok {
			l = entity.LabelMisc
		}
		if start >= 0 && tok.Start == end && l == label {
			end = tok.End
			continue
		}
		flush()
		start, end, label = tok.Start, tok.End, l
	}
	flush()
	return spans, nil
}

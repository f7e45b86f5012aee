package entity

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{M}'’]+\.?`)

// connectors may join two capitalised words inside one name.
var connectors = []string{"of", "the", "de", "du", "la", "le", "von", "van", "der", "da", "di"}

// capitalisedStopwords start sentences far more often than names.
var capitalisedStopwords = []string{
	"A", "An", "And", "As", "At", "But", "By", "For", "From", "He", "Her", "His",
	"How", "I", "If", "In", "It", "Its", "My", "No", "Not", "Of", "On", "Or",
	"She", "So", "That", "The", "Their", "Then", "There", "These", "They",
	"This", "Those", "To", "We", "What", "When", "Where", "Which", "While",
	"Who", "Why", "With", "Yes", "You", "Your",
}

// CapitalTagger is a heuristic tagger for Latin-script text: runs of
// capitalised words are names. A run starting with an honorific is a
// PERSON, anything else is MISC.
type CapitalTagger struct {
	Honorifics []string
}

type word struct {
	start, end int
	text       string
}

func (t CapitalTagger) Tag(_ context.Context, text string) ([]Span, error) {
	honorifics := t.Honorifics
	if honorifics == nil {
		honorifics = DefaultHonorifics
	}
	isHonorific := func(w string) bool {
		return slices.Contains(honorifics, strings.ToLower(strings.TrimSuffix(w, ".")))
	}

	var words []word
	for _, m := range wordRe.FindAllStringIndex(text, -1) {
		words = append(words, word{m[0], m[1], text[m[0]:m[1]]})
	}

	var spans []Span
	for i := 0; i < len(words); {
		w := words[i]
		bare := strings.TrimSuffix(w.text, ".")
		if !capitalised(bare) || slices.Contains(capitalisedStopwords, bare) {
			i++
			continue
		}
		person := isHonorific(w.text)
		start, end := w.start, w.end
		closed := false
		if bare != w.text && !person {
			end--
			closed = true
		}
		j := i + 1
		for !closed && j < len(words) && adjacent(text, words[j-1], words[j]) {
			next := words[j]
			if slices.Contains(connectors, next.text) && j+1 < len(words) &&
				adjacent(text, next, words[j+1]) && capitalised(words[j+1].text) {
				j++
				continue
			}
			if !capitalised(next.text) {
				break
			}
			end = next.end
			j++
			if strings.HasSuffix(next.text, ".") && !isHonorific(next.text) {
				end--
				closed = true
			}
		}
		i = j
		if person && end == w.end {
			// a lone honorific is not a name
			continue
		}
		label := LabelMisc
		if person {
			label = LabelPerson
		}
		spans = append(spans, Span{Text: text[start:end], Label: label})
	}
	return spans, nil
}

func capitalised(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsUpper(r)
}

// adjacent reports whether b follows a separated by one space.
func adjacent(text string, a, b word) bool {
	return b.start == a.end+1 && text[a.end] == ' '
}

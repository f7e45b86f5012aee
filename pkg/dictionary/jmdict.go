package dictionary

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
)

// JMdictEntry matches the structure of jmdict-simplified entries.
type JMdictEntry struct {
	ID    string          `json:"id"`
	Kanji []JMdictElement `json:"kanji"`
	Kana  []JMdictElement `json:"kana"`
	Sense []JMdictSense   `json:"sense"`
}

type JMdictElement struct {
	Text   string   `json:"text"`
	Common bool     `json:"common"`
	Tags   []string `json:"tags"`
}

type JMdictSense struct {
	PartOfSpeech []string      `json:"partOfSpeech"`
	Gloss        []JMdictGloss `json:"gloss"`
}

type JMdictGloss struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// LoadJMdictSimplified reads a jmdict-simplified file, either the release
// object {"words": [...]} or a bare array of entries.
func LoadJMdictSimplified(path string) ([]JMdictEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var wrapped struct {
		Words []JMdictEntry `json:"words"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Words) > 0 {
		return wrapped.Words, nil
	}
	var entries []JMdictEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("dictionary: parse JMdict as object or array: %w", err)
	}
	return entries, nil
}

// JMdictWords converts entries into Words. The first kanji writing is the
// headword and the other writings are its forms; kana-only entries use their
// first reading. Katakana readings also add a hiragana form.
func JMdictWords(entries []JMdictEntry) []Word {
	var words []Word
	for _, e := range entries {
		var surfaces []string
		for _, k := range e.Kanji {
			surfaces = appendSurface(surfaces, k.Text)
		}
		for _, k := range e.Kana {
			surfaces = appendSurface(surfaces, k.Text)
			surfaces = appendSurface(surfaces, ToHiragana(k.Text))
		}
		if len(surfaces) == 0 {
			continue
		}
		enabled := true
		for _, s := range e.Sense {
			var glosses []string
			for _, g := range s.Gloss {
				if g.Lang == "" || g.Lang == "eng" {
					glosses = append(glosses, g.Text)
				}
			}
			if len(glosses) == 0 {
				continue
			}
			var pos string
			if len(s.PartOfSpeech) > 0 {
				pos = s.PartOfSpeech[0]
			}
			full := strings.Join(glosses, "; ")
			words = append(words, Word{
				Enabled:    enabled,
				Word:       surfaces[0],
				POS:        pos,
				ShortGloss: ShortDef(glosses[0]),
				FullGloss:  full,
				Forms:      surfaces[1:],
			})
			enabled = false
		}
	}
	return words
}

func appendSurface(list []string, s string) []string {
	if s == "" || slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

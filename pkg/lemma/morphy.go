package lemma

import (
	"strings"

	"github.com/kljensen/snowball"
)

// Canonicalizer maps a token to its dictionary form. ok is false when no
// known lemma was found.
type Canonicalizer interface {
	Canonicalize(token string) (lemma string, ok bool)
}

// Identity accepts tokens that are already in dictionary form, such as
// analyzer base forms.
type Identity struct {
	Known func(string) bool
}

func (c Identity) Canonicalize(token string) (string, bool) {
	if token == "" || (c.Known != nil && !c.Known(token)) {
		return "", false
	}
	return token, true
}

type detachment struct{ suffix, ending string }

// Detachment rules per part of speech, tried in order.
var (
	nounRules = []detachment{
		{"s", ""}, {"ses", "s"}, {"ves", "f"}, {"xes", "x"}, {"zes", "z"},
		{"ches", "ch"}, {"shes", "sh"}, {"men", "man"}, {"ies", "y"},
	}
	verbRules = []detachment{
		{"s", ""}, {"ies", "y"}, {"es", "e"}, {"es", ""},
		{"ed", "e"}, {"ed", ""}, {"ing", "e"}, {"ing", ""},
	}
	adjRules = []detachment{
		{"er", ""}, {"est", ""}, {"er", "e"}, {"est", "e"},
		{"ier", "y"}, {"iest", "y"},
	}
	ruleSets = [][]detachment{nounRules, verbRules, adjRules}
)

// irregular forms that no detachment rule recovers.
var irregular = map[string]string{
	"am": "be", "are": "be", "is": "be", "was": "be", "were": "be", "been": "be",
	"had": "have", "has": "have", "did": "do", "done": "do",
	"went": "go", "gone": "go", "ran": "run", "came": "come", "saw": "see", "seen": "see",
	"took": "take", "taken": "take", "gave": "give", "given": "give",
	"made": "make", "said": "say", "told": "tell", "thought": "think",
	"brought": "bring", "bought": "buy", "caught": "catch", "taught": "teach",
	"fought": "fight", "sought": "seek", "found": "find", "felt": "feel",
	"kept": "keep", "left": "leave", "meant": "mean", "met": "meet",
	"slept": "sleep", "spent": "spend", "stood": "stand", "understood": "understand",
	"wrote": "write", "written": "write", "spoke": "speak", "spoken": "speak",
	"broke": "break", "broken": "break", "chose": "choose", "chosen": "choose",
	"drove": "drive", "driven": "drive", "rode": "ride", "ridden": "ride",
	"rose": "rise", "risen": "rise", "ate": "eat", "eaten": "eat",
	"fell": "fall", "fallen": "fall", "flew": "fly", "flown": "fly",
	"grew": "grow", "grown": "grow", "knew": "know", "known": "know",
	"threw": "throw", "thrown": "throw", "drew": "draw", "drawn": "draw",
	"began": "begin", "begun": "begin", "sang": "sing", "sung": "sing",
	"swam": "swim", "swum": "swim", "drank": "drink", "drunk": "drink",
	"held": "hold", "heard": "hear", "led": "lead", "lost": "lose",
	"paid": "pay", "sold": "sell", "sent": "send", "built": "build",
	"children": "child", "men": "man", "women": "woman", "mice": "mouse",
	"geese": "goose", "feet": "foot", "teeth": "tooth", "people": "person",
	"oxen": "ox", "lice": "louse", "dice": "die",
	"better": "good", "best": "good", "worse": "bad", "worst": "bad",
	"further": "far", "farther": "far",
}

// Morphy finds the base form of an English word the way WordNet's morphy
// does: the word itself, an irregular form, then suffix detachment per part
// of speech. A snowball stem is the last resort. Every candidate must be a
// known lemma.
type Morphy struct {
	known func(string) bool
}

// NewMorphy validates candidates against t.
func NewMorphy(t *Table) *Morphy { return &Morphy{known: t.Has} }

func (m *Morphy) Canonicalize(token string) (string, bool) {
	w := strings.ToLower(token)
	if w == "" {
		return "", false
	}
	if m.known(w) {
		return w, true
	}
	if base, ok := irregular[w]; ok && m.known(base) {
		return base, true
	}
	for _, rules := range ruleSets {
		for _, r := range rules {
			if !strings.HasSuffix(w, r.suffix) || len(w) <= len(r.suffix) {
				continue
			}
			if cand := w[:len(w)-len(r.suffix)] + r.ending; m.known(cand) {
				return cand, true
			}
		}
	}
	// doubled consonant before -ing/-ed: running -> run, stopped -> stop
	for _, suffix := range []string{"ing", "ed", "er", "est"} {
		stem, ok := strings.CutSuffix(w, suffix)
		if ok && len(stem) >= 3 && stem[len(stem)-1] == stem[len(stem)-2] {
			if cand := stem[:len(stem)-1]; m.known(cand) {
				return cand, true
			}
		}
	}
	if stem, err := snowball.Stem(w, "english", true); err == nil && stem != w && m.known(stem) {
		return stem, true
	}
	return "", false
}

package dictionary

import (
	"path/filepath"
	"reflect"
	"testing"
)

func runWords() []Word {
	return []Word{{
		Enabled:    true,
		Word:       "run",
		POS:        "verb",
		ShortGloss: "to move fast",
		FullGloss:  "to move fast; to manage",
		Forms:      []string{"ran", "running"},
	}}
}

func TestAutomatonMatchesInflectedForm(t *testing.T) {
	a := Build("en", runWords())
	matches := a.Find("She was running yesterday")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d: %+v", len(matches), matches)
	}
	m := matches[0]
	if m.Surface != "running" || m.Start != 8 || m.End != 15 {
		t.Errorf("unexpected match %+v", m)
	}
	want := Gloss{Short: "to move fast", Full: "to move fast; to manage"}
	if m.Gloss != want {
		t.Errorf("gloss = %+v, want %+v", m.Gloss, want)
	}
}

func TestAutomatonKeywordWholeWordsCaseInsensitive(t *testing.T) {
	a := Build("en", runWords())
	if got := a.Find("Rerun the truant"); len(got) != 0 {
		t.Errorf("expected no match inside words, got %+v", got)
	}
	got := a.Find("RAN home")
	if len(got) != 1 || got[0].Surface != "RAN" {
		t.Errorf("expected case-insensitive match on RAN, got %+v", got)
	}
}

func TestAutomatonFirstInsertedWins(t *testing.T) {
	words := []Word{
		{Enabled: true, Word: "bank", ShortGloss: "river side"},
		{Enabled: false, Word: "bank", ShortGloss: "money place"},
		{Enabled: true, Word: "Bank", ShortGloss: "capitalised"},
		{Enabled: true, Word: "banks", ShortGloss: "plural headword", Forms: []string{"bank"}},
		{Enabled: true, Word: "go", ShortGloss: "too short"},
	}
	a := Build("en", words)
	g, ok := a.Lookup("bank")
	if !ok || g.Short != "river side" {
		t.Errorf("Lookup(bank) = %+v, %v", g, ok)
	}
	if _, ok := a.Lookup("go"); ok {
		t.Error("surface below minimum length was inserted")
	}
	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}
}

func TestAutomatonSubstringOverlapping(t *testing.T) {
	words := []Word{
		{Enabled: true, Word: "東京", ShortGloss: "Tokyo"},
		{Enabled: true, Word: "京都", ShortGloss: "Kyoto"},
		{Enabled: true, Word: "東京都", ShortGloss: "Tokyo Metropolis"},
	}
	a := Build("ja", words)
	if a.Strategy() != Substring {
		t.Fatalf("expected substring strategy for ja")
	}
	text := "東京都に住む"

	over := a.FindOverlapping(text)
	if len(over) != 3 {
		t.Fatalf("expected 3 overlapping matches, got %+v", over)
	}

	longest := a.Find(text)
	if len(longest) != 1 || longest[0].Surface != "東京都" || longest[0].Start != 0 || longest[0].End != len("東京都") {
		t.Errorf("Find = %+v", longest)
	}
}

func TestAutomatonSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := DumpPath(dir, "en", "en")
	if want := filepath.Join(dir, "en", "wiktionary_en_en.automaton"); path != want {
		t.Fatalf("DumpPath = %s, want %s", path, want)
	}
	a := Build("en", runWords())
	if err := a.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// overwrite on rebuild
	if err := a.Save(path); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b.Lang() != "en" || b.Len() != a.Len() {
		t.Errorf("loaded automaton differs: lang=%s len=%d", b.Lang(), b.Len())
	}
	text := "She was running yesterday"
	if !reflect.DeepEqual(a.Find(text), b.Find(text)) {
		t.Errorf("loaded automaton matches differ: %+v vs %+v", a.Find(text), b.Find(text))
	}
}

func TestEmptyAutomaton(t *testing.T) {
	a := Build("en", nil)
	if got := a.Find("anything at all"); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestAutomatonKeywordLongestWins(t *testing.T) {
	a := Build("en", []Word{
		{Enabled: true, Word: "new york", ShortGloss: "city"},
		{Enabled: true, Word: "york", ShortGloss: "English city"},
	})
	got := a.Find("New York and york")
	want := []Match{
		{Start: 0, End: 8, Surface: "New York", Gloss: Gloss{Short: "city"}},
		{Start: 13, End: 17, Surface: "york", Gloss: Gloss{Short: "English city"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Find = %+v, want %+v", got, want)
	}
	if over := a.FindOverlapping("New York and york"); len(over) != 3 {
		t.Errorf("FindOverlapping = %+v, want 3 matches", over)
	}
}

func TestAutomatonKeywordUnicodeBoundaries(t *testing.T) {
	a := Build("en", runWords())
	got := a.Find("«run» and “ran”")
	if len(got) != 2 || got[0].Surface != "run" || got[1].Surface != "ran" {
		t.Fatalf("expected run and ran between non-ASCII punctuation, got %+v", got)
	}
	if got[0].Start != len("«") {
		t.Errorf("run starts at %d, want %d", got[0].Start, len("«"))
	}
	if got := a.Find("éran runé"); len(got) != 0 {
		t.Errorf("expected no match next to accented letters, got %+v", got)
	}
}

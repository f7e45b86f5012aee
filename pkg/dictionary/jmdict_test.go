package dictionary

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadJMdictSimplified(t *testing.T) {
	dir := t.TempDir()
	wrapped := filepath.Join(dir, "wrapped.json")
	bare := filepath.Join(dir, "bare.json")
	entry := `{"id":"1","kanji":[{"text":"猫","common":true}],"kana":[{"text":"ネコ"}],"sense":[{"partOfSpeech":["n"],"gloss":[{"lang":"eng","text":"cat"},{"lang":"ger","text":"Katze"}]},{"gloss":[{"text":"shamisen"}]}]}`
	if err := os.WriteFile(wrapped, []byte(`{"words":[`+entry+`]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bare, []byte(`[`+entry+`]`), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{wrapped, bare} {
		entries, err := LoadJMdictSimplified(p)
		if err != nil {
			t.Fatalf("LoadJMdictSimplified(%s): %v", p, err)
		}
		if len(entries) != 1 || entries[0].Kanji[0].Text != "猫" {
			t.Errorf("unexpected entries %+v", entries)
		}
	}
}

func TestJMdictWords(t *testing.T) {
	entries := []JMdictEntry{
		{
			Kanji: []JMdictElement{{Text: "猫"}},
			Kana:  []JMdictElement{{Text: "ネコ"}},
			Sense: []JMdictSense{
				{PartOfSpeech: []string{"n"}, Gloss: []JMdictGloss{{Text: "cat", Lang: "eng"}, {Text: "Katze", Lang: "ger"}}},
				{Gloss: []JMdictGloss{{Text: "shamisen"}}},
			},
		},
		{Kana: []JMdictElement{{Text: "テスト"}}, Sense: []JMdictSense{{Gloss: []JMdictGloss{{Text: "test, exam"}}}}},
		{Kanji: []JMdictElement{{Text: "空"}}},
	}
	words := JMdictWords(entries)
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %+v", words)
	}
	cat := words[0]
	if !cat.Enabled || cat.Word != "猫" || cat.FullGloss != "cat" || cat.POS != "n" {
		t.Errorf("unexpected word %+v", cat)
	}
	if len(cat.Forms) != 2 || cat.Forms[0] != "ネコ" || cat.Forms[1] != "ねこ" {
		t.Errorf("Forms = %v", cat.Forms)
	}
	if words[1].Enabled {
		t.Error("second sense should be disabled")
	}
	if words[2].Word != "テスト" || words[2].ShortGloss != "test" {
		t.Errorf("unexpected kana word %+v", words[2])
	}

	a := Build("ja", words)
	if g, ok := a.Lookup("ねこ"); !ok || g.Short != "cat" {
		t.Errorf("Lookup(ねこ) = %+v, %v", g, ok)
	}
}

func TestToHiragana(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"ア", "あ"},
		{"カ", "か"},
		{"ガ", "が"},
		{"パ", "ぱ"},
		{"ン", "ん"},
		{"ー", "ー"},
		{"abc", "abc"},
		{"あいう", "あいう"},
	}
	for _, tt := range tests {
		if got := ToHiragana(tt.in); got != tt.out {
			t.Errorf("ToHiragana(%q) = %q; want %q", tt.in, got, tt.out)
		}
	}
}

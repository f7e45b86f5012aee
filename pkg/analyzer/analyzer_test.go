package analyzer

import (
	"context"
	"testing"

	"github.com/japaniel/wordray/pkg/entity"
	"github.com/japaniel/wordray/pkg/lemma"
	"github.com/japaniel/wordray/pkg/offset"
	"github.com/japaniel/wordray/pkg/segment"
)

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New()
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}
	return a
}

func TestAnalyzePositions(t *testing.T) {
	a := newAnalyzer(t)
	text := "私は学校に行った。"
	tokens := a.Analyze(text)
	if len(tokens) == 0 {
		t.Fatal("No tokens found")
	}
	for _, tok := range tokens {
		if got := text[tok.Start:tok.End]; got != tok.Surface {
			t.Errorf("token %q has span %d:%d covering %q", tok.Surface, tok.Start, tok.End, got)
		}
	}

	found := false
	for _, tok := range tokens {
		if tok.Surface == "行っ" {
			found = true
			if tok.BaseForm != "行く" {
				t.Errorf("base form of 行っ = %q, want 行く", tok.BaseForm)
			}
			if tok.PrimaryPOS != "動詞" {
				t.Errorf("POS of 行っ = %q, want 動詞", tok.PrimaryPOS)
			}
		}
	}
	if !found {
		t.Error("Expected to find token 行っ")
	}
}

func TestTokensSkipFunctionWords(t *testing.T) {
	a := newAnalyzer(t)
	for _, tok := range a.Tokens("私は学校に行った。") {
		switch tok.Surface {
		case "は", "に", "た", "。":
			t.Errorf("function word %q was returned", tok.Surface)
		}
	}
}

type memSink []lemma.Entry

func (s *memSink) Insert(e lemma.Entry) error {
	*s = append(*s, e)
	return nil
}

func TestIndexJapaneseSegment(t *testing.T) {
	a := newAnalyzer(t)
	table := lemma.NewTable(map[string]lemma.Payload{"行く": {Difficulty: 1, SenseID: 7}, "学校": {Difficulty: 2, SenseID: 8}})
	ix := lemma.NewIndexer(a, lemma.Identity{Known: table.Has}, table)

	seg := segment.Segment{Start: 100, Raw: []byte("私は学校に行った。"), Unit: offset.Codepoint}
	var sink memSink
	n, err := ix.Index(seg, &sink)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", n, sink)
	}
	if sink[0].Offset != 102 || sink[0].SenseID != 8 {
		t.Errorf("学校 entry = %+v", sink[0])
	}
	if sink[1].Offset != 105 || sink[1].SenseID != 7 {
		t.Errorf("行く entry = %+v", sink[1])
	}
}

func TestTaggerPersonNames(t *testing.T) {
	a := newAnalyzer(t)
	spans, err := Tagger{a}.Tag(context.Background(), "山田太郎は東京に住んでいる。")
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	var person, place bool
	for _, s := range spans {
		switch {
		case s.Label == entity.LabelPerson && s.Text == "山田太郎":
			person = true
		case s.Label == entity.LabelGPE && s.Text == "東京":
			place = true
		}
	}
	if !person || !place {
		t.Errorf("unexpected spans %+v", spans)
	}
}

func TestTaggerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Tagger{newAnalyzer(t)}).Tag(ctx, "東京"); err == nil {
		t.Error("expected context error")
	}
}

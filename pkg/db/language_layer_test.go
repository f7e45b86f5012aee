package db

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/japaniel/wordray/pkg/lemma"
)

func TestLanguageLayerCommitOnce(t *testing.T) {
	path := LanguageLayerPath(filepath.Join(t.TempDir(), "Oz.kfx"), "en", "B00TEST")
	ll, err := CreateLanguageLayer(path, "en")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	entries := []lemma.Entry{
		{Offset: 20, End: 25, Payload: lemma.Payload{Difficulty: 2, SenseID: 7}},
		{Offset: 5, End: 9, Payload: lemma.Payload{Difficulty: 1, SenseID: 3}},
		{Offset: 5, End: 9, Payload: lemma.Payload{Difficulty: 1, SenseID: 3}},
	}
	for _, e := range entries {
		if err := ll.Insert(e); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := ll.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := ll.Insert(entries[0]); !errors.Is(err, ErrClosed) {
		t.Errorf("insert after commit: got %v, want ErrClosed", err)
	}

	glosses, err := ReadGlosses(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(glosses) != 2 {
		t.Fatalf("expected 2 glosses, got %+v", glosses)
	}
	if glosses[0] != (Gloss{Start: 5, End: 9, Difficulty: 1, SenseID: 3}) {
		t.Errorf("unexpected first gloss %+v", glosses[0])
	}
}

func TestLanguageLayerDiscard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ll.kll")
	ll, err := CreateLanguageLayer(path, "en")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ll.Insert(lemma.Entry{Offset: 1, End: 4}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := ll.Discard(); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file should be removed, stat err = %v", err)
	}
}

func TestLanguageLayerReplacesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ll.kll")
	for i := 0; i < 2; i++ {
		ll, err := CreateLanguageLayer(path, "en")
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if err := ll.Insert(lemma.Entry{Offset: 10 * (i + 1), End: 10*(i+1) + 3}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := ll.Commit(); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}
	glosses, err := ReadGlosses(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(glosses) != 1 || glosses[0].Start != 20 {
		t.Errorf("expected only the second run's gloss, got %+v", glosses)
	}
}

package dictionary

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Source describes where the words of a dictionary come from.
type Source struct {
	// Lang is the ISO 639-1 code of the book language.
	Lang string
	// GlossLang is the ISO 639-1 code of the definitions.
	GlossLang string
	// KaikkiName is the English language name used by kaikki.org.
	KaikkiName string
	// KindleLemmas, when set, restricts enabled words to this set.
	KindleLemmas map[string]bool
}

// BuildOptions controls a dictionary build.
type BuildOptions struct {
	Dir      string
	Progress ProgressFunc
	Logger   *slog.Logger
	// KeepDownload keeps the raw dump after extraction.
	KeepDownload bool
}

// BuildFromSource downloads the dictionary for src when needed, extracts it,
// compiles the automaton and saves it at DumpPath. Japanese uses JMdict
// glossed in English; every other language uses Wiktionary.
func BuildFromSource(ctx context.Context, src Source, opts BuildOptions) (*Automaton, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	report := func(f float64, msg string) {
		if opts.Progress != nil {
			opts.Progress(f, msg)
		}
	}

	var (
		words []Word
		err   error
	)
	if src.Lang == "ja" && src.GlossLang == "en" {
		words, err = jmdictWords(ctx, opts.Dir, logger)
	} else {
		words, err = wiktionaryWords(ctx, src, opts, report)
	}
	if err != nil {
		return nil, err
	}

	report(0, "Converting dictionary")
	a := Build(src.Lang, words)
	path := DumpPath(opts.Dir, src.Lang, src.GlossLang)
	if err := a.Save(path); err != nil {
		return nil, err
	}
	logger.Info("dictionary built", "lang", src.Lang, "gloss", src.GlossLang, "surfaces", a.Len(), "path", path)
	return a, nil
}

func jmdictWords(ctx context.Context, dir string, logger *slog.Logger) ([]Word, error) {
	path := filepath.Join(dir, "ja", "jmdict-eng-common.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := EnsureJMdict(ctx, path, logger); err != nil {
		return nil, err
	}
	entries, err := LoadJMdictSimplified(path)
	if err != nil {
		return nil, err
	}
	return JMdictWords(entries), nil
}

func wiktionaryWords(ctx context.Context, src Source, opts BuildOptions, report ProgressFunc) ([]Word, error) {
	if src.KaikkiName == "" {
		return nil, fmt.Errorf("dictionary: no kaikki.org language name for %q", src.Lang)
	}
	path, err := EnsureWiktionary(ctx, filepath.Join(opts.Dir, src.Lang), src.KaikkiName, report)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	report(0, "Extracting Wiktionary file")
	words, err := ExtractWiktionary(f, src.Lang, src.KindleLemmas)
	f.Close()
	if err != nil {
		return nil, err
	}
	if !opts.KeepDownload {
		os.Remove(path)
	}
	return words, nil
}

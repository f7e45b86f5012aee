package dictionary

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// formatVersion is bumped whenever the persisted layout changes.
const formatVersion = 1

// ErrStaleAutomaton is returned by Load for files written by an older layout.
var ErrStaleAutomaton = errors.New("dictionary: automaton file has an unsupported version")

type automatonFile struct {
	Version  int      `msgpack:"version"`
	Lang     string   `msgpack:"lang"`
	Surfaces []string `msgpack:"surfaces"`
	Glosses  []Gloss  `msgpack:"glosses"`
}

// DumpPath is where the automaton for a lemma and gloss language pair lives
// under dir.
func DumpPath(dir, lang, glossLang string) string {
	return filepath.Join(dir, lang, fmt.Sprintf("wiktionary_%s_%s.automaton", lang, glossLang))
}

// Save writes the automaton to path, replacing any previous file.
func (a *Automaton) Save(path string) error {
	data, err := msgpack.Marshal(automatonFile{
		Version:  formatVersion,
		Lang:     a.lang,
		Surfaces: a.surfaces,
		Glosses:  a.glosses,
	})
	if err != nil {
		return fmt.Errorf("dictionary: encode automaton: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, enc.EncodeAll(data, nil), 0o644); err != nil {
		return fmt.Errorf("dictionary: write automaton: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load reads an automaton written by Save and recompiles its matcher.
func Load(path string) (*Automaton, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	data, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("dictionary: decompress %s: %w", path, err)
	}
	var f automatonFile
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("dictionary: decode %s: %w", path, err)
	}
	if f.Version != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrStaleAutomaton, f.Version)
	}
	if len(f.Surfaces) != len(f.Glosses) {
		return nil, fmt.Errorf("dictionary: decode %s: %d surfaces but %d glosses", path, len(f.Surfaces), len(f.Glosses))
	}
	a := &Automaton{
		lang:     f.Lang,
		strategy: strategyFor(f.Lang),
		surfaces: f.Surfaces,
		glosses:  f.Glosses,
		index:    make(map[string]int, len(f.Surfaces)),
	}
	for i, s := range f.Surfaces {
		a.index[a.key(s)] = i
	}
	a.compile()
	return a, nil
}

package lemma

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Payload is the language layer record of a lemma.
type Payload struct {
	Difficulty int
	SenseID    int
}

// Table maps lemmas to payloads. It is read-only after loading.
type Table struct {
	m map[string]Payload
}

// NewTable builds a table from a map.
func NewTable(m map[string]Payload) *Table {
	cp := make(map[string]Payload, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return &Table{m: cp}
}

// ReadTable parses {"lemma": [difficulty, sense_id], ...}.
func ReadTable(r io.Reader) (*Table, error) {
	var raw map[string][]int
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("lemma: decode table: %w", err)
	}
	t := &Table{m: make(map[string]Payload, len(raw))}
	for lemma, v := range raw {
		if len(v) != 2 {
			return nil, fmt.Errorf("lemma: entry %q: want [difficulty, sense_id], got %v", lemma, v)
		}
		t.m[lemma] = Payload{Difficulty: v[0], SenseID: v[1]}
	}
	return t, nil
}

// LoadTable reads a table file.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTable(f)
}

// Get returns the payload of lemma.
func (t *Table) Get(lemma string) (Payload, bool) {
	p, ok := t.m[lemma]
	return p, ok
}

// Has reports whether lemma is in the table.
func (t *Table) Has(lemma string) bool {
	_, ok := t.m[lemma]
	return ok
}

// Len returns the number of lemmas.
func (t *Table) Len() int { return len(t.m) }

// Lemmas returns the set of lemmas, for gating dictionary extraction.
func (t *Table) Lemmas() map[string]bool {
	out := make(map[string]bool, len(t.m))
	for k := range t.m {
		out[k] = true
	}
	return out
}

package lemma

import (
	"github.com/japaniel/wordray/pkg/segment"
)

// Entry is one language layer record.
type Entry struct {
	// Offset is the absolute position of the word in the book, in the unit
	// of its segment.
	Offset int
	// End is the exclusive end of the word in the same unit.
	End int
	Payload
}

// Sink receives entries. The caller commits it once per book.
type Sink interface {
	Insert(e Entry) error
}

// Indexer finds lemma records in segments.
type Indexer struct {
	tokenizer Tokenizer
	canon     Canonicalizer
	table     *Table
}

// NewIndexer returns an indexer. A nil tokenizer means AlphaRuns and a nil
// canonicalizer means Morphy over table.
func NewIndexer(tok Tokenizer, canon Canonicalizer, table *Table) *Indexer {
	if tok == nil {
		tok = AlphaRuns{}
	}
	if canon == nil {
		canon = NewMorphy(table)
	}
	return &Indexer{tokenizer: tok, canon: canon, table: table}
}

// Index writes an entry for every token of seg whose lemma is in the table
// and returns how many were written. Misses are skipped.
func (ix *Indexer) Index(seg segment.Segment, sink Sink) (int, error) {
	text := seg.Text()
	n := 0
	for _, tok := range ix.tokenizer.Tokens(text) {
		lemma, ok := ix.canon.Canonicalize(tok.Base)
		if !ok {
			continue
		}
		p, ok := ix.table.Get(lemma)
		if !ok {
			continue
		}
		e := Entry{Offset: seg.Absolute(tok.Start), End: seg.Absolute(tok.End), Payload: p}
		if err := sink.Insert(e); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

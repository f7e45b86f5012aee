package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/japaniel/wordray/pkg/lemma"
)

// ErrClosed is returned when writing to a committed or discarded store.
var ErrClosed = errors.New("db: store is closed")

// LanguageLayer collects gloss records for one book inside a single
// transaction. It implements lemma.Sink.
type LanguageLayer struct {
	path string
	conn *sql.DB
	tx   *sql.Tx
	stmt *sql.Stmt
	n    int
}

var _ lemma.Sink = (*LanguageLayer)(nil)

// CreateLanguageLayer creates the language layer at path, replacing any
// previous one, and opens its transaction.
func CreateLanguageLayer(path, lang string) (*LanguageLayer, error) {
	conn, err := create(path, languageLayerSQL)
	if err != nil {
		return nil, err
	}
	tx, err := conn.Begin()
	if err != nil {
		conn.Close()
		return nil, err
	}
	ll := &LanguageLayer{path: path, conn: conn, tx: tx}
	if err := setMetadata(tx, map[string]string{
		"sourceLanguage":  lang,
		"targetLanguages": lang,
		"sidecarFormat":   "1.0",
	}); err != nil {
		ll.Discard()
		return nil, err
	}
	ll.stmt, err = tx.Prepare(`INSERT OR IGNORE INTO glosses (start, end, difficulty, sense_id, low_confidence) VALUES (?, ?, ?, ?, 0)`)
	if err != nil {
		ll.Discard()
		return nil, err
	}
	return ll, nil
}

func setMetadata(q DBExecutor, kv map[string]string) error {
	for k, v := range kv {
		if _, err := q.Exec(`INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("db: metadata %s: %w", k, err)
		}
	}
	return nil
}

// Insert adds one gloss record.
func (ll *LanguageLayer) Insert(e lemma.Entry) error {
	if ll.tx == nil {
		return ErrClosed
	}
	if _, err := ll.stmt.Exec(e.Offset, e.End, e.Difficulty, e.SenseID); err != nil {
		return fmt.Errorf("db: insert gloss at %d: %w", e.Offset, err)
	}
	ll.n++
	return nil
}

// Len returns the number of records inserted so far.
func (ll *LanguageLayer) Len() int { return ll.n }

// Commit commits every record at once and closes the database.
func (ll *LanguageLayer) Commit() error {
	if ll.tx == nil {
		return ErrClosed
	}
	ll.stmt.Close()
	err := ll.tx.Commit()
	ll.tx = nil
	if cerr := ll.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

// Discard rolls back and removes the file. It is a no-op after Commit.
func (ll *LanguageLayer) Discard() error {
	if ll.tx == nil {
		return nil
	}
	if ll.stmt != nil {
		ll.stmt.Close()
	}
	ll.tx.Rollback()
	ll.tx = nil
	ll.conn.Close()
	if ll.path == ":memory:" {
		return nil
	}
	return os.Remove(ll.path)
}

// Gloss is a stored language layer record.
type Gloss struct {
	Start, End int
	Difficulty int
	SenseID    int
}

// ReadGlosses returns the gloss records of an existing language layer,
// ordered by start.
func ReadGlosses(path string) ([]Gloss, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return queryGlosses(conn)
}

func queryGlosses(q DBExecutor) ([]Gloss, error) {
	rows, err := q.Query(`SELECT start, end, difficulty, sense_id FROM glosses ORDER BY start`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Gloss
	for rows.Next() {
		var g Gloss
		if err := rows.Scan(&g.Start, &g.End, &g.Difficulty, &g.SenseID); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

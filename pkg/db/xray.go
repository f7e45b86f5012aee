package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/japaniel/wordray/pkg/entity"
)

// Entity types of the X-Ray database.
const (
	typePerson = 1
	typeTerm   = 2
)

// Description is the info card text of an entity.
type Description struct {
	Text   string
	Source string
}

// XRayBook is everything written to an X-Ray database.
type XRayBook struct {
	Entities    []entity.Entity
	Occurrences []entity.Occurrence
	// Descriptions are keyed by entity id. Entities without one fall back
	// to their quote.
	Descriptions map[int]Description
	// End is the last offset of the book text.
	End int
}

// WriteXRay creates the X-Ray database at path, replacing any previous one,
// and writes book in a single transaction.
func WriteXRay(path string, book XRayBook) error {
	conn, err := create(path, xraySQL)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	if err := writeXRay(tx, book); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func writeXRay(q DBExecutor, book XRayBook) error {
	counts := make(map[int]int, len(book.Entities))
	first := make(map[int]entity.Occurrence, len(book.Entities))
	for _, o := range book.Occurrences {
		if _, ok := first[o.EntityID]; !ok {
			first[o.EntityID] = o
		}
		counts[o.EntityID]++
		if _, err := q.Exec(`INSERT INTO occurrence (entity, start, length) VALUES (?, ?, ?)`,
			o.EntityID, o.Start, o.End-o.Start); err != nil {
			return fmt.Errorf("db: insert occurrence: %w", err)
		}
	}

	var people, terms int
	for _, e := range book.Entities {
		typ := typeTerm
		if entity.IsPerson(e.Label) {
			typ = typePerson
			people++
		} else {
			terms++
		}
		if _, err := q.Exec(`INSERT INTO entity (id, label, ner_label, type, count, has_info_card) VALUES (?, ?, ?, ?, ?, 1)`,
			e.ID, e.Key, e.Label, typ, counts[e.ID]); err != nil {
			return fmt.Errorf("db: insert entity %d: %w", e.ID, err)
		}

		desc, ok := book.Descriptions[e.ID]
		if !ok {
			desc = Description{Text: e.Quote}
		}
		if _, err := q.Exec(`INSERT INTO entity_description (text, source_wildcard, source, entity) VALUES (?, ?, ?, ?)`,
			desc.Text, e.Key, nullable(desc.Source), e.ID); err != nil {
			return fmt.Errorf("db: insert description %d: %w", e.ID, err)
		}

		if o, ok := first[e.ID]; ok {
			if _, err := q.Exec(`INSERT INTO excerpt (id, start, length, image, related_entities, goto) VALUES (?, ?, ?, '', ?, NULL)`,
				e.ID, o.Start, utf8.RuneCountInString(e.Quote), strconv.Itoa(e.ID)); err != nil {
				return fmt.Errorf("db: insert excerpt %d: %w", e.ID, err)
			}
		}
	}

	_, err := q.Exec(`INSERT INTO book_metadata (srl, erl, has_images, has_excerpts, show_spoilers_default, num_people, num_terms, num_images, preview_images)
		VALUES (0, ?, 0, ?, 1, ?, ?, 0, NULL)`,
		book.End, boolInt(len(first) > 0), people, terms)
	return err
}

// nullable returns nil for an empty string.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// XRayEntity is an entity row read back from an X-Ray database.
type XRayEntity struct {
	ID          int
	Label       string
	Type        int
	Count       int
	Description string
}

// ReadXRayEntities returns the entities of an X-Ray database in id order.
func ReadXRayEntities(path string) ([]XRayEntity, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.Query(`SELECT e.id, e.label, e.type, e.count, IFNULL(d.text, '')
		FROM entity e LEFT JOIN entity_description d ON d.entity = e.id ORDER BY e.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []XRayEntity
	for rows.Next() {
		var e XRayEntity
		if err := rows.Scan(&e.ID, &e.Label, &e.Type, &e.Count, &e.Description); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

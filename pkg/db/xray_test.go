package db

import (
	"path/filepath"
	"testing"

	"github.com/japaniel/wordray/pkg/entity"
)

func TestWriteXRay(t *testing.T) {
	path := XRayPath(filepath.Join(t.TempDir(), "Oz.azw3"), "B00TEST")
	book := XRayBook{
		Entities: []entity.Entity{
			{ID: 0, Key: "Dorothy", Label: entity.LabelPerson, Quote: "Dorothy lived in Kansas."},
			{ID: 1, Key: "Kansas", Label: entity.LabelGPE, Quote: "Kansas was grey."},
		},
		Occurrences: []entity.Occurrence{
			{Start: 100, End: 107, Text: "Dorothy", EntityID: 0},
			{Start: 117, End: 123, Text: "Kansas", EntityID: 1},
			{Start: 300, End: 307, Text: "Dorothy", EntityID: 0},
		},
		Descriptions: map[int]Description{1: {Text: "Kansas is a state.", Source: "Wikipedia"}},
		End:          1000,
	}
	if err := WriteXRay(path, book); err != nil {
		t.Fatalf("WriteXRay: %v", err)
	}

	ents, err := ReadXRayEntities(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(ents) != 2 {
		t.Fatalf("expected 2 entities, got %+v", ents)
	}
	if ents[0] != (XRayEntity{ID: 0, Label: "Dorothy", Type: typePerson, Count: 2, Description: "Dorothy lived in Kansas."}) {
		t.Errorf("unexpected person row %+v", ents[0])
	}
	if ents[1].Type != typeTerm || ents[1].Count != 1 || ents[1].Description != "Kansas is a state." {
		t.Errorf("unexpected term row %+v", ents[1])
	}

	conn := setupTestDB(t, xraySQL)
	defer conn.Close()
	if err := writeXRay(conn, book); err != nil {
		t.Fatalf("writeXRay: %v", err)
	}
	var people, terms int
	if err := conn.QueryRow(`SELECT num_people, num_terms FROM book_metadata`).Scan(&people, &terms); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if people != 1 || terms != 1 {
		t.Errorf("people=%d terms=%d", people, terms)
	}
}

// Package db writes the per-book sqlite sidecar stores read by Kindle
// devices: the language layer of Word Wise glosses and the X-Ray entity
// database.
package db

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

var (
	//go:embed schema/language_layer.sql
	languageLayerSQL string
	//go:embed schema/xray.sql
	xraySQL string
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// InitDB runs the statements of schema, separated by semicolons.
func InitDB(db DBExecutor, schema string) error {
	for _, s := range strings.Split(schema, ";") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("db: migrate: %w", err)
		}
	}
	return nil
}

// create opens a fresh database at path, replacing any previous file, and
// applies schema. ":memory:" is accepted for tests.
func create(path, schema string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// Ensure single connection so ":memory:" stays one database.
	conn.SetMaxOpenConns(1)
	if err := InitDB(conn, schema); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// SidecarDir is the <stem>.sdr directory next to a Kindle book.
func SidecarDir(bookPath string) string {
	stem := strings.TrimSuffix(filepath.Base(bookPath), filepath.Ext(bookPath))
	return filepath.Join(filepath.Dir(bookPath), stem+".sdr")
}

// LanguageLayerPath is the language layer file of a book.
func LanguageLayerPath(bookPath, lang, asin string) string {
	return filepath.Join(SidecarDir(bookPath), fmt.Sprintf("LanguageLayer.%s.%s.kll", lang, asin))
}

// XRayPath is the X-Ray database file of a book.
func XRayPath(bookPath, asin string) string {
	return filepath.Join(SidecarDir(bookPath), fmt.Sprintf("XRAY.entities.%s.asc", asin))
}

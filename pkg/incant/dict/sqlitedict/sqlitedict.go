// Package sqlitedict is a phonetic dictionary backed by SQLite,
// suitable for full pronunciation corpora that should not be held in
// a YAML file. It satisfies phonics.PhoneticDictionary.
package sqlitedict

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Dict is a SQLite-backed pronunciation dictionary.
type Dict struct {
	db *sql.DB
}

// Open opens (creating if necessary) a dictionary database with WAL
// mode enabled.
func Open(ctx context.Context, path string) (*Dict, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL keeps concurrent readers cheap.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Dict{db: db}, nil
}

// Close closes the database connection.
func (d *Dict) Close() error {
	return d.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS pronunciations (
	word TEXT PRIMARY KEY,
	phonemes TEXT NOT NULL
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Upsert stores a pronunciation. Phonemes are space-joined in the
// phonemes column.
func (d *Dict) Upsert(ctx context.Context, word string, phonemes []string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || len(phonemes) == 0 {
		return nil
	}
	_, err := d.db.ExecContext(ctx, `
INSERT INTO pronunciations (word, phonemes) VALUES (?, ?)
ON CONFLICT(word) DO UPDATE SET phonemes = excluded.phonemes`,
		word, strings.Join(phonemes, " "))
	return err
}

// LookupContext returns the phoneme sequence for a word.
func (d *Dict) LookupContext(ctx context.Context, word string) ([]string, bool, error) {
	var joined string
	err := d.db.QueryRowContext(ctx,
		"SELECT phonemes FROM pronunciations WHERE word = ?",
		strings.ToLower(word)).Scan(&joined)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return strings.Fields(joined), true, nil
}

// Lookup satisfies phonics.PhoneticDictionary. The classifier's
// lookup surface carries no context or error channel, so query
// failures report as a miss and the caller degrades to the heuristic
// path.
func (d *Dict) Lookup(word string) ([]string, bool) {
	phs, ok, err := d.LookupContext(context.Background(), word)
	if err != nil {
		return nil, false
	}
	return phs, ok
}

// Count returns the number of stored pronunciations.
func (d *Dict) Count(ctx context.Context) (int64, error) {
	var n int64
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pronunciations").Scan(&n)
	return n, err
}

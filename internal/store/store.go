// Package store implements the WorkListStore capability over SQLite,
// persisting the filetable schema the core's work list is built on.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"fileshredder_enterprise/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS filetable (
	hash     TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	entropy  REAL NOT NULL,
	flags    INTEGER NOT NULL
)`

// Store is the SQLite-backed WorkListStore implementation.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures the filetable schema exists, retrying once on failure.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	if err := ensureSchema(db); err != nil {
		if err2 := ensureSchema(db); err2 != nil {
			db.Close()
			return nil, fmt.Errorf("store: create schema after 2 attempts: %w", err2)
		}
	}

	return &Store{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// ReadAll returns every row of the work list.
func (s *Store) ReadAll() ([]model.WorkRecord, error) {
	rows, err := s.db.Query(`SELECT hash, filename, entropy, flags FROM filetable`)
	if err != nil {
		return nil, fmt.Errorf("store: read table: %w", err)
	}
	defer rows.Close()

	var records []model.WorkRecord
	for rows.Next() {
		var rec model.WorkRecord
		var flags int64
		if err := rows.Scan(&rec.Key, &rec.Path, &rec.Entropy, &flags); err != nil {
			return nil, fmt.Errorf("store: scan row: %w", err)
		}
		rec.Flags = model.FileFlags(flags)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate rows: %w", err)
	}
	return records, nil
}

// Insert adds a new row with entropy initialized to the "unknown" sentinel.
func (s *Store) Insert(key model.FileKey, path string, flags model.FileFlags) error {
	_, err := s.db.Exec(`INSERT INTO filetable (hash, filename, entropy, flags) VALUES (?, ?, ?, ?)`,
		string(key), path, model.UnknownEntropy, int64(flags))
	if err != nil {
		return fmt.Errorf("store: insert %s: %w", path, err)
	}
	return nil
}

// UpdateEntropy writes a freshly computed entropy value for key.
func (s *Store) UpdateEntropy(key model.FileKey, entropy float64) error {
	_, err := s.db.Exec(`UPDATE filetable SET entropy = ? WHERE hash = ?`, entropy, string(key))
	if err != nil {
		return fmt.Errorf("store: update entropy for %s: %w", key, err)
	}
	return nil
}

// Delete removes the row keyed by key.
func (s *Store) Delete(key model.FileKey) error {
	_, err := s.db.Exec(`DELETE FROM filetable WHERE hash = ?`, string(key))
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", key, err)
	}
	return nil
}

// DropTable empties the work list entirely.
func (s *Store) DropTable() error {
	_, err := s.db.Exec(`DROP TABLE IF EXISTS filetable`)
	if err != nil {
		return fmt.Errorf("store: drop table: %w", err)
	}
	return ensureSchema(s.db)
}

// DeleteUserRows removes every row whose SystemAdded bit is clear (flags
// 0 or 2 in the bitfield layout: IsFile set or not, SystemAdded clear).
func (s *Store) DeleteUserRows() error {
	_, err := s.db.Exec(`DELETE FROM filetable WHERE flags IN (0, 2)`)
	if err != nil {
		return fmt.Errorf("store: delete user rows: %w", err)
	}
	return nil
}

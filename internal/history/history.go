// Package history records which subjects previous runs used, backed by a
// local SQLite database. The recent list is fed back into subject
// suggestion so scheduled runs avoid repeating themselves.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the subject history backed by a single SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS subjects (
		id integer PRIMARY KEY AUTOINCREMENT,
		name text NOT NULL,
		used_at integer NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	return &Store{db: db}, nil
}

// Add records that a run used the given subject.
func (s *Store) Add(subject string) error {
	_, err := s.db.Exec(
		`INSERT INTO subjects (name, used_at) VALUES (?, ?)`,
		subject, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record subject: %w", err)
	}
	return nil
}

// Recent returns up to limit distinct subjects, most recent first. A
// non-positive limit returns all of them.
func (s *Store) Recent(limit int) ([]string, error) {
	query := `SELECT name FROM subjects GROUP BY name ORDER BY MAX(used_at) DESC, MAX(id) DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read subject history: %w", err)
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		subjects = append(subjects, name)
	}
	return subjects, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

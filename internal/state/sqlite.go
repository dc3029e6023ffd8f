package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists the generational sets and markers in a single SQLite
// database. A set is replaced inside one transaction, which gives the same
// all-or-nothing visibility as the file backend's rename.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the state database under dir.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "reaper.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS sets (
		name TEXT NOT NULL,
		id   TEXT NOT NULL,
		PRIMARY KEY (name, id)
	);
	CREATE TABLE IF NOT EXISTS set_names (
		name TEXT PRIMARY KEY
	);
	CREATE TABLE IF NOT EXISTS markers (
		name       TEXT PRIMARY KEY,
		touched_at INTEGER NOT NULL
	);`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create state tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// ReadSet returns the named identity set, or (nil, nil) if the set has never
// been written. An empty set that was written is distinguished from an absent
// one via the set_names table.
func (s *SQLiteStore) ReadSet(name string) ([]string, error) {
	var known int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM set_names WHERE name = ?`, name).Scan(&known)
	if err != nil {
		return nil, fmt.Errorf("failed to query state set %s: %w", name, err)
	}
	if known == 0 {
		return nil, nil
	}

	rows, err := s.db.Query(`SELECT id FROM sets WHERE name = ? ORDER BY id`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query state set %s: %w", name, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan state set %s: %w", name, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read state set %s: %w", name, err)
	}
	return ids, nil
}

// WriteSet atomically replaces the named set.
func (s *SQLiteStore) WriteSet(name string, ids []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for state set %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sets WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to clear state set %s: %w", name, err)
	}
	for _, id := range ids {
		if _, err := tx.Exec(`INSERT INTO sets (name, id) VALUES (?, ?)`, name, id); err != nil {
			return fmt.Errorf("failed to write state set %s: %w", name, err)
		}
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO set_names (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("failed to record state set %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state set %s: %w", name, err)
	}
	return nil
}

// LastRun returns the marker timestamp, or the zero time if absent.
func (s *SQLiteStore) LastRun(name string) (time.Time, error) {
	var unix int64
	err := s.db.QueryRow(`SELECT touched_at FROM markers WHERE name = ?`, name).Scan(&unix)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query marker %s: %w", name, err)
	}
	return time.Unix(unix, 0), nil
}

// Touch creates or updates the marker to the current time.
func (s *SQLiteStore) Touch(name string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO markers (name, touched_at) VALUES (?, ?)`,
		name, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to touch marker %s: %w", name, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

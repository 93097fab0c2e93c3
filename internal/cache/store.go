// Package cache persists per-file analysis metadata between runs so that
// unchanged files are not re-read on every generation.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS file_metadata (
	path TEXT PRIMARY KEY,
	size_bytes INTEGER NOT NULL,
	mod_time INTEGER NOT NULL,
	line_count INTEGER NOT NULL,
	language TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Store is a sqlite-backed metadata cache keyed by relative path. An entry
// is valid only while the file's size and mtime both match.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init cache schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Lookup returns the cached line count and language for a file, or ok=false
// when the entry is missing or stale.
func (s *Store) Lookup(relPath string, sizeBytes int64, modTime time.Time) (int, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lineCount int
	var language string

	err := s.db.QueryRow(`
		SELECT line_count, language FROM file_metadata
		WHERE path = ? AND size_bytes = ? AND mod_time = ?
	`, relPath, sizeBytes, modTime.UnixNano()).Scan(&lineCount, &language)

	if err != nil {
		return 0, "", false
	}

	return lineCount, language, true
}

func (s *Store) Store(relPath string, sizeBytes int64, modTime time.Time, lineCount int, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO file_metadata (path, size_bytes, mod_time, line_count, language, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET
			size_bytes = excluded.size_bytes,
			mod_time = excluded.mod_time,
			line_count = excluded.line_count,
			language = excluded.language,
			updated_at = CURRENT_TIMESTAMP
	`, relPath, sizeBytes, modTime.UnixNano(), lineCount, language)

	if err != nil {
		return fmt.Errorf("store metadata: %w", err)
	}

	return nil
}

// Purge drops entries whose paths are no longer present in the latest walk.
func (s *Store) Purge(keep map[string]bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT path FROM file_metadata")
	if err != nil {
		return fmt.Errorf("list cached paths: %w", err)
	}

	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return fmt.Errorf("scan cached path: %w", err)
		}
		if !keep[p] {
			stale = append(stale, p)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, p := range stale {
		if _, err := s.db.Exec("DELETE FROM file_metadata WHERE path = ?", p); err != nil {
			return fmt.Errorf("purge %s: %w", p, err)
		}
	}

	return nil
}

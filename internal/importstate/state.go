// Package importstate remembers which export files have already been imported
// so repeated runs over the same directory only pick up new files.
package importstate

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DB is the SQLite state database.
type DB struct {
	db *sql.DB
}

// ImportedFile is one recorded import.
type ImportedFile struct {
	Path       string
	Size       int64
	Hash       string
	Sessions   int
	ImportedAt time.Time
}

// DefaultDir is ~/.raptorfit.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".raptorfit"), nil
}

// Open opens (or creates) the state database at dir/state.db.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS imported_files (
		path        TEXT PRIMARY KEY,
		size        INTEGER NOT NULL,
		hash        TEXT NOT NULL,
		sessions    INTEGER NOT NULL DEFAULT 0,
		imported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &DB{db: db}, nil
}

// IsImported reports whether path was imported with the same size and hash.
func (s *DB) IsImported(path string, size int64, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM imported_files WHERE path = ? AND size = ? AND hash = ?`,
		path, size, hash,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking import state for %s: %w", path, err)
	}
	return count > 0, nil
}

// MarkImported records a successful import of path. A changed file replaces
// the previous record.
func (s *DB) MarkImported(path string, size int64, hash string, sessions int) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO imported_files (path, size, hash, sessions, imported_at)
		 VALUES (?, ?, ?, ?, ?)`,
		path, size, hash, sessions, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording import of %s: %w", path, err)
	}
	return nil
}

// List returns every recorded import, most recent first.
func (s *DB) List() ([]ImportedFile, error) {
	rows, err := s.db.Query(
		`SELECT path, size, hash, sessions, imported_at FROM imported_files
		 ORDER BY imported_at DESC, path`)
	if err != nil {
		return nil, fmt.Errorf("listing imported files: %w", err)
	}
	defer rows.Close()

	var files []ImportedFile
	for rows.Next() {
		var f ImportedFile
		if err := rows.Scan(&f.Path, &f.Size, &f.Hash, &f.Sessions, &f.ImportedAt); err != nil {
			return nil, fmt.Errorf("scanning imported file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// Close closes the state database.
func (s *DB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Package prefs persists the user's display preferences. This is the only
// state that outlives a client run; conversations themselves live in memory
// for the session's lifetime.
package prefs

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const darkModeKey = "dark_mode"

// Store is a small key/value preference store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the preference database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences database: %w", err)
	}

	createTable := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT
	);`

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create preferences table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// DarkMode returns the stored dark-mode preference, defaulting to false when
// it has never been set.
func (s *Store) DarkMode() (bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM preferences WHERE key = ?", darkModeKey).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read preference: %w", err)
	}
	return value == "true", nil
}

// SetDarkMode stores the dark-mode preference.
func (s *Store) SetDarkMode(enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO preferences (key, value) VALUES (?, ?)",
		darkModeKey, value,
	)
	if err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}
	return nil
}

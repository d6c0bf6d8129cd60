// Package localstate persists the terminal app's small bits of state
// (consent flag, relay base URL override, saved wishlist) in a local
// SQLite file, standing in for the browser build's localStorage.
package localstate

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

const (
	keyConsent  = "consent"
	keyBaseURL  = "base_url"
	keyWishlist = "wishlist"
)

// Store is a tiny key-value store over SQLite.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the per-user state file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "santaline", "state.db"), nil
}

// Open opens or creates the state database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS state (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`)
	return err
}

// Get returns the stored value, or "" when the key is absent.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set writes or replaces a value.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// ConsentGranted reads the persisted consent flag.
func (s *Store) ConsentGranted() (bool, error) {
	value, err := s.Get(keyConsent)
	if err != nil || value == "" {
		return false, err
	}
	granted, err := strconv.ParseBool(value)
	if err != nil {
		return false, nil
	}
	return granted, nil
}

// SetConsentGranted persists the consent flag. Consent, once granted,
// survives restarts.
func (s *Store) SetConsentGranted(granted bool) error {
	return s.Set(keyConsent, strconv.FormatBool(granted))
}

// BaseURL reads the relay base URL override, "" when unset.
func (s *Store) BaseURL() (string, error) {
	return s.Get(keyBaseURL)
}

// SetBaseURL persists the relay base URL override.
func (s *Store) SetBaseURL(url string) error {
	return s.Set(keyBaseURL, url)
}

// SaveWishlist persists the wishlist snapshot as JSON.
func (s *Store) SaveWishlist(snapshot map[string][]string) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal wishlist: %w", err)
	}
	return s.Set(keyWishlist, string(data))
}

// LoadWishlist returns the persisted wishlist snapshot, nil when unset.
func (s *Store) LoadWishlist() (map[string][]string, error) {
	value, err := s.Get(keyWishlist)
	if err != nil || value == "" {
		return nil, err
	}

	var snapshot map[string][]string
	if err := json.Unmarshal([]byte(value), &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal wishlist: %w", err)
	}
	return snapshot, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store is a directory-rooted JSON file store. Each key maps to one file.
// Writes go through a temp file in the same directory followed by a rename,
// so a reader never observes a half-written value and a crash mid-write
// leaves the previous file intact.
type Store struct {
	dir string
}

// Open prepares a store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("store: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root directory of the store.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load reads the raw bytes stored under key. The second return value is
// false when the key has never been written.
func (s *Store) Load(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load %q: %w", key, err)
	}
	return data, true, nil
}

// SaveAtomic writes data under key using the temp-then-rename discipline.
func (s *Store) SaveAtomic(key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("store: temp for %q: %w", key, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("store: write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: close temp for %q: %w", key, err)
	}
	if err := os.Rename(tmpPath, s.path(key)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: rename %q: %w", key, err)
	}
	return nil
}

// LoadJSON unmarshals the value stored under key into v. It reports false
// when the key does not exist; v is left untouched in that case.
func (s *Store) LoadJSON(key string, v any) (bool, error) {
	data, ok, err := s.Load(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("store: decode %q: %w", key, err)
	}
	return true, nil
}

// SaveJSON marshals v and saves it atomically under key.
func (s *Store) SaveJSON(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}
	return s.SaveAtomic(key, data)
}

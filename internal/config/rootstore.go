package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// RootStore persists the root search path list, the only durable state of
// the resolution core. Exact-match caches and rewrite rules are
// session-scoped and rebuilt by re-probing disk; the roots survive sessions
// in a small TOML file under the user config dir.
type RootStore struct {
	mu   sync.Mutex
	path string
}

// rootsFile is the TOML shape on disk.
type rootsFile struct {
	Roots []string `toml:"roots"`
}

// NewRootStore creates a store backed by the given file path. Empty uses
// the default location under the user config dir.
func NewRootStore(path string) (*RootStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate user config dir: %w", err)
		}
		path = filepath.Join(dir, "sarifnav", "roots.toml")
	}
	return &RootStore{path: path}, nil
}

// Path returns the backing file path (the watcher subscribes to it).
func (s *RootStore) Path() string { return s.path }

// Load reads the persisted root list. A missing file is an empty list.
func (s *RootStore) Load() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *RootStore) loadLocked() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read root paths from %s: %w", s.path, err)
	}
	var f rootsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse root paths from %s: %w", s.path, err)
	}
	return f.Roots, nil
}

// Save replaces the persisted root list atomically (write temp, rename).
func (s *RootStore) Save(roots []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(roots)
}

func (s *RootStore) saveLocked(roots []string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	data, err := toml.Marshal(rootsFile{Roots: roots})
	if err != nil {
		return fmt.Errorf("failed to encode root paths: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".roots-*.toml")
	if err != nil {
		return fmt.Errorf("failed to write root paths: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write root paths: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write root paths: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write root paths: %w", err)
	}
	return nil
}

// Add appends a root if not already present and reports whether the list
// changed.
func (s *RootStore) Add(root string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roots, err := s.loadLocked()
	if err != nil {
		return false, err
	}
	for _, r := range roots {
		if r == root {
			return false, nil
		}
	}
	roots = append(roots, root)
	return true, s.saveLocked(roots)
}

// Remove drops a root and reports whether the list changed.
func (s *RootStore) Remove(root string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roots, err := s.loadLocked()
	if err != nil {
		return false, err
	}
	kept := roots[:0]
	for _, r := range roots {
		if r != root {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(roots) {
		return false, nil
	}
	return true, s.saveLocked(kept)
}

// Package state persists per-book reader state: reading positions and
// highlight sets, keyed by a content hash of the book file.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const (
	positionsFileName = "reading_positions.json"
	hashBytes         = 8192 // First 8KB for content hash

	// DefaultBook namespaces highlight storage when no book identity is
	// available (e.g. stdin input).
	DefaultBook = "default"
)

// Position stores where reading left off in a single book.
type Position struct {
	ChapterIndex int `json:"chapter_index"`
	WordIndex    int `json:"word_index"`
}

// Positions manages the persistent reading-position map.
type Positions struct {
	path string
	data map[string]Position
	mu   sync.RWMutex
}

// NewPositions creates or loads positions from XDG_STATE_HOME/marginalia/.
func NewPositions() (*Positions, error) {
	dir := StateDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	store := &Positions{
		path: filepath.Join(dir, positionsFileName),
		data: make(map[string]Position),
	}
	if err := store.load(); err != nil {
		// Non-fatal - start with empty state
		store.data = make(map[string]Position)
	}
	return store, nil
}

// StateDir returns XDG_STATE_HOME/marginalia or ~/.local/state/marginalia.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "marginalia")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "marginalia")
}

// ComputeHash generates a content hash identifying a book file. The
// hash survives renames and moves; it changes only with the content.
func ComputeHash(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, hashBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	hash := sha256.Sum256(buf[:n])
	return hex.EncodeToString(hash[:16]), nil // First 16 bytes = 32 hex chars
}

// Get returns the saved position for a book, or the zero position.
func (s *Positions) Get(hash string) Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[hash]
}

// Set saves the position for a book.
func (s *Positions) Set(hash string, pos Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[hash] = pos
	return s.save()
}

// Clear removes the saved position for a book.
func (s *Positions) Clear(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, hash)
	return s.save()
}

func (s *Positions) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &s.data)
}

func (s *Positions) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

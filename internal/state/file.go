package state

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"marginalia/internal/highlight"
)

// FileStore persists a book's highlights as a JSON array in the state
// directory, one file per book. It implements highlight.Store and so
// never fails outward: a broken file loads as empty, a failed write is
// logged and dropped.
type FileStore struct {
	path string
}

// NewFileStore returns a store namespaced by book id (normally the
// content hash). An empty book id falls back to DefaultBook.
func NewFileStore(dir, bookID string) *FileStore {
	if bookID == "" {
		bookID = DefaultBook
	}
	return &FileStore{path: filepath.Join(dir, "highlights_"+bookID+".json")}
}

// Load reads the persisted highlight set. Missing file means empty;
// any decode failure is logged and treated as empty. Malformed records
// are filtered out.
func (s *FileStore) Load() []highlight.Highlight {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		log.Printf("highlights: load %s: %v", s.path, err)
		return nil
	}
	var hs []highlight.Highlight
	if err := json.Unmarshal(data, &hs); err != nil {
		log.Printf("highlights: decode %s: %v", s.path, err)
		return nil
	}
	return highlight.Filter(hs)
}

// Save writes the full highlight set. Failures are logged and the
// write is dropped.
func (s *FileStore) Save(hs []highlight.Highlight) {
	data, err := json.MarshalIndent(hs, "", "  ")
	if err != nil {
		log.Printf("highlights: encode: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		log.Printf("highlights: save %s: %v", s.path, err)
		return
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		log.Printf("highlights: save %s: %v", s.path, err)
	}
}

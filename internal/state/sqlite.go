package state

import (
	"database/sql"
	"encoding/json"
	"log"

	_ "modernc.org/sqlite"

	"marginalia/internal/highlight"
)

const schema = `
CREATE TABLE IF NOT EXISTS highlights (
	book_id      TEXT NOT NULL,
	highlight_id TEXT NOT NULL,
	record       TEXT NOT NULL,
	PRIMARY KEY (book_id, highlight_id)
);`

// SQLiteStore persists highlights in a SQLite database, one row per
// highlight with the record as its JSON wire form. Same never-throw
// contract as FileStore; only the constructor can report an error.
type SQLiteStore struct {
	db     *sql.DB
	bookID string
}

// NewSQLiteStore opens (creating if needed) the database at path and
// namespaces all operations by book id.
func NewSQLiteStore(path, bookID string) (*SQLiteStore, error) {
	if bookID == "" {
		bookID = DefaultBook
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, bookID: bookID}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the book's highlight set. Query or decode failures are
// logged and yield an empty set; individual malformed rows are skipped.
func (s *SQLiteStore) Load() []highlight.Highlight {
	rows, err := s.db.Query(
		`SELECT record FROM highlights WHERE book_id = ? ORDER BY highlight_id`, s.bookID)
	if err != nil {
		log.Printf("highlights: query: %v", err)
		return nil
	}
	defer rows.Close()

	var hs []highlight.Highlight
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			log.Printf("highlights: scan: %v", err)
			continue
		}
		var h highlight.Highlight
		if err := json.Unmarshal([]byte(record), &h); err != nil {
			log.Printf("highlights: decode row: %v", err)
			continue
		}
		hs = append(hs, h)
	}
	if err := rows.Err(); err != nil {
		log.Printf("highlights: rows: %v", err)
	}
	return highlight.Filter(hs)
}

// Save replaces the book's stored set with hs inside one transaction.
func (s *SQLiteStore) Save(hs []highlight.Highlight) {
	tx, err := s.db.Begin()
	if err != nil {
		log.Printf("highlights: begin: %v", err)
		return
	}
	if _, err := tx.Exec(`DELETE FROM highlights WHERE book_id = ?`, s.bookID); err != nil {
		log.Printf("highlights: clear: %v", err)
		tx.Rollback()
		return
	}
	for _, h := range hs {
		record, err := json.Marshal(h)
		if err != nil {
			log.Printf("highlights: encode %s: %v", h.ID, err)
			continue
		}
		if _, err := tx.Exec(
			`INSERT INTO highlights (book_id, highlight_id, record) VALUES (?, ?, ?)`,
			s.bookID, h.ID, string(record)); err != nil {
			log.Printf("highlights: insert %s: %v", h.ID, err)
			tx.Rollback()
			return
		}
	}
	if err := tx.Commit(); err != nil {
		log.Printf("highlights: commit: %v", err)
	}
}

package book

import (
	"strings"

	"marginalia/internal/layout"
)

// TOCEntry represents a single entry in a table of contents
type TOCEntry struct {
	Title        string
	Preview      string
	ChapterIndex int
	Level        int
}

// TOCProvider is an optional interface for formats that supply their
// own table of contents.
type TOCProvider interface {
	TOC(filename string, chapters []Chapter) ([]TOCEntry, error)
}

// tocFromChapters derives a flat TOC from chapter titles, the fallback
// for formats without a native one.
func tocFromChapters(chapters []Chapter) []TOCEntry {
	entries := make([]TOCEntry, 0, len(chapters))
	for i, ch := range chapters {
		entries = append(entries, TOCEntry{
			Title:        ch.Title,
			Preview:      preview(ch.Tokens, 10),
			ChapterIndex: i,
		})
	}
	return entries
}

// preview joins the first n word texts of a chapter.
func preview(tokens []layout.Token, n int) string {
	if len(tokens) == 0 {
		return ""
	}
	if len(tokens) > n {
		tokens = tokens[:n]
	}
	var texts []string
	for _, t := range tokens {
		texts = append(texts, t.Text)
	}
	return strings.Join(texts, " ") + "..."
}

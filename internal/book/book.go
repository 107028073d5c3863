// Package book extracts chapter-structured word tokens from book files
// (EPUB, Markdown, plain text) and tracks the reading session.
//
// Token ids are assigned in content order (p<paragraph>_w<word>,
// scoped per chapter) and never depend on geometry, so they are stable
// across reflow as long as the content is unchanged.
package book

import (
	"fmt"

	"marginalia/internal/layout"
)

// Chapter is one unit of content reflow: a titled token sequence.
type Chapter struct {
	Title  string
	Tokens []layout.Token
}

// Book is an open reading session: the extracted chapters, the TOC,
// and the current chapter index.
type Book struct {
	Path     string
	Chapters []Chapter
	TOC      []TOCEntry
	Current  int
}

// Open extracts a book from a file using the registered formats. Files
// with no chapter structure yield a single chapter.
func Open(filename string) (*Book, error) {
	chapters, toc, err := Extract(filename)
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("no readable content in %s", filename)
	}
	return &Book{Path: filename, Chapters: chapters, TOC: toc}, nil
}

// FromText builds a single-chapter book from raw text (stdin input).
func FromText(title, text string) *Book {
	return &Book{
		Chapters: []Chapter{{Title: title, Tokens: TokenizeText(text)}},
	}
}

// Chapter returns the current chapter.
func (b *Book) Chapter() *Chapter {
	return &b.Chapters[b.Current]
}

// NextChapter advances to the next chapter; returns false at the end.
func (b *Book) NextChapter() bool {
	if b.Current >= len(b.Chapters)-1 {
		return false
	}
	b.Current++
	return true
}

// PrevChapter moves to the previous chapter; returns false at the start.
func (b *Book) PrevChapter() bool {
	if b.Current <= 0 {
		return false
	}
	b.Current--
	return true
}

// JumpToChapter moves to the given chapter if it exists.
func (b *Book) JumpToChapter(index int) bool {
	if index < 0 || index >= len(b.Chapters) {
		return false
	}
	b.Current = index
	return true
}

package book

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMarkdown(t *testing.T, content string) string {
	t.Helper()
	mdFile := filepath.Join(t.TempDir(), "test.md")
	if err := os.WriteFile(mdFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return mdFile
}

func TestMarkdownExtractChapters(t *testing.T) {
	mdFile := writeMarkdown(t, `# Chapter 1
First chapter content with some words.

# Chapter 2
Second chapter has more content here.

# Chapter 3
Third and final chapter.
`)

	f := &MarkdownFormat{}
	chapters, err := f.Extract(mdFile)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(chapters) != 3 {
		t.Fatalf("Expected 3 chapters, got %d", len(chapters))
	}

	expectedTitles := []string{"Chapter 1", "Chapter 2", "Chapter 3"}
	for i, ch := range chapters {
		if ch.Title != expectedTitles[i] {
			t.Errorf("Chapter %d: expected title %q, got %q", i, expectedTitles[i], ch.Title)
		}
		if len(ch.Tokens) == 0 {
			t.Errorf("Chapter %d has no tokens", i)
		}
		// Each chapter restarts its word id space.
		if ch.Tokens[0].ID != "p0_w0" {
			t.Errorf("Chapter %d: first token id = %s, want p0_w0", i, ch.Tokens[0].ID)
		}
	}
}

func TestMarkdownTOC(t *testing.T) {
	mdFile := writeMarkdown(t, `# Introduction
This is the introduction.

## Getting Started
Here's how to get started with the project.

### Prerequisites
You'll need these things installed.

## Usage
Here's how to use it.

# Advanced Topics
More complex stuff here.

## Configuration
Configure everything.
`)

	f := &MarkdownFormat{}
	chapters, err := f.Extract(mdFile)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	toc, err := f.TOC(mdFile, chapters)
	if err != nil {
		t.Fatalf("TOC extraction failed: %v", err)
	}

	if len(toc) != 6 {
		t.Fatalf("Expected 6 TOC entries, got %d", len(toc))
	}

	expectedLevels := []int{0, 1, 2, 1, 0, 1} // h1=0, h2=1, h3=2
	expectedTitles := []string{"Introduction", "Getting Started", "Prerequisites", "Usage", "Advanced Topics", "Configuration"}
	for i, entry := range toc {
		if entry.Level != expectedLevels[i] {
			t.Errorf("Entry %d (%s): expected level %d, got %d", i, entry.Title, expectedLevels[i], entry.Level)
		}
		if entry.Title != expectedTitles[i] {
			t.Errorf("Entry %d: expected title %q, got %q", i, expectedTitles[i], entry.Title)
		}
		if entry.ChapterIndex != i {
			t.Errorf("Entry %d: expected chapter index %d, got %d", i, i, entry.ChapterIndex)
		}
	}
}

func TestMarkdownPreamble(t *testing.T) {
	mdFile := writeMarkdown(t, `Some text before any header at all.

# Real Chapter
Body of the real chapter.
`)

	f := &MarkdownFormat{}
	chapters, err := f.Extract(mdFile)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(chapters) != 2 {
		t.Fatalf("Expected 2 chapters, got %d", len(chapters))
	}
	if chapters[0].Title != "Document" {
		t.Errorf("Preamble chapter title = %q, want %q", chapters[0].Title, "Document")
	}
	if chapters[1].Title != "Real Chapter" {
		t.Errorf("Second chapter title = %q, want %q", chapters[1].Title, "Real Chapter")
	}
}

func TestMarkdownEmptySections(t *testing.T) {
	mdFile := writeMarkdown(t, `# Empty

# Has Content
Some words here.

# Also Empty
`)

	f := &MarkdownFormat{}
	chapters, err := f.Extract(mdFile)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(chapters) != 1 {
		t.Fatalf("Expected 1 chapter, got %d", len(chapters))
	}
	if chapters[0].Title != "Has Content" {
		t.Errorf("Chapter title = %q, want %q", chapters[0].Title, "Has Content")
	}

	// TOC stays aligned with the surviving chapters.
	toc, err := (&MarkdownFormat{}).TOC(mdFile, chapters)
	if err != nil {
		t.Fatalf("TOC extraction failed: %v", err)
	}
	if len(toc) != 1 || toc[0].Title != "Has Content" || toc[0].ChapterIndex != 0 {
		t.Errorf("Unexpected TOC: %+v", toc)
	}
}

func TestMarkdownMultilineParagraphs(t *testing.T) {
	mdFile := writeMarkdown(t, `# Chapter
Line one of paragraph
line two of paragraph.

New paragraph.
`)

	f := &MarkdownFormat{}
	chapters, err := f.Extract(mdFile)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	tokens := chapters[0].Tokens

	// Adjacent lines join into one paragraph.
	last := tokens[len(tokens)-1]
	if last.ID != "p1_w1" {
		t.Errorf("Last token id = %s, want p1_w1", last.ID)
	}
}

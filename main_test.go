//go:build !gui

package main

import (
	"strings"
	"testing"

	"marginalia/internal/book"
	"marginalia/internal/highlight"
	"marginalia/internal/layout"
)

func TestSelectionRange(t *testing.T) {
	tests := []struct {
		name           string
		anchor, cursor int
		wantStart      int
		wantEnd        int
	}{
		{name: "no selection", anchor: -1, cursor: 5, wantStart: -1, wantEnd: -1},
		{name: "forward", anchor: 2, cursor: 7, wantStart: 2, wantEnd: 7},
		{name: "backward", anchor: 7, cursor: 2, wantStart: 2, wantEnd: 7},
		{name: "single word", anchor: 3, cursor: 3, wantStart: 3, wantEnd: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := selectionRange(tt.anchor, tt.cursor)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("selectionRange(%d, %d) = (%d, %d), want (%d, %d)",
					tt.anchor, tt.cursor, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestOpenStoreUnknownKind(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	if _, err := openStore("redis", "abc"); err == nil {
		t.Error("Expected error for unknown store kind")
	}
	if _, err := openStore("file", "abc"); err != nil {
		t.Errorf("file store: %v", err)
	}
}

type nullStore struct{}

func (nullStore) Load() []highlight.Highlight { return nil }
func (nullStore) Save([]highlight.Highlight)  {}

func testModel(t *testing.T, text string) *model {
	t.Helper()
	bk := book.FromText("test", text)
	mgr := highlight.NewManager(nullStore{})
	return newModel(bk, mgr, layout.DefaultTheme())
}

func TestApplyHighlightFromSelection(t *testing.T) {
	m := testModel(t, "one two three four five")

	m.anchor = 1
	m.cursor = 3
	m.applyHighlight()

	hs := m.mgr.CurrentChapterHighlights()
	if len(hs) != 1 {
		t.Fatalf("Expected 1 highlight, got %d", len(hs))
	}
	h := hs[0]
	if h.Position.StartWordID != "p0_w1" || h.Position.EndWordID != "p0_w3" {
		t.Errorf("Range = %s..%s", h.Position.StartWordID, h.Position.EndWordID)
	}
	if h.Text != "two three four" {
		t.Errorf("Text = %q", h.Text)
	}
	if m.anchor != -1 {
		t.Error("Selection should clear after applying")
	}
}

func TestApplyHighlightSingleWord(t *testing.T) {
	m := testModel(t, "one two three")
	m.cursor = 2
	m.applyHighlight()

	hs := m.mgr.CurrentChapterHighlights()
	if len(hs) != 1 || hs[0].Text != "three" {
		t.Fatalf("Got %+v", hs)
	}
}

func TestRemoveUnderCursor(t *testing.T) {
	m := testModel(t, "one two three")
	m.cursor = 0
	m.applyHighlight()
	if len(m.mgr.CurrentChapterHighlights()) != 1 {
		t.Fatal("Setup failed")
	}

	m.cursor = 0
	m.removeUnderCursor()
	if len(m.mgr.CurrentChapterHighlights()) != 0 {
		t.Error("Highlight should be removed")
	}

	m.removeUnderCursor()
	if m.message != "no highlight here" {
		t.Errorf("Message = %q", m.message)
	}
}

func TestMoveLine(t *testing.T) {
	// Narrow page forces wrapping onto several lines.
	theme := layout.DefaultTheme()
	theme.PageWidth = 120
	bk := book.FromText("test", strings.Repeat("word ", 30))
	m := newModel(bk, highlight.NewManager(nullStore{}), theme)

	startLine := m.eng.Words[m.cursor].Line
	m.moveLine(1)
	if got := m.eng.Words[m.cursor].Line; got != startLine+1 {
		t.Errorf("Line after moveLine(1) = %d, want %d", got, startLine+1)
	}
	m.moveLine(-1)
	if got := m.eng.Words[m.cursor].Line; got != startLine {
		t.Errorf("Line after moveLine(-1) = %d, want %d", got, startLine)
	}

	// No line above the first: cursor stays put.
	m.cursor = 0
	m.moveLine(-1)
	if m.cursor != 0 {
		t.Errorf("Cursor moved off the first line to %d", m.cursor)
	}
}

func TestStyleCycling(t *testing.T) {
	m := testModel(t, "word")

	if m.currentStyle().Type != highlight.TypeHighlight {
		t.Errorf("Default style = %s", m.currentStyle().Type)
	}
	if m.currentStyle().Opacity != 0.3 {
		t.Errorf("Fill opacity = %v, want 0.3", m.currentStyle().Opacity)
	}

	m.styleIdx = (m.styleIdx + 1) % len(styleTypes)
	if m.currentStyle().Type != highlight.TypeUnderline {
		t.Errorf("Cycled style = %s", m.currentStyle().Type)
	}
	if m.currentStyle().Opacity != 1.0 {
		t.Errorf("Stroke opacity = %v, want 1", m.currentStyle().Opacity)
	}
}

func TestStyleWordPlainForUnknownType(t *testing.T) {
	got := styleWord("text", highlight.Style{Type: "wavy", Color: "#FF0000"})
	if got != "text" {
		t.Errorf("Unknown style should render plain, got %q", got)
	}
}

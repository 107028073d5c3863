package highlight

import (
	"fmt"
	"reflect"
	"testing"

	"marginalia/internal/layout"
)

// testWords builds a single-line model of n visible words, ids w0..wn-1,
// 10px wide each, laid end to end.
func testWords(n int) []layout.Word {
	words := make([]layout.Word, n)
	for i := range words {
		words[i] = layout.Word{
			ID:     fmt.Sprintf("w%d", i),
			Text:   fmt.Sprintf("word%d", i),
			X:      float64(i * 10),
			Y:      20,
			Width:  10,
			Height: 18,
			Line:   0,
		}
	}
	return words
}

func yellow() Style {
	return Style{Type: TypeHighlight, Color: "#FFFF00", Opacity: 0.3}
}

func blue() Style {
	return Style{Type: TypeHighlight, Color: "#66AAFF", Opacity: 0.3}
}

func mk(id string, chapter, start, end int, s Style) Highlight {
	return Highlight{
		ID: id,
		Position: Position{
			ChapterIndex: chapter,
			StartWordID:  fmt.Sprintf("w%d", start),
			EndWordID:    fmt.Sprintf("w%d", end),
		},
		Text:  "snapshot",
		Style: s,
	}
}

func TestMergeOverlapSameStyle(t *testing.T) {
	words := testWords(10)
	hs := []Highlight{
		mk("highlight_1", 0, 0, 5, yellow()),
		mk("highlight_2", 0, 3, 8, yellow()),
	}

	got := Merge(hs, words, Options{})
	if len(got) != 1 {
		t.Fatalf("expected 1 merged highlight, got %d", len(got))
	}
	h := got[0]
	if h.Position.StartWordID != "w0" || h.Position.EndWordID != "w8" {
		t.Errorf("merged range = %s..%s, want w0..w8",
			h.Position.StartWordID, h.Position.EndWordID)
	}
	if len(h.Position.WordIDs) != 9 {
		t.Errorf("wordIds length = %d, want 9", len(h.Position.WordIDs))
	}
	if h.Text != "word0 word1 word2 word3 word4 word5 word6 word7 word8" {
		t.Errorf("merged text not re-derived: %q", h.Text)
	}
}

func TestMergeDifferentStylesKeptApart(t *testing.T) {
	words := testWords(10)
	hs := []Highlight{
		mk("highlight_1", 0, 0, 3, yellow()),
		mk("highlight_2", 0, 2, 5, blue()),
	}

	got := Merge(hs, words, Options{})
	if len(got) != 2 {
		t.Fatalf("expected 2 highlights (styles differ), got %d", len(got))
	}
	if got[0].Position.EndWordID != "w3" {
		t.Errorf("first highlight clipped to %s, want w3", got[0].Position.EndWordID)
	}
	if got[1].Position.StartWordID != "w2" {
		t.Errorf("second highlight starts at %s, want w2", got[1].Position.StartWordID)
	}
	// Untouched highlights keep their creation-time text snapshot.
	if got[0].Text != "snapshot" || got[1].Text != "snapshot" {
		t.Errorf("unmerged text snapshots were re-derived")
	}
}

func TestMergeAdjacent(t *testing.T) {
	words := testWords(10)
	hs := []Highlight{
		mk("highlight_1", 0, 0, 2, yellow()),
		mk("highlight_2", 0, 3, 5, yellow()),
	}

	t.Run("enabled", func(t *testing.T) {
		got := Merge(hs, words, Options{MergeAdjacent: true})
		if len(got) != 1 {
			t.Fatalf("expected 1 highlight with adjacency merging, got %d", len(got))
		}
		if got[0].Position.EndWordID != "w5" {
			t.Errorf("end = %s, want w5", got[0].Position.EndWordID)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		got := Merge(hs, words, Options{MergeAdjacent: false})
		if len(got) != 2 {
			t.Fatalf("expected 2 highlights without adjacency merging, got %d", len(got))
		}
	})
}

func TestMergeIDRetention(t *testing.T) {
	words := testWords(20)

	tests := []struct {
		name   string
		a, b   Highlight
		wantID string
	}{
		{
			name:   "accumulator keeps id on plain overlap",
			a:      mk("highlight_1", 0, 0, 5, yellow()),
			b:      mk("highlight_2", 0, 4, 7, yellow()),
			wantID: "highlight_1",
		},
		{
			name:   "covering range wins",
			a:      mk("highlight_1", 0, 3, 5, yellow()),
			b:      mk("highlight_2", 0, 3, 9, yellow()),
			wantID: "highlight_2",
		},
		{
			name:   "longer range wins",
			a:      mk("highlight_1", 0, 0, 4, yellow()),
			b:      mk("highlight_2", 0, 2, 12, yellow()),
			wantID: "highlight_2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge([]Highlight{tt.a, tt.b}, words, Options{})
			if len(got) != 1 {
				t.Fatalf("expected 1 highlight, got %d", len(got))
			}
			if got[0].ID != tt.wantID {
				t.Errorf("kept id %s, want %s", got[0].ID, tt.wantID)
			}
		})
	}
}

func TestMergeDropsStale(t *testing.T) {
	words := testWords(5)
	hs := []Highlight{
		mk("highlight_1", 0, 0, 2, yellow()),
		{
			ID: "highlight_2",
			Position: Position{
				ChapterIndex: 0,
				StartWordID:  "gone_w0",
				EndWordID:    "gone_w3",
			},
			Style: yellow(),
		},
	}

	got := Merge(hs, words, Options{})
	if len(got) != 1 {
		t.Fatalf("expected stale highlight dropped, got %d results", len(got))
	}
	if got[0].ID != "highlight_1" {
		t.Errorf("survivor = %s, want highlight_1", got[0].ID)
	}
}

func TestMergeIdempotent(t *testing.T) {
	words := testWords(20)
	hs := []Highlight{
		mk("highlight_1", 0, 0, 5, yellow()),
		mk("highlight_2", 0, 3, 8, yellow()),
		mk("highlight_3", 0, 10, 12, blue()),
		mk("highlight_4", 0, 11, 15, blue()),
		mk("highlight_5", 0, 17, 18, yellow()),
	}

	once := Merge(hs, words, Options{MergeAdjacent: true})
	twice := Merge(once, words, Options{MergeAdjacent: true})
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMergeNonOverlapInvariant(t *testing.T) {
	words := testWords(30)
	hs := []Highlight{
		mk("highlight_1", 0, 0, 10, yellow()),
		mk("highlight_2", 0, 2, 4, yellow()),
		mk("highlight_3", 0, 9, 14, yellow()),
		mk("highlight_4", 0, 15, 20, yellow()),
		mk("highlight_5", 0, 25, 28, yellow()),
	}

	got := Merge(hs, words, Options{MergeAdjacent: true})

	var r Resolver
	r.Bind(words)
	for i := 0; i < len(got); i++ {
		for j := i + 1; j < len(got); j++ {
			s1, e1, _ := r.Resolve(got[i].Position)
			s2, e2, _ := r.Resolve(got[j].Position)
			if s1 <= e2+1 && s2 <= e1+1 && got[i].Style == got[j].Style {
				t.Errorf("highlights %d and %d still mergeable: [%d,%d] [%d,%d]",
					i, j, s1, e1, s2, e2)
			}
		}
	}
}

func TestMergeGroupsByChapter(t *testing.T) {
	words := testWords(10)
	hs := []Highlight{
		mk("highlight_1", 0, 0, 5, yellow()),
		mk("highlight_2", 1, 3, 8, yellow()),
	}

	got := Merge(hs, words, Options{})
	if len(got) != 2 {
		t.Fatalf("highlights in different chapters must not merge, got %d", len(got))
	}
}

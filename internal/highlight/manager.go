package highlight

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"marginalia/internal/layout"
)

// Manager owns a book's highlight state: per-chapter highlight maps, the
// id counter, the active chapter's borrowed word model, and the wiring
// between merge, geometry, hit-testing and persistence.
//
// Construct one Manager per open book and hand it to consumers; there
// is no package-global instance. The model is fully synchronous: every
// operation runs to completion in one call, and the caller decides when
// to repaint.
type Manager struct {
	// MergeAdjacent also fuses same-style highlights whose ranges touch.
	MergeAdjacent bool

	store    Store
	chapters map[int]map[string]*Highlight
	nextID   int

	chapter  int
	words    []layout.Word
	resolver Resolver
	locator  Locator
}

// AddInput is the caller-supplied material for a new highlight.
type AddInput struct {
	ChapterIndex int
	StartWordID  string
	EndWordID    string
	Text         string
	Style        Style
}

// NewManager restores persisted highlights from store and returns a
// ready manager. Malformed persisted records are filtered out; stale
// ones are kept (they may resolve again) but skipped at use sites.
func NewManager(store Store) *Manager {
	m := &Manager{
		MergeAdjacent: true,
		store:         store,
		chapters:      make(map[int]map[string]*Highlight),
		nextID:        1,
	}
	for _, h := range Filter(store.Load()) {
		m.put(h)
		// Keep the counter ahead of every persisted id.
		if n, ok := idNumber(h.ID); ok && n >= m.nextID {
			m.nextID = n + 1
		}
	}
	return m
}

func idNumber(id string) (int, bool) {
	s, ok := strings.CutPrefix(id, "highlight_")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func (m *Manager) put(h Highlight) {
	ci := h.Position.ChapterIndex
	if m.chapters[ci] == nil {
		m.chapters[ci] = make(map[string]*Highlight)
	}
	hc := h
	m.chapters[ci][h.ID] = &hc
}

// SetWordModel installs a freshly laid-out word model for a chapter and
// makes that chapter active. Back-references are rebuilt from persisted
// word ids immediately, before any hit-test or render call can observe
// the new model.
func (m *Manager) SetWordModel(chapterIndex int, words []layout.Word, loc Locator) {
	m.chapter = chapterIndex
	m.words = words
	m.locator = loc
	m.resolver.Bind(words)
	m.rewriteBackRefs()
}

// ActiveChapter returns the chapter index of the installed word model.
func (m *Manager) ActiveChapter() int { return m.chapter }

// AddHighlight creates a highlight from a selection, canonicalizes it
// against the chapter's existing set, persists, and returns the new
// highlight's id. The returned id may be absorbed by a later merge; it
// is a handle, not a promise of permanence.
func (m *Manager) AddHighlight(in AddInput) string {
	id := fmt.Sprintf("highlight_%d", m.nextID)
	m.nextID++
	h := Highlight{
		ID: id,
		Position: Position{
			ChapterIndex: in.ChapterIndex,
			StartWordID:  in.StartWordID,
			EndWordID:    in.EndWordID,
		},
		Text:  in.Text,
		Style: in.Style,
	}
	m.MergeAndPersistChapter(in.ChapterIndex, []Highlight{h})
	return id
}

// RemoveHighlight deletes a highlight by id. A negative chapterIndex
// scans every chapter. Back-references are cleared and the set is
// persisted; returns false when the id is unknown.
func (m *Manager) RemoveHighlight(id string, chapterIndex int) bool {
	found := false
	if chapterIndex >= 0 {
		if hs := m.chapters[chapterIndex]; hs != nil {
			_, found = hs[id]
			delete(hs, id)
		}
	} else {
		for _, hs := range m.chapters {
			if _, ok := hs[id]; ok {
				delete(hs, id)
				found = true
				break
			}
		}
	}
	if !found {
		return false
	}
	m.rewriteBackRefs()
	m.persist()
	return true
}

// MergeAndPersistChapter canonicalizes one chapter's highlights plus
// any additions, replaces the chapter map with the merged result,
// rewrites word back-references, and persists the whole set. Back-refs
// are rewritten before persisting so a repaint never observes an
// inconsistent pair.
func (m *Manager) MergeAndPersistChapter(chapterIndex int, additions []Highlight) {
	gathered := additions
	for _, h := range m.chapters[chapterIndex] {
		gathered = append(gathered, *h)
	}
	if len(gathered) == 0 {
		return
	}

	merged := Merge(gathered, m.wordsFor(chapterIndex), Options{MergeAdjacent: m.MergeAdjacent})

	next := make(map[string]*Highlight, len(merged))
	for _, h := range merged {
		hc := h
		next[h.ID] = &hc
	}
	// Merge drops highlights whose endpoints no longer resolve; those
	// are stale, not deleted — keep them stored until the user removes
	// them explicitly.
	var r Resolver
	r.Bind(m.wordsFor(chapterIndex))
	for _, h := range gathered {
		if _, ok := next[h.ID]; ok {
			continue
		}
		if _, _, ok := r.Resolve(h.Position); !ok {
			hc := h
			next[h.ID] = &hc
		}
	}
	m.chapters[chapterIndex] = next

	m.rewriteBackRefs()
	m.persist()
}

// wordsFor returns the installed word model when it belongs to the
// requested chapter, nil otherwise.
func (m *Manager) wordsFor(chapterIndex int) []layout.Word {
	if chapterIndex == m.chapter {
		return m.words
	}
	return nil
}

// rewriteBackRefs resyncs every word's HighlightID in the active
// chapter's model from the stored highlight set. Words inside a
// resolved range point at the owning highlight; everything else is
// cleared.
func (m *Manager) rewriteBackRefs() {
	for i := range m.words {
		m.words[i].HighlightID = ""
	}
	for _, h := range m.chapters[m.chapter] {
		start, end, ok := m.resolver.Resolve(h.Position)
		if !ok {
			continue
		}
		for i := start; i <= end; i++ {
			m.words[i].HighlightID = h.ID
		}
	}
}

func (m *Manager) persist() {
	m.store.Save(m.AllHighlights())
}

// AllHighlights returns every stored highlight across all chapters,
// ordered by chapter then id, suitable for persistence.
func (m *Manager) AllHighlights() []Highlight {
	var chapters []int
	for ci := range m.chapters {
		chapters = append(chapters, ci)
	}
	sort.Ints(chapters)

	var out []Highlight
	for _, ci := range chapters {
		ids := make([]string, 0, len(m.chapters[ci]))
		for id := range m.chapters[ci] {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			out = append(out, *m.chapters[ci][id])
		}
	}
	return out
}

// ChapterHighlights returns one chapter's highlights ordered by id.
func (m *Manager) ChapterHighlights(chapterIndex int) []Highlight {
	ids := make([]string, 0, len(m.chapters[chapterIndex]))
	for id := range m.chapters[chapterIndex] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Highlight, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.chapters[chapterIndex][id])
	}
	return out
}

// CurrentChapterHighlights returns the active chapter's highlights.
func (m *Manager) CurrentChapterHighlights() []Highlight {
	return m.ChapterHighlights(m.chapter)
}

// HighlightByID looks a highlight up by id. A negative chapterIndex
// scans every chapter. Returns nil when unknown.
func (m *Manager) HighlightByID(id string, chapterIndex int) *Highlight {
	if chapterIndex >= 0 {
		if hs := m.chapters[chapterIndex]; hs != nil {
			if h, ok := hs[id]; ok {
				hc := *h
				return &hc
			}
		}
		return nil
	}
	for _, hs := range m.chapters {
		if h, ok := hs[id]; ok {
			hc := *h
			return &hc
		}
	}
	return nil
}

// HitTest resolves a content-space point against the active chapter:
// the word under the point, its owning highlight when annotated, and
// all words that highlight covers.
func (m *Manager) HitTest(x, y float64) *HitResult {
	return hitTest(m.words, m.locator, x, y, func(id string) *Highlight {
		return m.HighlightByID(id, m.chapter)
	})
}

package highlight

import "marginalia/internal/layout"

// Locator is the renderer-side collaborator that maps a content-space
// point to a word index (-1 when the point hits nothing). The engine
// never does its own glyph math.
type Locator interface {
	WordIndexAt(x, y float64) int
}

// HitResult describes what sits under a content-space point. Highlight
// is nil when the word carries no annotation; callers use that to start
// a new selection instead of opening a highlight menu. Words holds
// every word sharing the hit highlight's id, so a menu can be placed
// over the whole annotation rather than the clicked glyph.
type HitResult struct {
	WordIndex int
	Word      layout.Word
	Highlight *Highlight
	Words     []layout.Word
}

// hitTest resolves a point against the word model. byID looks up the
// owning highlight for a back-reference; a stale back-reference (id
// that no longer resolves) degrades to a plain word hit.
func hitTest(words []layout.Word, loc Locator, x, y float64, byID func(string) *Highlight) *HitResult {
	if loc == nil {
		return nil
	}
	idx := loc.WordIndexAt(x, y)
	if idx < 0 || idx >= len(words) {
		return nil
	}
	res := &HitResult{WordIndex: idx, Word: words[idx]}
	hid := words[idx].HighlightID
	if hid == "" {
		return res
	}
	res.Highlight = byID(hid)
	for i := range words {
		if words[i].HighlightID == hid {
			res.Words = append(res.Words, words[i])
		}
	}
	return res
}

// Bounds returns the bounding box of a word collection, for menu
// placement over a whole highlight. ok is false for an empty
// collection (stale ids leave nothing to bound).
func Bounds(words []layout.Word) (r Rect, ok bool) {
	if len(words) == 0 {
		return Rect{}, false
	}
	minX, minY := words[0].X, words[0].Y
	maxX, maxY := words[0].X+words[0].Width, words[0].Y+words[0].Height
	for _, w := range words[1:] {
		if w.X < minX {
			minX = w.X
		}
		if w.Y < minY {
			minY = w.Y
		}
		if w.X+w.Width > maxX {
			maxX = w.X + w.Width
		}
		if w.Y+w.Height > maxY {
			maxY = w.Y + w.Height
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

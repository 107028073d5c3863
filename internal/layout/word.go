// Package layout turns a chapter's word tokens into a positioned,
// word-indexed page model. It is deliberately metric-approximate: the
// raster and GUI layers own real glyph rendering, this package owns
// deterministic geometry.
package layout

// Token is a single word as produced by the extraction layer. ID is
// stable across reflow as long as the underlying content is unchanged,
// which makes it the only valid long-term position reference.
type Token struct {
	ID   string
	Text string
}

// WordStyle carries the visibility-relevant style of a laid-out word.
type WordStyle struct {
	Display    string
	Visibility string
}

// Word is one laid-out word record. X/Y/Width/Height are content
// coordinates (scroll-independent). Line groups words sharing a text
// line within the chapter.
//
// HighlightID is a back-reference written by the highlight engine. It
// is a lookup convenience, never an ownership relation, and is cleared
// whenever the owning highlight is removed or merged away.
type Word struct {
	ID     string
	Text   string
	X      float64
	Y      float64
	Width  float64
	Height float64
	Line   int
	Style  WordStyle
	Hidden bool

	HighlightID string
}

// Visible reports whether a word takes part in geometry. Hidden words
// and zero-width words never produce pixels.
func (w *Word) Visible() bool {
	if w.Style.Display == "none" || w.Style.Visibility == "hidden" || w.Hidden {
		return false
	}
	return w.Width > 0
}

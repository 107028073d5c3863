package layout

import "unicode/utf8"

// Theme holds the layout metrics shared by every consumer of the word
// model. BaseFontSize also feeds the highlight geometry projector.
type Theme struct {
	BaseFontSize float64
	LineHeight   float64
	PageWidth    float64
	MarginX      float64
	MarginY      float64
}

// DefaultTheme returns the metrics used when the caller supplies none.
func DefaultTheme() *Theme {
	return &Theme{
		BaseFontSize: 18,
		LineHeight:   26,
		PageWidth:    800,
		MarginX:      40,
		MarginY:      40,
	}
}

// emWidth approximates the advance of one rune. Good enough for a page
// model; the paint layer measures real glyphs when it draws.
const emWidth = 0.56

// wordWidth returns the approximate pixel width of a token.
func wordWidth(text string, theme *Theme) float64 {
	return float64(utf8.RuneCountInString(text)) * theme.BaseFontSize * emWidth
}

// spaceWidth is the gap between adjacent words on a line.
func spaceWidth(theme *Theme) float64 {
	return theme.BaseFontSize * emWidth
}

// Layout breaks tokens into lines with greedy first-fit wrapping and
// returns the positioned word model. The result is regenerated on every
// reflow (page width or font change); token IDs carry over untouched.
func Layout(tokens []Token, theme *Theme) []Word {
	if theme == nil {
		theme = DefaultTheme()
	}

	words := make([]Word, 0, len(tokens))
	x := theme.MarginX
	y := theme.MarginY + theme.BaseFontSize
	line := 0
	limit := theme.PageWidth - theme.MarginX

	for _, tok := range tokens {
		w := wordWidth(tok.Text, theme)
		if x > theme.MarginX && x+w > limit {
			x = theme.MarginX
			y += theme.LineHeight
			line++
		}
		words = append(words, Word{
			ID:     tok.ID,
			Text:   tok.Text,
			X:      x,
			Y:      y,
			Width:  w,
			Height: theme.BaseFontSize,
			Line:   line,
		})
		x += w + spaceWidth(theme)
	}
	return words
}

// Engine owns one chapter's laid-out words and answers point queries
// against them. It is the renderer-side collaborator the highlight
// engine borrows words from.
type Engine struct {
	Words []Word
	Theme *Theme
}

// NewEngine lays out tokens and wraps the result.
func NewEngine(tokens []Token, theme *Theme) *Engine {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &Engine{Words: Layout(tokens, theme), Theme: theme}
}

// WordIndexAt maps a content-space point to the index of the word whose
// box contains it, or -1. Hidden words are not hit.
func (e *Engine) WordIndexAt(x, y float64) int {
	for i := range e.Words {
		w := &e.Words[i]
		if !w.Visible() {
			continue
		}
		// Word boxes hang from the baseline; test the full line band so
		// taps between glyphs still land.
		top := w.Y - w.Height
		bottom := w.Y + (e.Theme.LineHeight - w.Height)
		if x >= w.X && x <= w.X+w.Width && y >= top && y <= bottom {
			return i
		}
	}
	return -1
}

// PageHeight returns the content height needed to show every word.
func (e *Engine) PageHeight() float64 {
	if len(e.Words) == 0 {
		return e.Theme.MarginY * 2
	}
	last := e.Words[len(e.Words)-1]
	return last.Y + e.Theme.LineHeight + e.Theme.MarginY
}

package highlight

import "marginalia/internal/layout"

// Canvas is the drawing surface the manager paints highlight shapes
// onto. Implementations exist for the raster page renderer and for
// tests; the engine never touches pixels itself.
type Canvas interface {
	FillRect(r Rect, color string, opacity float64)
	StrokeLine(x1, y1, x2, y2 float64, color string, width float64)
}

// Render draws every highlight of the active chapter whose rectangles
// intersect the vertical window [viewTop, viewBottom]. Stale highlights
// project to nothing and are skipped. Unknown style types are a no-op,
// not an error.
func (m *Manager) Render(c Canvas, viewTop, viewBottom float64, theme *layout.Theme) {
	for _, h := range m.CurrentChapterHighlights() {
		start, end, ok := m.resolver.Resolve(h.Position)
		if !ok {
			continue
		}
		rects := ProjectToLineRects(m.words, start, end, theme)
		for _, r := range FilterRectsByYRange(rects, viewTop, viewBottom) {
			drawShape(c, r, h.Style)
		}
	}
}

// drawShape renders one rectangle in the given style.
func drawShape(c Canvas, r Rect, s Style) {
	switch s.Type {
	case TypeHighlight:
		c.FillRect(r, s.Color, s.Opacity)
	case TypeUnderline:
		y := r.Y + r.Height
		c.StrokeLine(r.X, y, r.X+r.Width, y, s.Color, 2)
	case TypeStrikethrough:
		y := r.Y + r.Height/2
		c.StrokeLine(r.X, y, r.X+r.Width, y, s.Color, 2)
	}
}

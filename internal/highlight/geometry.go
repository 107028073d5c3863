package highlight

import "marginalia/internal/layout"

// defaultBaseFontSize is used when the caller supplies no theme.
const defaultBaseFontSize = 18

// ProjectToLineRects converts an index range into screen rectangles,
// one per contiguous run of visible words per line. Invisible words
// (display:none, visibility:hidden, explicit hidden flag, zero width)
// close the current run without starting a new one, so a range
// straddling a hidden run yields one rectangle per visible sub-run and
// none spanning the gap.
//
// Endpoints are accepted in either order and clamped to the model.
// This runs on every paint; it is a single pass over the range with no
// allocation beyond the result.
func ProjectToLineRects(words []layout.Word, startIdx, endIdx int, theme *layout.Theme) []Rect {
	if len(words) == 0 {
		return nil
	}
	if startIdx > endIdx {
		startIdx, endIdx = endIdx, startIdx
	}
	if startIdx < 0 {
		startIdx = 0
	}
	if endIdx > len(words)-1 {
		endIdx = len(words) - 1
	}

	base := defaultBaseFontSize * 1.0
	if theme != nil && theme.BaseFontSize > 0 {
		base = theme.BaseFontSize
	}

	var rects []Rect
	runStart := -1
	flush := func(last int) {
		if runStart < 0 {
			return
		}
		first := &words[runStart]
		end := &words[last]
		rects = append(rects, Rect{
			X:      first.X,
			Y:      first.Y - base + 2,
			Width:  end.X + end.Width - first.X,
			Height: base + 2,
		})
		runStart = -1
	}

	for i := startIdx; i <= endIdx; i++ {
		w := &words[i]
		if !w.Visible() {
			flush(i - 1)
			continue
		}
		if runStart >= 0 && w.Line != words[runStart].Line {
			flush(i - 1)
		}
		if runStart < 0 {
			runStart = i
		}
	}
	flush(endIdx)
	return rects
}

// FilterRectsByYRange keeps only rectangles intersecting the vertical
// window [startY, endY]. Used to skip off-screen rectangles during
// partial repaint.
func FilterRectsByYRange(rects []Rect, startY, endY float64) []Rect {
	out := rects[:0:0]
	for _, r := range rects {
		if r.Y+r.Height < startY || r.Y > endY {
			continue
		}
		out = append(out, r)
	}
	return out
}

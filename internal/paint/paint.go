// Package paint rasterizes a laid-out page with its highlights to an
// image. It is one consumer of the highlight engine's geometry; the
// TUI and GUI are the others.
package paint

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"marginalia/internal/highlight"
	"marginalia/internal/layout"
)

// Renderer draws word models and highlight shapes into a gg context
// and implements highlight.Canvas.
type Renderer struct {
	dc    *gg.Context
	theme *layout.Theme
}

// NewRenderer creates a page-sized drawing context with the bundled
// regular face at the theme's base font size.
func NewRenderer(theme *layout.Theme, pageHeight float64) (*Renderer, error) {
	if theme == nil {
		theme = layout.DefaultTheme()
	}

	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    theme.BaseFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	dc := gg.NewContext(int(theme.PageWidth), int(pageHeight))
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(face)

	return &Renderer{dc: dc, theme: theme}, nil
}

// RenderPage draws the full page: highlight shapes first, then the
// visible words on top.
func (r *Renderer) RenderPage(words []layout.Word, mgr *highlight.Manager) {
	mgr.Render(r, 0, float64(r.dc.Height()), r.theme)

	r.dc.SetColor(color.Black)
	for i := range words {
		w := &words[i]
		if !w.Visible() {
			continue
		}
		r.dc.DrawString(w.Text, w.X, w.Y)
	}
}

// FillRect implements highlight.Canvas.
func (r *Renderer) FillRect(rect highlight.Rect, hexColor string, opacity float64) {
	cr, cg, cb := parseHexColor(hexColor)
	r.dc.SetRGBA(cr, cg, cb, opacity)
	r.dc.DrawRectangle(rect.X, rect.Y, rect.Width, rect.Height)
	r.dc.Fill()
}

// StrokeLine implements highlight.Canvas.
func (r *Renderer) StrokeLine(x1, y1, x2, y2 float64, hexColor string, width float64) {
	cr, cg, cb := parseHexColor(hexColor)
	r.dc.SetRGBA(cr, cg, cb, 1)
	r.dc.SetLineWidth(width)
	r.dc.DrawLine(x1, y1, x2, y2)
	r.dc.Stroke()
}

// SavePNG writes the rendered page to a file.
func (r *Renderer) SavePNG(path string) error {
	return r.dc.SavePNG(path)
}

// parseHexColor decodes #RGB and #RRGGBB into unit components. Bad
// input falls back to black.
func parseHexColor(s string) (r, g, b float64) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return float64(n>>16&0xff) / 255, float64(n>>8&0xff) / 255, float64(n&0xff) / 255
}

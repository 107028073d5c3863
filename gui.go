//go:build gui

package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"marginalia/internal/book"
	"marginalia/internal/highlight"
	"marginalia/internal/layout"
	"marginalia/internal/state"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var palette = []string{"#FFFF00", "#00FF88", "#66AAFF", "#FF66AA"}

var styleTypes = []highlight.StyleType{
	highlight.TypeHighlight,
	highlight.TypeUnderline,
	highlight.TypeStrikethrough,
}

type model struct {
	book      *book.Book
	eng       *layout.Engine
	mgr       *highlight.Manager
	theme     *layout.Theme
	positions *state.Positions
	fileHash  string

	cursor   int
	anchor   int // -1 when no selection
	styleIdx int
	colorIdx int
}

func newModel(bk *book.Book, mgr *highlight.Manager, theme *layout.Theme) *model {
	m := &model{book: bk, mgr: mgr, theme: theme, anchor: -1}
	m.installChapter(bk.Current, 0)
	return m
}

func (m *model) installChapter(index, wordIndex int) {
	m.book.JumpToChapter(index)
	m.eng = layout.NewEngine(m.book.Chapter().Tokens, m.theme)
	m.mgr.SetWordModel(index, m.eng.Words, m.eng)
	m.cursor = 0
	if wordIndex > 0 && wordIndex < len(m.eng.Words) {
		m.cursor = wordIndex
	}
	m.anchor = -1
}

func (m *model) currentStyle() highlight.Style {
	s := highlight.Style{Type: styleTypes[m.styleIdx], Color: palette[m.colorIdx]}
	if s.Type == highlight.TypeHighlight {
		s.Opacity = 0.3
	} else {
		s.Opacity = 1
	}
	return s
}

// fyneCanvas implements highlight.Canvas by accumulating positioned
// canvas objects for the page container.
type fyneCanvas struct {
	objects []fyne.CanvasObject
}

func (c *fyneCanvas) FillRect(r highlight.Rect, hexColor string, opacity float64) {
	rect := canvas.NewRectangle(hexToColor(hexColor, opacity))
	rect.Move(fyne.NewPos(float32(r.X), float32(r.Y)))
	rect.Resize(fyne.NewSize(float32(r.Width), float32(r.Height)))
	c.objects = append(c.objects, rect)
}

func (c *fyneCanvas) StrokeLine(x1, y1, x2, y2 float64, hexColor string, width float64) {
	line := canvas.NewLine(hexToColor(hexColor, 1))
	line.StrokeWidth = float32(width)
	line.Position1 = fyne.NewPos(float32(x1), float32(y1))
	line.Position2 = fyne.NewPos(float32(x2), float32(y2))
	c.objects = append(c.objects, line)
}

// hexToColor decodes #RGB / #RRGGBB with an alpha multiplier.
func hexToColor(s string, opacity float64) color.Color {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		n = 0
	}
	a := uint8(opacity * 255)
	return color.NRGBA{
		R: uint8(n >> 16 & 0xff),
		G: uint8(n >> 8 & 0xff),
		B: uint8(n & 0xff),
		A: a,
	}
}

// pageOverlay is a transparent tappable surface covering the page; tap
// positions arrive in content coordinates.
type pageOverlay struct {
	widget.BaseWidget
	onTap func(x, y float64)
}

func newPageOverlay(onTap func(x, y float64)) *pageOverlay {
	o := &pageOverlay{onTap: onTap}
	o.ExtendBaseWidget(o)
	return o
}

func (o *pageOverlay) Tapped(e *fyne.PointEvent) {
	o.onTap(float64(e.Position.X), float64(e.Position.Y))
}

func (o *pageOverlay) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(canvas.NewRectangle(color.Transparent))
}

// buildPage lays the chapter out as absolutely positioned objects:
// highlight shapes below, word texts above, tap overlay on top.
func (m *model) buildPage(onTap func(x, y float64)) *fyne.Container {
	fc := &fyneCanvas{}
	m.mgr.Render(fc, 0, m.eng.PageHeight(), m.theme)

	// Selection band, drawn over highlights but under text.
	if m.anchor >= 0 {
		start, end := m.anchor, m.cursor
		if start > end {
			start, end = end, start
		}
		for _, r := range highlight.ProjectToLineRects(m.eng.Words, start, end, m.theme) {
			sel := canvas.NewRectangle(color.NRGBA{R: 0x88, G: 0x88, B: 0x88, A: 0x60})
			sel.Move(fyne.NewPos(float32(r.X), float32(r.Y)))
			sel.Resize(fyne.NewSize(float32(r.Width), float32(r.Height)))
			fc.objects = append(fc.objects, sel)
		}
	}

	objects := fc.objects
	for i := range m.eng.Words {
		w := &m.eng.Words[i]
		if !w.Visible() {
			continue
		}
		col := color.Color(color.Black)
		if i == m.cursor {
			col = color.NRGBA{R: 0xcc, A: 0xff}
		}
		t := canvas.NewText(w.Text, col)
		t.TextSize = float32(m.theme.BaseFontSize)
		if i == m.cursor {
			t.TextStyle.Bold = true
		}
		t.Move(fyne.NewPos(float32(w.X), float32(w.Y-m.theme.BaseFontSize)))
		objects = append(objects, t)
	}

	overlay := newPageOverlay(onTap)
	overlay.Resize(fyne.NewSize(float32(m.theme.PageWidth), float32(m.eng.PageHeight())))
	objects = append(objects, overlay)

	page := container.NewWithoutLayout(objects...)
	page.Resize(fyne.NewSize(float32(m.theme.PageWidth), float32(m.eng.PageHeight())))
	return page
}

func (m *model) savePosition() {
	if m.positions == nil || m.fileHash == "" {
		return
	}
	m.positions.Set(m.fileHash, state.Position{
		ChapterIndex: m.book.Current,
		WordIndex:    m.cursor,
	})
}

func main() {
	storeKind := flag.String("store", "file", "Highlight storage backend: file or sqlite")
	fontSize := flag.Float64("font", 18, "Base font size")
	pageWidth := flag.Float64("page", 800, "Page width in pixels")
	freshStart := flag.Bool("fresh", false, "Ignore saved reading position")
	showVersion := flag.Bool("v", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Marginalia GUI - Reading and Annotation Tool\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  marginalia [options] file\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nTap a word to move the cursor; tap a highlight to inspect it.\n")
		fmt.Fprintf(os.Stderr, "Keys: arrows move, V select, ENTER highlight, X remove,\n")
		fmt.Fprintf(os.Stderr, "S style, C color, N/P chapter, Q quit.\n")
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("marginalia %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: No input file.")
		os.Exit(1)
	}
	filename := flag.Arg(0)

	bk, err := book.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to read file '%s': %v\n", filename, err)
		os.Exit(1)
	}

	fileHash := ""
	if hash, err := state.ComputeHash(filename); err == nil {
		fileHash = hash
	}

	var store highlight.Store
	switch *storeKind {
	case "file":
		store = state.NewFileStore(state.StateDir(), fileHash)
	case "sqlite":
		dir := state.StateDir()
		os.MkdirAll(dir, 0755)
		s, err := state.NewSQLiteStore(dir+"/highlights.db", fileHash)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		store = s
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown store %q\n", *storeKind)
		os.Exit(1)
	}

	theme := layout.DefaultTheme()
	theme.BaseFontSize = *fontSize
	theme.LineHeight = *fontSize * 1.45
	theme.PageWidth = *pageWidth

	m := newModel(bk, highlight.NewManager(store), theme)
	m.fileHash = fileHash

	if positions, err := state.NewPositions(); err == nil {
		m.positions = positions
		if !*freshStart && fileHash != "" {
			pos := positions.Get(fileHash)
			if (pos.ChapterIndex > 0 || pos.WordIndex > 0) && pos.ChapterIndex < len(bk.Chapters) {
				m.installChapter(pos.ChapterIndex, pos.WordIndex)
			}
		}
	}

	a := app.New()
	w := a.NewWindow("marginalia - " + bk.Chapter().Title)

	statusLabel := widget.NewLabel("")
	statusLabel.Alignment = fyne.TextAlignCenter

	scroll := container.NewVScroll(container.NewWithoutLayout())

	var refresh func()

	onTap := func(x, y float64) {
		hit := m.mgr.HitTest(x, y)
		if hit == nil {
			return
		}
		m.cursor = hit.WordIndex
		if hit.Highlight != nil {
			statusLabel.SetText(fmt.Sprintf("%s: %q (X removes)", hit.Highlight.ID, hit.Highlight.Text))
		}
		refresh()
	}

	refresh = func() {
		style := m.currentStyle()
		count := len(m.mgr.CurrentChapterHighlights())
		statusLabel.SetText(fmt.Sprintf("%s | Chapter %d/%d | Word %d/%d | %s %s | %d highlight(s)",
			bk.Chapter().Title,
			bk.Current+1, len(bk.Chapters),
			m.cursor+1, len(m.eng.Words),
			style.Type, style.Color, count,
		))
		scroll.Content = m.buildPage(onTap)
		scroll.Refresh()
	}

	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		words := m.eng.Words
		switch key.Name {
		case fyne.KeyRight:
			if m.cursor < len(words)-1 {
				m.cursor++
			}
		case fyne.KeyLeft:
			if m.cursor > 0 {
				m.cursor--
			}
		case fyne.KeyEscape:
			m.anchor = -1
		case fyne.KeyReturn, fyne.KeyEnter:
			if len(words) > 0 {
				start, end := m.cursor, m.cursor
				if m.anchor >= 0 {
					start, end = m.anchor, m.cursor
					if start > end {
						start, end = end, start
					}
				}
				m.mgr.AddHighlight(highlight.AddInput{
					ChapterIndex: bk.Current,
					StartWordID:  words[start].ID,
					EndWordID:    words[end].ID,
					Text:         highlight.TextForRange(words, start, end),
					Style:        m.currentStyle(),
				})
				m.anchor = -1
			}
		case fyne.KeyQ:
			m.savePosition()
			a.Quit()
			return
		}
		refresh()
	})

	w.Canvas().SetOnTypedRune(func(r rune) {
		words := m.eng.Words
		switch r {
		case 'v', 'V':
			m.anchor = m.cursor
		case 'x', 'X':
			if len(words) > 0 {
				w := words[m.cursor]
				if hit := m.mgr.HitTest(w.X+w.Width/2, w.Y-w.Height/2); hit != nil && hit.Highlight != nil {
					m.mgr.RemoveHighlight(hit.Highlight.ID, bk.Current)
				}
			}
		case 's', 'S':
			m.styleIdx = (m.styleIdx + 1) % len(styleTypes)
		case 'c', 'C':
			m.colorIdx = (m.colorIdx + 1) % len(palette)
		case 'n', 'N':
			if bk.NextChapter() {
				m.installChapter(bk.Current, 0)
			}
		case 'p', 'P':
			if bk.PrevChapter() {
				m.installChapter(bk.Current, 0)
			}
		}
		refresh()
	})

	w.SetOnClosed(func() {
		m.savePosition()
	})

	w.Resize(fyne.NewSize(float32(theme.PageWidth)+40, 600))
	w.SetContent(container.NewBorder(statusLabel, nil, nil, nil, scroll))
	refresh()
	w.ShowAndRun()
}

//go:build !gui

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"marginalia/internal/book"
	"marginalia/internal/highlight"
	"marginalia/internal/layout"
	"marginalia/internal/paint"
	"marginalia/internal/state"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cursorStyle = lipgloss.NewStyle().
			Reverse(true)

	selectionStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#444444")).
			Foreground(lipgloss.Color("#FFFFFF"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFAA00"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))
)

// palette is the set of colors a new highlight cycles through.
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

	cursor   int // word index in the active chapter
	anchor   int // selection anchor word index, -1 when no selection
	topLine  int
	styleIdx int
	colorIdx int
	message  string

	toc        list.Model
	tocVisible bool

	quitting bool
	width    int
	height   int
}

type tocItem struct {
	book.TOCEntry
}

func (t tocItem) Title() string {
	return strings.Repeat("  ", t.Level) + t.TOCEntry.Title
}
func (t tocItem) Description() string { return t.Preview }
func (t tocItem) FilterValue() string { return t.TOCEntry.Title }

func newModel(bk *book.Book, mgr *highlight.Manager, theme *layout.Theme) *model {
	items := make([]list.Item, 0, len(bk.TOC))
	for _, e := range bk.TOC {
		items = append(items, tocItem{e})
	}
	toc := list.New(items, list.NewDefaultDelegate(), 0, 0)
	toc.Title = "Table of Contents"
	toc.SetShowStatusBar(false)

	m := &model{
		book:   bk,
		mgr:    mgr,
		theme:  theme,
		anchor: -1,
		toc:    toc,
		width:  80,
		height: 24,
	}
	m.installChapter(bk.Current, 0)
	return m
}

// installChapter lays out a chapter and hands the fresh word model to
// the highlight engine before anything can render against it.
func (m *model) installChapter(index, wordIndex int) {
	m.book.JumpToChapter(index)
	m.eng = layout.NewEngine(m.book.Chapter().Tokens, m.theme)
	m.mgr.SetWordModel(index, m.eng.Words, m.eng)
	m.cursor = 0
	if wordIndex > 0 && wordIndex < len(m.eng.Words) {
		m.cursor = wordIndex
	}
	m.anchor = -1
	m.topLine = 0
	m.scrollToCursor()
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.toc.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		if m.tocVisible {
			return m.updateTOC(msg)
		}
		return m.updateReading(msg)
	}
	return m, nil
}

func (m *model) updateTOC(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "t", "esc", "q":
		m.tocVisible = false
		return m, nil
	case "enter":
		if item, ok := m.toc.SelectedItem().(tocItem); ok {
			m.installChapter(item.ChapterIndex, 0)
		}
		m.tocVisible = false
		return m, nil
	}
	var cmd tea.Cmd
	m.toc, cmd = m.toc.Update(msg)
	return m, cmd
}

func (m *model) updateReading(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	words := m.eng.Words

	switch msg.String() {
	case "right", "l":
		if m.cursor < len(words)-1 {
			m.cursor++
			m.scrollToCursor()
		}

	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
			m.scrollToCursor()
		}

	case "down", "j":
		m.moveLine(1)

	case "up", "k":
		m.moveLine(-1)

	case "v":
		m.anchor = m.cursor

	case "esc":
		m.anchor = -1

	case "enter":
		m.applyHighlight()

	case "x":
		m.removeUnderCursor()

	case "s":
		m.styleIdx = (m.styleIdx + 1) % len(styleTypes)

	case "c":
		m.colorIdx = (m.colorIdx + 1) % len(palette)

	case "n":
		if m.book.NextChapter() {
			m.installChapter(m.book.Current, 0)
		}

	case "p":
		if m.book.PrevChapter() {
			m.installChapter(m.book.Current, 0)
		}

	case "t":
		if len(m.book.TOC) > 0 {
			m.tocVisible = true
		}

	case "e":
		m.exportPNG()

	case "q", "Q", "ctrl+c":
		m.savePosition()
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// moveLine moves the cursor to the word on an adjacent line whose left
// edge is closest to the current word's.
func (m *model) moveLine(delta int) {
	words := m.eng.Words
	if len(words) == 0 {
		return
	}
	cur := words[m.cursor]
	target := cur.Line + delta

	best := -1
	bestDist := 0.0
	for i := range words {
		if words[i].Line != target {
			continue
		}
		d := words[i].X - cur.X
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best >= 0 {
		m.cursor = best
		m.scrollToCursor()
	}
}

func (m *model) scrollToCursor() {
	line := 0
	if len(m.eng.Words) > 0 {
		line = m.eng.Words[m.cursor].Line
	}
	visible := m.visibleLines()
	if line < m.topLine {
		m.topLine = line
	}
	if line >= m.topLine+visible {
		m.topLine = line - visible + 1
	}
}

// visibleLines is the number of text lines the reading view can show.
func (m *model) visibleLines() int {
	v := m.height - 4 // title, status, message, controls
	if v < 1 {
		v = 1
	}
	return v
}

func (m *model) currentStyle() highlight.Style {
	s := highlight.Style{
		Type:  styleTypes[m.styleIdx],
		Color: palette[m.colorIdx],
	}
	if s.Type == highlight.TypeHighlight {
		s.Opacity = 0.3
	} else {
		s.Opacity = 1
	}
	return s
}

func (m *model) applyHighlight() {
	words := m.eng.Words
	if len(words) == 0 {
		return
	}
	start, end := m.cursor, m.cursor
	if m.anchor >= 0 {
		start, end = m.anchor, m.cursor
		if start > end {
			start, end = end, start
		}
	}
	m.mgr.AddHighlight(highlight.AddInput{
		ChapterIndex: m.book.Current,
		StartWordID:  words[start].ID,
		EndWordID:    words[end].ID,
		Text:         highlight.TextForRange(words, start, end),
		Style:        m.currentStyle(),
	})
	m.anchor = -1
	m.message = fmt.Sprintf("highlighted %d word(s)", end-start+1)
}

// removeUnderCursor hit-tests the center of the cursor word and removes
// the owning highlight, if any.
func (m *model) removeUnderCursor() {
	words := m.eng.Words
	if len(words) == 0 {
		return
	}
	w := words[m.cursor]
	hit := m.mgr.HitTest(w.X+w.Width/2, w.Y-w.Height/2)
	if hit == nil || hit.Highlight == nil {
		m.message = "no highlight here"
		return
	}
	m.mgr.RemoveHighlight(hit.Highlight.ID, m.book.Current)
	m.message = "removed " + hit.Highlight.ID
}

func (m *model) exportPNG() {
	r, err := paint.NewRenderer(m.eng.Theme, m.eng.PageHeight())
	if err != nil {
		m.message = "export failed: " + err.Error()
		return
	}
	r.RenderPage(m.eng.Words, m.mgr)
	name := fmt.Sprintf("marginalia_ch%d.png", m.book.Current+1)
	if err := r.SavePNG(name); err != nil {
		m.message = "export failed: " + err.Error()
		return
	}
	m.message = "exported " + name
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

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	if m.tocVisible {
		return m.toc.View()
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render(m.book.Chapter().Title))
	sb.WriteString("\n")

	sb.WriteString(m.renderWords())

	style := m.currentStyle()
	count := len(m.mgr.CurrentChapterHighlights())
	status := statusStyle.Render(fmt.Sprintf("Chapter %d/%d | Word %d/%d | %s %s | %d highlight(s)",
		m.book.Current+1, len(m.book.Chapters),
		m.cursor+1, len(m.eng.Words),
		style.Type, style.Color, count,
	))
	sb.WriteString(status)
	sb.WriteString("\n")

	if m.message != "" {
		sb.WriteString(messageStyle.Render(m.message))
	}
	sb.WriteString("\n")

	sb.WriteString(controlsStyle.Render("arrows: move  v: select  ENTER: highlight  X: remove  S: style  C: color  N/P: chapter  T: TOC  E: export  Q: quit"))

	return sb.String()
}

// renderWords draws the visible slice of the chapter, styling each word
// from its highlight back-reference.
func (m *model) renderWords() string {
	words := m.eng.Words
	var sb strings.Builder

	selStart, selEnd := selectionRange(m.anchor, m.cursor)

	lastLine := m.topLine + m.visibleLines() - 1
	line := -1
	shown := 0
	for i := range words {
		w := &words[i]
		if w.Line < m.topLine {
			continue
		}
		if w.Line > lastLine {
			break
		}
		if w.Line != line {
			if line >= 0 {
				sb.WriteString("\n")
			}
			line = w.Line
			shown++
		} else {
			sb.WriteString(" ")
		}
		sb.WriteString(m.renderWord(i, selStart, selEnd))
	}
	sb.WriteString("\n")
	for ; shown < m.visibleLines(); shown++ {
		sb.WriteString("\n")
	}
	return sb.String()
}

// selectionRange normalizes an anchor/cursor pair into an ordered
// range; (-1, -1) when there is no selection.
func selectionRange(anchor, cursor int) (int, int) {
	if anchor < 0 {
		return -1, -1
	}
	if anchor > cursor {
		return cursor, anchor
	}
	return anchor, cursor
}

func (m *model) renderWord(i, selStart, selEnd int) string {
	w := &m.eng.Words[i]
	text := w.Text

	switch {
	case i == m.cursor:
		return cursorStyle.Render(text)
	case selStart >= 0 && i >= selStart && i <= selEnd:
		return selectionStyle.Render(text)
	case w.HighlightID != "":
		h := m.mgr.HighlightByID(w.HighlightID, m.book.Current)
		if h == nil {
			return text
		}
		return styleWord(text, h.Style)
	}
	return text
}

// styleWord maps a highlight style onto terminal attributes: fills
// become background color, underline and strikethrough keep their
// shape. Unknown types render plain.
func styleWord(text string, s highlight.Style) string {
	switch s.Type {
	case highlight.TypeHighlight:
		return lipgloss.NewStyle().
			Background(lipgloss.Color(s.Color)).
			Foreground(lipgloss.Color("#000000")).
			Render(text)
	case highlight.TypeUnderline:
		return lipgloss.NewStyle().
			Underline(true).
			Foreground(lipgloss.Color(s.Color)).
			Render(text)
	case highlight.TypeStrikethrough:
		return lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(lipgloss.Color(s.Color)).
			Render(text)
	}
	return text
}

func main() {
	storeKind := flag.String("store", "file", "Highlight storage backend: file or sqlite")
	fontSize := flag.Float64("font", 18, "Base font size for layout and export")
	pageWidth := flag.Float64("page", 800, "Page width in pixels for layout and export")
	freshStart := flag.Bool("fresh", false, "Ignore saved reading position")
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Marginalia - Reading and Annotation Tool\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  marginalia [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  marginalia book.epub            Read and annotate an EPUB\n")
		fmt.Fprintf(os.Stderr, "  marginalia -store sqlite b.md   Keep highlights in SQLite\n")
		fmt.Fprintf(os.Stderr, "  cat notes.txt | marginalia      Read from stdin\n")
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  arrows   Move the word cursor\n")
		fmt.Fprintf(os.Stderr, "  v/ENTER  Start selection / apply highlight\n")
		fmt.Fprintf(os.Stderr, "  x        Remove highlight under cursor\n")
		fmt.Fprintf(os.Stderr, "  s/c      Cycle highlight style / color\n")
		fmt.Fprintf(os.Stderr, "  n/p      Next/previous chapter\n")
		fmt.Fprintf(os.Stderr, "  t        Table of contents\n")
		fmt.Fprintf(os.Stderr, "  e        Export current chapter as PNG\n")
		fmt.Fprintf(os.Stderr, "  q        Quit (saves position)\n")
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("marginalia %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	var bk *book.Book
	var fileHash string

	if flag.NArg() > 0 {
		filename := flag.Arg(0)
		var err error
		bk, err = book.Open(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to read file '%s': %v\n", filename, err)
			os.Exit(1)
		}
		if hash, err := state.ComputeHash(filename); err == nil {
			fileHash = hash
		}
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			fmt.Fprintln(os.Stderr, "Error: No input provided. Provide a file or pipe text to stdin.")
			fmt.Fprintln(os.Stderr, "Try: marginalia -h")
			os.Exit(1)
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
		if strings.TrimSpace(string(data)) == "" {
			fmt.Fprintln(os.Stderr, "Error: No text to read.")
			os.Exit(1)
		}
		bk = book.FromText("stdin", string(data))
	}

	store, err := openStore(*storeKind, fileHash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	theme := layout.DefaultTheme()
	theme.BaseFontSize = *fontSize
	theme.LineHeight = *fontSize * 1.45
	theme.PageWidth = *pageWidth

	mgr := highlight.NewManager(store)
	m := newModel(bk, mgr, theme)
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

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore selects the highlight persistence backend.
func openStore(kind, bookID string) (highlight.Store, error) {
	switch kind {
	case "file":
		return state.NewFileStore(state.StateDir(), bookID), nil
	case "sqlite":
		dir := state.StateDir()
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		return state.NewSQLiteStore(filepath.Join(dir, "highlights.db"), bookID)
	}
	return nil, fmt.Errorf("unknown store %q (want file or sqlite)", kind)
}

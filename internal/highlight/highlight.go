// Package highlight is the annotation engine: it turns word-range
// selections into durable, reflow-resilient highlight records,
// canonicalizes overlapping sets, projects index ranges back into
// screen rectangles, and persists the result per book.
//
// Positions are stored as stable word ids, never pixels or indices, so
// a highlight survives any reflow that keeps the content unchanged.
package highlight

// StyleType selects the shape a highlight renders as.
type StyleType string

const (
	TypeHighlight     StyleType = "highlight"
	TypeUnderline     StyleType = "underline"
	TypeStrikethrough StyleType = "strikethrough"
)

// Style is the visual treatment of a highlight. It is a comparable
// value type; style equality during merging is structural.
type Style struct {
	Type    StyleType `json:"type"`
	Color   string    `json:"color"`
	Opacity float64   `json:"opacity"`
}

// Position anchors a highlight in content. WordIDs, when present, is
// the explicit word-id list at last computation time, so highlights
// spanning hidden runs keep a record of the covered words.
type Position struct {
	ChapterIndex int      `json:"chapterIndex"`
	StartWordID  string   `json:"startWordId"`
	EndWordID    string   `json:"endWordId"`
	WordIDs      []string `json:"wordIds,omitempty"`
}

// Highlight is one durable annotation record. Text is a snapshot taken
// at creation time; it is only re-derived when a merge widens the
// range.
type Highlight struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Text     string   `json:"text"`
	Style    Style    `json:"style"`
}

// Rect is an axis-aligned rectangle in content coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether a loaded record carries the fields the engine
// depends on. Malformed rows are filtered at load time, never repaired.
func (h *Highlight) Valid() bool {
	return h.ID != "" &&
		h.Position.StartWordID != "" &&
		h.Position.EndWordID != "" &&
		h.Position.ChapterIndex >= 0
}

// Filter drops malformed records from a loaded set.
func Filter(hs []Highlight) []Highlight {
	out := hs[:0:0]
	for _, h := range hs {
		if h.Valid() {
			out = append(out, h)
		}
	}
	return out
}

// Store persists a book's full highlight set. Implementations never
// fail outward: Load returns an empty set on any read or decode
// problem, Save logs and drops the write.
type Store interface {
	Load() []Highlight
	Save(hs []Highlight)
}

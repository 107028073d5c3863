package highlight

import "marginalia/internal/layout"

// Resolver maps stable word ids to their current index in the word
// model. The id→index map is built lazily on first lookup and thrown
// away whenever a new word model is bound, so a reflow costs nothing
// until someone actually resolves.
type Resolver struct {
	words []layout.Word
	index map[string]int
}

// Bind installs the current word model and invalidates the index.
func (r *Resolver) Bind(words []layout.Word) {
	r.words = words
	r.index = nil
}

// IndexOf resolves a word id to its index, or -1 when the id no longer
// exists in the bound model. A miss is expected after content edits and
// is never an error.
func (r *Resolver) IndexOf(id string) int {
	if r.index == nil {
		r.index = make(map[string]int, len(r.words))
		for i := range r.words {
			r.index[r.words[i].ID] = i
		}
	}
	if i, ok := r.index[id]; ok {
		return i
	}
	return -1
}

// Resolve returns both endpoints of a position, ordered start<=end, and
// false when either endpoint is stale.
func (r *Resolver) Resolve(p Position) (start, end int, ok bool) {
	start = r.IndexOf(p.StartWordID)
	end = r.IndexOf(p.EndWordID)
	if start < 0 || end < 0 {
		return 0, 0, false
	}
	if start > end {
		start, end = end, start
	}
	return start, end, true
}

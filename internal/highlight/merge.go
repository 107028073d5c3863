package highlight

import (
	"sort"
	"strings"

	"marginalia/internal/layout"
)

// Options controls merge behavior.
type Options struct {
	// MergeAdjacent also fuses same-style highlights whose ranges touch
	// end-to-start with no gap.
	MergeAdjacent bool
}

// span is a highlight with its endpoints resolved against the current
// word model.
type span struct {
	h        Highlight
	start    int
	end      int
	absorbed bool
}

// Merge canonicalizes a highlight set against the given word model:
// the result contains no two highlights whose resolved ranges overlap
// (or touch, with MergeAdjacent) while sharing the same style.
//
// Merging is best-effort canonicalization, never a hard failure path:
// a highlight whose endpoints no longer resolve is dropped from the
// result, and the caller keeps whatever it had persisted.
func Merge(hs []Highlight, words []layout.Word, opts Options) []Highlight {
	var r Resolver
	r.Bind(words)

	byChapter := make(map[int][]span)
	var chapters []int
	for _, h := range hs {
		start, end, ok := r.Resolve(h.Position)
		if !ok {
			continue
		}
		ci := h.Position.ChapterIndex
		if _, seen := byChapter[ci]; !seen {
			chapters = append(chapters, ci)
		}
		byChapter[ci] = append(byChapter[ci], span{h: h, start: start, end: end})
	}
	sort.Ints(chapters)

	var out []Highlight
	for _, ci := range chapters {
		for _, s := range mergeChapter(byChapter[ci], opts) {
			out = append(out, finalize(s, words))
		}
	}
	return out
}

// mergeChapter runs the left-to-right sweep over one chapter's spans.
func mergeChapter(spans []span, opts Options) []span {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end < spans[j].end
	})

	var out []span
	cur := spans[0]
	for _, next := range spans[1:] {
		overlap := next.start <= cur.end
		adjacent := opts.MergeAdjacent && next.start == cur.end+1
		if (overlap || adjacent) && next.h.Style == cur.h.Style {
			cur = absorb(cur, next)
			continue
		}
		out = append(out, cur)
		cur = next
	}
	return append(out, cur)
}

// absorb widens cur to cover next. Id retention is "larger/outer
// wins": the incoming id replaces the accumulator's only when the
// incoming range covers the accumulator's, or is strictly longer.
func absorb(cur, next span) span {
	covers := next.start <= cur.start && next.end >= cur.end
	longer := next.end-next.start > cur.end-cur.start
	if covers || longer {
		cur.h.ID = next.h.ID
	}
	if next.start < cur.start {
		cur.start = next.start
	}
	if next.end > cur.end {
		cur.end = next.end
	}
	cur.absorbed = true
	return cur
}

// finalize rewrites a span's position from its resolved range: word-id
// endpoints, the literal word-id list (hidden interior words included,
// so the record survives visibility toggles), and, for ranges widened
// by a merge, a re-derived text snapshot.
func finalize(s span, words []layout.Word) Highlight {
	h := s.h
	ids := make([]string, 0, s.end-s.start+1)
	for i := s.start; i <= s.end; i++ {
		ids = append(ids, words[i].ID)
	}
	h.Position.StartWordID = words[s.start].ID
	h.Position.EndWordID = words[s.end].ID
	h.Position.WordIDs = ids
	if s.absorbed {
		h.Text = TextForRange(words, s.start, s.end)
	}
	return h
}

// TextForRange joins word texts across an index range.
func TextForRange(words []layout.Word, start, end int) string {
	var b strings.Builder
	for i := start; i <= end && i < len(words); i++ {
		if i > start {
			b.WriteByte(' ')
		}
		b.WriteString(words[i].Text)
	}
	return b.String()
}

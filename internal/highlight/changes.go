package highlight

// Change marks Length consecutive lines starting at the 0-based line Start.
type Change struct {
	Start  int
	Length int
}

// ChangeHighlighter tracks which buffer lines are changed.
type ChangeHighlighter struct {
	values []bool
}

// NewChangeHighlighter returns an empty highlighter.
func NewChangeHighlighter() *ChangeHighlighter {
	return &ChangeHighlighter{values: make([]bool, 0, lineCapacity)}
}

// Sync replaces the tracked state with length lines and marks every line
// covered by changes. Overlapping changes are idempotent and lines outside
// [0, length) are ignored.
func (h *ChangeHighlighter) Sync(length int, changes []Change) {
	h.values = resize(h.values, length)
	for _, c := range changes {
		n := c.Length
		if c.Start < 0 {
			n += c.Start
		}
		start := max(c.Start, 0)
		if n <= 0 || start >= len(h.values) {
			continue
		}
		end := start + min(n, len(h.values)-start)
		for i := start; i < end; i++ {
			h.values[i] = true
		}
	}
}

// Len returns the line count of the last sync.
func (h *ChangeHighlighter) Len() int { return len(h.values) }

// Highlight implements Highlighter.
func (h *ChangeHighlighter) Highlight() Highlights {
	out := make(Highlights, len(h.values))
	for i, changed := range h.values {
		if changed {
			out[i] = 1
		}
	}
	return out
}

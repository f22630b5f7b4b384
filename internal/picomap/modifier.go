package picomap

// Marker characters, in priority order.
const (
	MarkerCursor    = 'c'
	MarkerSelection = 's'
	MarkerVisible   = 'v'
	MarkerNone      = ' '
)

// Frame is a directionless line range; Top may be greater than Bottom.
type Frame struct {
	Top    int
	Bottom int
}

// Contains reports whether the frame intersects the row window that starts
// at buffer line offset and spans scale lines.
func (f Frame) Contains(offset, scale float64) bool {
	top := min(f.Top, f.Bottom)
	bottom := max(f.Top, f.Bottom)
	return top < int(offset+scale) && bottom >= int(offset)
}

// Modifier computes the overlay marker of each output row.
type Modifier struct {
	Cursor  int
	Visible Frame
	Select  *Frame
}

// NewModifier returns a modifier without a selection.
func NewModifier(cursor int, visible Frame) Modifier {
	return Modifier{Cursor: cursor, Visible: visible}
}

// WithSelection returns a copy of m with the given selection frame.
func (m Modifier) WithSelection(sel Frame) Modifier {
	m.Select = &sel
	return m
}

// Marker returns the marker of row when length buffer lines are mapped
// onto height rows.
func (m Modifier) Marker(row, length, height int) rune {
	if length <= 0 || height <= 0 {
		return MarkerNone
	}
	scale := float64(length) / float64(height)
	offset := float64(row) * scale

	if int(offset) <= m.Cursor && float64(m.Cursor) < offset+scale {
		return MarkerCursor
	}
	if m.Select != nil && m.Select.Contains(offset, scale) {
		return MarkerSelection
	}
	if m.Visible.Contains(offset, scale) {
		return MarkerVisible
	}
	return MarkerNone
}

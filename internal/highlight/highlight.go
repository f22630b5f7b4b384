package highlight

// lineCapacity is the number of lines reserved up front for a typical buffer.
const lineCapacity = 500

// Highlight is the intensity of a single buffer line. Zero means no signal.
type Highlight uint64

// Highlights holds one intensity per buffer line, 0-indexed.
type Highlights []Highlight

// Highlighter produces a dense intensity snapshot of its last synced state.
type Highlighter interface {
	Highlight() Highlights
}

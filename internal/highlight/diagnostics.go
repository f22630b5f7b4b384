package highlight

// Level is the severity of a diagnostic.
type Level uint8

const (
	LevelNone Level = iota
	LevelWarning
	LevelDanger
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelDanger:
		return "danger"
	default:
		return "none"
	}
}

// Code returns the intensity code of the level.
func (l Level) Code() Highlight {
	switch l {
	case LevelWarning:
		return 1
	case LevelDanger:
		return 2
	default:
		return 0
	}
}

// Diagnostic is a single-line annotation. Line is 0-based.
type Diagnostic struct {
	Line  int
	Text  string
	Level Level
}

// DiagnosticsHighlighter tracks the severity of every buffer line.
type DiagnosticsHighlighter struct {
	values []Level
}

// NewDiagnosticsHighlighter returns an empty highlighter.
func NewDiagnosticsHighlighter() *DiagnosticsHighlighter {
	return &DiagnosticsHighlighter{values: make([]Level, 0, lineCapacity)}
}

// Sync replaces the tracked state with length lines and applies diags in
// order, so the last diagnostic targeting a line wins. Diagnostics outside
// [0, length) are dropped.
func (h *DiagnosticsHighlighter) Sync(length int, diags []Diagnostic) {
	h.values = resize(h.values, length)
	for _, d := range diags {
		if d.Line < 0 || d.Line >= len(h.values) {
			continue
		}
		h.values[d.Line] = d.Level
	}
}

// Len returns the line count of the last sync.
func (h *DiagnosticsHighlighter) Len() int { return len(h.values) }

// Highlight implements Highlighter.
func (h *DiagnosticsHighlighter) Highlight() Highlights {
	out := make(Highlights, len(h.values))
	for i, v := range h.values {
		out[i] = v.Code()
	}
	return out
}

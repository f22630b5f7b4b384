// Package snapshot reads TOML descriptions of a single render state, used
// to render or preview a picomap without an editor attached.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"picomap/internal/highlight"
	"picomap/internal/picomap"
)

// Snapshot is one buffer state.
type Snapshot struct {
	Lines       int          `toml:"lines"`
	Height      int          `toml:"height"`
	Cursor      int          `toml:"cursor"`
	Smoothing   string       `toml:"smoothing"`
	Visible     Range        `toml:"visible"`
	Selection   *Selection   `toml:"selection"`
	Diagnostics []Diagnostic `toml:"diagnostic"`
	Changes     []Change     `toml:"change"`
}

// Range is the visible part of the buffer, 0-based with both ends inclusive.
type Range struct {
	Top    int `toml:"top"`
	Bottom int `toml:"bottom"`
}

// Selection is a visual selection; Start may follow End.
type Selection struct {
	Start int `toml:"start"`
	End   int `toml:"end"`
}

// Diagnostic is a 0-based diagnostic entry.
type Diagnostic struct {
	Line  int    `toml:"line"`
	Level string `toml:"level"`
	Text  string `toml:"text"`
}

// Change is a 0-based changed region.
type Change struct {
	Start  int `toml:"start"`
	Length int `toml:"length"`
}

// Load reads and validates a snapshot file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	s, err := Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode parses and validates snapshot text.
func Decode(data string) (*Snapshot, error) {
	var s Snapshot
	meta, err := toml.Decode(data, &s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if !meta.IsDefined("lines") {
		return nil, errors.New("missing lines")
	}
	for i := range s.Diagnostics {
		s.Diagnostics[i].Text = norm.NFC.String(s.Diagnostics[i].Text)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every field is usable for a render.
func (s *Snapshot) Validate() error {
	var errs []error
	if s.Lines < 0 {
		errs = append(errs, fmt.Errorf("lines must not be negative, got %d", s.Lines))
	}
	if s.Height < 0 {
		errs = append(errs, fmt.Errorf("height must not be negative, got %d", s.Height))
	}
	if _, err := picomap.ParseSmoothing(s.Smoothing); err != nil {
		errs = append(errs, err)
	}
	for i, d := range s.Diagnostics {
		if _, err := parseLevel(d.Level); err != nil {
			errs = append(errs, fmt.Errorf("diagnostic %d: %w", i, err))
		}
	}
	for i, c := range s.Changes {
		if c.Length < 0 {
			errs = append(errs, fmt.Errorf("change %d: length must not be negative, got %d", i, c.Length))
		}
	}
	return errors.Join(errs...)
}

func parseLevel(s string) (highlight.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return highlight.LevelNone, nil
	case "warning", "warn":
		return highlight.LevelWarning, nil
	case "error", "danger":
		return highlight.LevelDanger, nil
	}
	return highlight.LevelNone, fmt.Errorf("invalid level %q (expected warning|error|none)", s)
}

// Highlights syncs fresh highlighters with the snapshot and returns the
// change and diagnostic arrays.
func (s *Snapshot) Highlights() (changes, diags highlight.Highlights) {
	ch := highlight.NewChangeHighlighter()
	cs := make([]highlight.Change, 0, len(s.Changes))
	for _, c := range s.Changes {
		cs = append(cs, highlight.Change{Start: c.Start, Length: c.Length})
	}
	ch.Sync(s.Lines, cs)

	dh := highlight.NewDiagnosticsHighlighter()
	ds := make([]highlight.Diagnostic, 0, len(s.Diagnostics))
	for _, d := range s.Diagnostics {
		level, _ := parseLevel(d.Level)
		ds = append(ds, highlight.Diagnostic{Line: d.Line, Text: d.Text, Level: level})
	}
	dh.Sync(s.Lines, ds)

	return ch.Highlight(), dh.Highlight()
}

// Modifier returns the overlay described by the snapshot.
func (s *Snapshot) Modifier() picomap.Modifier {
	m := picomap.NewModifier(s.Cursor, picomap.Frame{Top: s.Visible.Top, Bottom: s.Visible.Bottom})
	if s.Selection != nil {
		m = m.WithSelection(picomap.Frame{Top: s.Selection.Start, Bottom: s.Selection.End})
	}
	return m
}

// Picomap assembles the render state.
func (s *Snapshot) Picomap() *picomap.Picomap {
	changes, diags := s.Highlights()
	p := picomap.New(changes, diags, s.Modifier())
	p.Smoothing, _ = picomap.ParseSmoothing(s.Smoothing)
	return p
}

// Render renders the snapshot into height rows. A non-positive height uses
// the snapshot's own height.
func (s *Snapshot) Render(height int) []string {
	if height <= 0 {
		height = s.Height
	}
	return s.Picomap().Lines(s.Lines, height)
}

// RowRange returns the buffer lines [start, end) that row maps to.
func RowRange(row, length, height int) (start, end int) {
	if length <= 0 || height <= 0 {
		return 0, 0
	}
	scale := float64(length) / float64(height)
	start = min(int(float64(row)*scale), length)
	end = min(int(float64(row+1)*scale), length)
	if end <= start && start < length {
		end = start + 1
	}
	return start, end
}

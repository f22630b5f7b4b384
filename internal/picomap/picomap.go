package picomap

import (
	"strconv"
	"strings"

	"picomap/internal/highlight"
)

// Picomap is the state consumed by one render.
type Picomap struct {
	Changes   highlight.Highlights
	Diags     highlight.Highlights
	Modifier  Modifier
	Smoothing Smoothing
}

// New returns a picomap with forward smoothing.
func New(changes, diags highlight.Highlights, modifier Modifier) *Picomap {
	return &Picomap{Changes: changes, Diags: diags, Modifier: modifier}
}

// Rows returns the scaled change and diagnostic lines for height rows.
func (p *Picomap) Rows(height int) (changes, diags Line) {
	changes = NewLine(p.Changes).Scale(height, p.Smoothing)
	diags = NewLine(p.Diags).Scale(height, p.Smoothing)
	return changes, diags
}

// Lines renders length buffer lines into exactly height rows. Either
// dimension being zero yields no rows.
func (p *Picomap) Lines(length, height int) []string {
	if length <= 0 || height <= 0 {
		return nil
	}
	changes, diags := p.Rows(height)

	out := make([]string, height)
	var sb strings.Builder
	for i := range height {
		sb.Reset()
		FormatRow(&sb, changes.At(i), diags.At(i), p.Modifier.Marker(i, length, height))
		out[i] = sb.String()
	}
	return out
}

// FormatRow writes one row: change glyph, diagnostic glyph, both values as
// zero-padded two-digit decimals, then the marker.
func FormatRow(sb *strings.Builder, change, diag Cell, marker rune) {
	sb.WriteRune(change.Block.Rune())
	sb.WriteRune(diag.Block.Rune())
	writePadded(sb, change.Value)
	writePadded(sb, diag.Value)
	sb.WriteRune(marker)
}

func writePadded(sb *strings.Builder, v highlight.Highlight) {
	if v < 10 {
		sb.WriteByte('0')
	}
	sb.WriteString(strconv.FormatUint(uint64(v), 10))
}

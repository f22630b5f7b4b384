package picomap

import "picomap/internal/highlight"

// Cell is one aggregated position: its block flags and carried intensity.
type Cell struct {
	Block Block
	Value highlight.Highlight
}

// Line is a sequence of aggregated cells.
type Line []Cell

// NewLine folds highlights pairwise. Cell i records whether line i-1 (top)
// and line i (bottom) carry signal; the value of line i takes precedence
// over line i-1. Cell 0 has no previous line and is either full or empty.
func NewLine(highlights highlight.Highlights) Line {
	if len(highlights) == 0 {
		return nil
	}
	line := make(Line, len(highlights))
	if first := highlights[0]; first > 0 {
		line[0] = Cell{Block: BlockFull, Value: first}
	}
	for i := 1; i < len(highlights); i++ {
		prev, curr := highlights[i-1], highlights[i]
		var cell Cell
		if prev > 0 {
			cell.Block = cell.Block.Or(BlockTop)
			cell.Value = prev
		}
		if curr > 0 {
			cell.Block = cell.Block.Or(BlockBottom)
			cell.Value = curr
		}
		line[i] = cell
	}
	return line
}

// At returns the cell at i, or an empty cell when i is out of range.
func (l Line) At(i int) Cell {
	if i < 0 || i >= len(l) {
		return Cell{}
	}
	return l[i]
}

// Scale downsamples the line to exactly height cells. Row r folds the
// cells in [floor(r*s), floor((r+1)*s)) with s = len/height, OR-ing blocks
// and keeping the maximum value, both seeded with the cell at the range
// start. When height exceeds the length, rows repeat their seed cell.
func (l Line) Scale(height int, smoothing Smoothing) Line {
	n := len(l)
	if n == 0 || height <= 0 {
		return nil
	}
	scale := float64(n) / float64(height)

	result := make(Line, height)
	for r := range height {
		offset := min(int(float64(r)*scale), n-1)
		limit := min(int(float64(r+1)*scale), n)

		acc := l[offset]
		for _, c := range l[offset:max(limit, offset)] {
			acc.Block = acc.Block.Or(c.Block)
			acc.Value = max(acc.Value, c.Value)
		}
		result[r] = acc
	}

	smoothForward(result)
	if smoothing == SmoothSymmetric {
		smoothBackward(result)
	}
	return result
}

// smoothForward turns runs of bottom-only rows into solid blocks: a bottom
// half continues from above, so the row after another bottom row is full.
func smoothForward(rows Line) {
	if len(rows) == 0 {
		return
	}
	prev := rows[0].Block
	for i := 1; i < len(rows); i++ {
		block := rows[i].Block
		if prev == BlockBottom && block == BlockBottom {
			rows[i].Block = BlockFull
		}
		prev = block
	}
}

// smoothBackward is the mirror of smoothForward for top-only runs.
func smoothBackward(rows Line) {
	if len(rows) == 0 {
		return
	}
	next := rows[len(rows)-1].Block
	for i := len(rows) - 2; i >= 0; i-- {
		block := rows[i].Block
		if next == BlockTop && block == BlockTop {
			rows[i].Block = BlockFull
		}
		next = block
	}
}

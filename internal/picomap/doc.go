// Package picomap downsamples per-line intensity arrays into a fixed number
// of display rows and formats them as the side panel's text.
//
// # Pipeline
//
//	NewLine(highlights)   pairwise fold into half-character blocks
//	Line.Scale(height)    downsample to exactly height cells
//	Picomap.Lines(n, h)   format change/diag cells plus the overlay marker
//
// Every display glyph stands for two virtual half lines: a cell records
// whether the previous line (BlockTop) and the current line (BlockBottom)
// carry signal. Scaling never averages; a row is the OR of all blocks
// beneath it and the max of all intensities beneath it.
//
// # Row format
//
// Each row is the change glyph, the diagnostic glyph, the change intensity
// and the diagnostic intensity as two-digit decimals, then one marker:
//
//	▌ 0100c
//
// Markers resolve in priority order: 'c' cursor, 's' selection,
// 'v' visible viewport, ' ' none.
package picomap

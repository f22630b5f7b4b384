// Package highlight converts sparse per-line editor events into dense
// per-line intensity arrays.
//
// Two highlighters exist: DiagnosticsHighlighter folds diagnostics by
// severity and ChangeHighlighter folds change hunks into a boolean mask.
// Both keep the last synced array and rebuild it from scratch on every
// Sync; nothing is diffed or carried over between calls.
//
// Intensity codes:
//
//   - 0: no signal (Level None, unchanged line)
//   - 1: LevelWarning or a changed line
//   - 2: LevelDanger
//
// Events that reference lines outside the synced length are dropped
// without error.
package highlight

package highlight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeHighlighterEmptySync(t *testing.T) {
	for _, n := range []int{0, 1, 7, 500, 1200} {
		h := NewChangeHighlighter()
		h.Sync(n, nil)

		got := h.Highlight()
		require.Len(t, got, n)
		for _, v := range got {
			assert.Zero(t, v)
		}
	}
}

func TestChangeHighlighterMarksRuns(t *testing.T) {
	h := NewChangeHighlighter()
	h.Sync(8, []Change{
		{Start: 1, Length: 2},
		{Start: 2, Length: 2},
		{Start: 7, Length: 5},
	})

	assert.Equal(t, Highlights{0, 1, 1, 1, 0, 0, 0, 1}, h.Highlight())
}

func TestChangeHighlighterUsesStartDirectly(t *testing.T) {
	h := NewChangeHighlighter()
	h.Sync(3, []Change{{Start: 0, Length: 1}})

	assert.Equal(t, Highlights{1, 0, 0}, h.Highlight())
}

func TestChangeHighlighterDropsOutOfRange(t *testing.T) {
	h := NewChangeHighlighter()
	h.Sync(4, []Change{
		{Start: 10, Length: 3},
		{Start: -2, Length: 3},
		{Start: 2, Length: -1},
		{Start: 3, Length: 0},
	})

	assert.Equal(t, Highlights{1, 0, 0, 0}, h.Highlight())
}

func TestChangeHighlighterClampsHugeLength(t *testing.T) {
	h := NewChangeHighlighter()
	h.Sync(4, []Change{{Start: 2, Length: math.MaxInt}})

	assert.Equal(t, Highlights{0, 0, 1, 1}, h.Highlight())
}

func TestChangeHighlighterSyncReplacesState(t *testing.T) {
	h := NewChangeHighlighter()
	h.Sync(10, []Change{{Start: 0, Length: 10}})
	require.Equal(t, 10, h.Len())

	h.Sync(3, nil)
	assert.Equal(t, Highlights{0, 0, 0}, h.Highlight())

	h.Sync(5, []Change{{Start: 4, Length: 1}})
	assert.Equal(t, Highlights{0, 0, 0, 0, 1}, h.Highlight())
}

func TestDiagnosticsHighlighterLastWriteWins(t *testing.T) {
	h := NewDiagnosticsHighlighter()
	h.Sync(4, []Diagnostic{
		{Line: 1, Level: LevelDanger},
		{Line: 1, Level: LevelWarning},
		{Line: 3, Level: LevelWarning},
		{Line: 3, Level: LevelDanger},
		{Line: 0, Level: LevelWarning},
		{Line: 0, Level: LevelNone},
	})

	assert.Equal(t, Highlights{0, 1, 0, 2}, h.Highlight())
}

func TestDiagnosticsHighlighterDropsOutOfRange(t *testing.T) {
	h := NewDiagnosticsHighlighter()
	h.Sync(2, []Diagnostic{
		{Line: 2, Level: LevelDanger},
		{Line: 99, Level: LevelWarning},
		{Line: -1, Level: LevelWarning},
	})

	assert.Equal(t, Highlights{0, 0}, h.Highlight())
}

func TestDiagnosticsHighlighterSyncResets(t *testing.T) {
	h := NewDiagnosticsHighlighter()
	h.Sync(3, []Diagnostic{{Line: 2, Level: LevelDanger}})
	h.Sync(6, nil)

	require.Equal(t, 6, h.Len())
	assert.Equal(t, Highlights{0, 0, 0, 0, 0, 0}, h.Highlight())
}

func TestLevelCode(t *testing.T) {
	tests := []struct {
		level Level
		code  Highlight
		name  string
	}{
		{LevelNone, 0, "none"},
		{LevelWarning, 1, "warning"},
		{LevelDanger, 2, "danger"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.level.Code())
		assert.Equal(t, tt.name, tt.level.String())
	}
}

func TestHighlightersSatisfyInterface(t *testing.T) {
	var _ Highlighter = NewChangeHighlighter()
	var _ Highlighter = NewDiagnosticsHighlighter()
}

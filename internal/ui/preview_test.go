package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picomap/internal/picomap"
	"picomap/internal/snapshot"
)

func testSnapshot(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	s, err := snapshot.Decode(`
lines = 20
height = 5
cursor = 2

[visible]
top = 0
bottom = 6

[[diagnostic]]
line = 4
level = "error"
text = "boom"

[[change]]
start = 10
length = 3
`)
	require.NoError(t, err)
	return s
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPreviewMovesCursor(t *testing.T) {
	m := NewPreviewModel("snap", testSnapshot(t))
	assert.Equal(t, 2, m.Cursor())

	m.Update(runes("j"))
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 4, m.Cursor())

	m.Update(runes("k"))
	assert.Equal(t, 3, m.Cursor())

	m.Update(runes("G"))
	assert.Equal(t, 19, m.Cursor())
	assert.Equal(t, picomap.Frame{Top: 14, Bottom: 20}, m.visible)

	m.Update(runes("j"))
	assert.Equal(t, 19, m.Cursor())

	m.Update(runes("g"))
	assert.Equal(t, 0, m.Cursor())
	assert.Equal(t, picomap.Frame{Top: 0, Bottom: 6}, m.visible)
}

func TestPreviewToggleSelection(t *testing.T) {
	m := NewPreviewModel("snap", testSnapshot(t))
	_, ok := m.Selection()
	assert.False(t, ok)

	m.Update(runes("v"))
	m.Update(runes("j"))
	m.Update(runes("j"))
	sel, ok := m.Selection()
	require.True(t, ok)
	assert.Equal(t, picomap.Frame{Top: 2, Bottom: 4}, sel)

	m.Update(runes("v"))
	_, ok = m.Selection()
	assert.False(t, ok)
}

func TestPreviewQuit(t *testing.T) {
	m := NewPreviewModel("snap", testSnapshot(t))
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestPreviewViewFollowsWindowSize(t *testing.T) {
	m := NewPreviewModel("snap", testSnapshot(t))
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 12})

	view := m.View()
	lines := strings.Split(view, "\n")
	// header, ten panel rows, help
	require.Len(t, lines, 12)
	assert.Contains(t, lines[0], "20 lines, 10 rows")
	assert.Contains(t, lines[1], "1-2")
	assert.Contains(t, lines[10], "19-20")
	assert.Contains(t, view, "▌")
	assert.Contains(t, lines[11], "quit")
}

func TestPreviewEmptySnapshot(t *testing.T) {
	s, err := snapshot.Decode("lines = 0\n")
	require.NoError(t, err)
	m := NewPreviewModel("empty", s)
	m.Update(runes("j"))
	assert.Equal(t, 0, m.Cursor())
	assert.NotEmpty(t, m.View())
}

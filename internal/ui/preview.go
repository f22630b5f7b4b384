package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"picomap/internal/highlight"
	"picomap/internal/picomap"
	"picomap/internal/snapshot"
)

// chromeRows is the header plus the help line.
const chromeRows = 2

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	gutterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	changeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dangerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	markerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
)

// PreviewModel renders a snapshot as a side panel next to a gutter of
// buffer line ranges.
type PreviewModel struct {
	title     string
	lines     int
	smoothing picomap.Smoothing
	changes   highlight.Highlights
	diags     highlight.Highlights

	cursor    int
	visible   picomap.Frame
	anchor    int
	selecting bool

	keys   keyMap
	help   help.Model
	width  int
	height int
}

// NewPreviewModel returns a preview of s. The height of s seeds the view
// until the first window size message arrives.
func NewPreviewModel(title string, s *snapshot.Snapshot) *PreviewModel {
	changes, diags := s.Highlights()
	smoothing, _ := picomap.ParseSmoothing(s.Smoothing)
	m := &PreviewModel{
		title:     title,
		lines:     s.Lines,
		smoothing: smoothing,
		changes:   changes,
		diags:     diags,
		cursor:    clamp(s.Cursor, 0, max(s.Lines-1, 0)),
		visible:   picomap.Frame{Top: s.Visible.Top, Bottom: s.Visible.Bottom},
		keys:      defaultKeyMap(),
		help:      help.New(),
		width:     80,
		height:    max(s.Height, 1) + chromeRows,
	}
	if s.Selection != nil {
		m.anchor = s.Selection.Start
		m.cursor = clamp(s.Selection.End, 0, max(s.Lines-1, 0))
		m.selecting = true
	}
	return m
}

func (m *PreviewModel) Init() tea.Cmd { return nil }

func (m *PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.help.Width = msg.Width
		}
		if msg.Height > 0 {
			m.height = msg.Height
		}
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Down):
			m.moveTo(m.cursor + 1)
		case key.Matches(msg, m.keys.Up):
			m.moveTo(m.cursor - 1)
		case key.Matches(msg, m.keys.Top):
			m.moveTo(0)
		case key.Matches(msg, m.keys.Bottom):
			m.moveTo(m.lines - 1)
		case key.Matches(msg, m.keys.Select):
			m.selecting = !m.selecting
			m.anchor = m.cursor
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

// moveTo places the cursor and scrolls the visible frame to keep it in
// view.
func (m *PreviewModel) moveTo(line int) {
	if m.lines <= 0 {
		return
	}
	m.cursor = clamp(line, 0, m.lines-1)
	span := max(m.visible.Bottom-m.visible.Top, 1)
	switch {
	case m.cursor < m.visible.Top:
		m.visible = picomap.Frame{Top: m.cursor, Bottom: m.cursor + span}
	case m.cursor >= m.visible.Bottom:
		m.visible = picomap.Frame{Top: m.cursor - span + 1, Bottom: m.cursor + 1}
	}
}

// Cursor returns the 0-based cursor line.
func (m *PreviewModel) Cursor() int { return m.cursor }

// Selection returns the selection frame while one is active.
func (m *PreviewModel) Selection() (picomap.Frame, bool) {
	return picomap.Frame{Top: m.anchor, Bottom: m.cursor}, m.selecting
}

func (m *PreviewModel) modifier() picomap.Modifier {
	mod := picomap.NewModifier(m.cursor, m.visible)
	if sel, ok := m.Selection(); ok {
		mod = mod.WithSelection(sel)
	}
	return mod
}

func (m *PreviewModel) rows() int {
	return max(m.height-chromeRows, 1)
}

func (m *PreviewModel) View() string {
	rows := m.rows()
	p := picomap.New(m.changes, m.diags, m.modifier())
	p.Smoothing = m.smoothing
	changes, diags := p.Rows(rows)

	gutter := runewidth.StringWidth(strconv.Itoa(m.lines))*2 + 1

	var b strings.Builder
	header := fmt.Sprintf("%s  %d lines, %d rows, cursor %d", m.title, m.lines, rows, m.cursor+1)
	b.WriteString(titleStyle.Render(runewidth.Truncate(header, m.width, "...")))
	b.WriteString("\n")

	if m.lines > 0 {
		for i := range rows {
			start, end := snapshot.RowRange(i, m.lines, rows)
			label := fmt.Sprintf("%d-%d", start+1, end)
			b.WriteString(gutterStyle.Render(runewidth.FillLeft(label, gutter)))
			b.WriteString(" ")
			b.WriteString(renderCell(changes.At(i), changeStyle))
			b.WriteString(renderCell(diags.At(i), diagStyle(diags.At(i).Value)))
			b.WriteString(renderMarker(p.Modifier.Marker(i, m.lines, rows)))
			b.WriteString("\n")
		}
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func renderCell(c picomap.Cell, style lipgloss.Style) string {
	return style.Render(string(c.Block.Rune()))
}

func diagStyle(v highlight.Highlight) lipgloss.Style {
	switch {
	case v >= highlight.LevelDanger.Code():
		return dangerStyle
	case v >= highlight.LevelWarning.Code():
		return warnStyle
	default:
		return gutterStyle
	}
}

func renderMarker(r rune) string {
	switch r {
	case picomap.MarkerCursor:
		return cursorStyle.Render("●")
	case picomap.MarkerSelection:
		return markerStyle.Render("┃")
	case picomap.MarkerVisible:
		return markerStyle.Render("│")
	default:
		return " "
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

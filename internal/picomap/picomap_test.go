package picomap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"picomap/internal/highlight"
)

func TestPicomapFormat(t *testing.T) {
	p := New(highlight.Highlights{1, 2, 3}, highlight.Highlights{0, 0, 0}, Modifier{})

	assert.Equal(t, []string{"▌ 0100c", "▌ 0200 ", "▌ 0300 "}, p.Lines(3, 3))
}

func TestPicomapFormatZoomIn(t *testing.T) {
	p := New(highlight.Highlights{1, 2, 3}, highlight.Highlights{0, 0, 0}, Modifier{})

	assert.Equal(t, []string{
		"▌ 0100c",
		"▌ 0100c",
		"▌ 0100c",
		"▌ 0100c",
		"▌ 0200 ",
		"▌ 0200 ",
		"▌ 0200 ",
		"▌ 0300 ",
		"▌ 0300 ",
		"▌ 0300 ",
	}, p.Lines(3, 10))
}

func TestPicomapFormatZoomOut(t *testing.T) {
	p := New(
		highlight.Highlights{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		make(highlight.Highlights, 10),
		Modifier{},
	)

	assert.Equal(t, []string{"▖ 0100c", "▌ 0300 ", "▌ 0500 ", "▌ 0700 ", "▌ 0900 "}, p.Lines(10, 5))
}

func TestPicomapDiagnosticColumn(t *testing.T) {
	p := New(
		highlight.Highlights{0, 0, 0, 0},
		highlight.Highlights{0, 2, 0, 0},
		NewModifier(3, Frame{Top: 2, Bottom: 3}),
	)

	assert.Equal(t, []string{"  0000 ", " ▖0002 ", " ▘0002v", "  0000c"}, p.Lines(4, 4))
}

func TestPicomapLineCount(t *testing.T) {
	for _, length := range []int{1, 2, 3, 17, 100, 1001} {
		for _, height := range []int{1, 2, 5, 40, 333} {
			p := New(make(highlight.Highlights, length), make(highlight.Highlights, length), Modifier{})
			assert.Len(t, p.Lines(length, height), height, "length=%d height=%d", length, height)
		}
	}
}

func TestPicomapDegenerateGeometry(t *testing.T) {
	p := New(highlight.Highlights{1, 1}, highlight.Highlights{0, 0}, Modifier{})

	assert.Empty(t, p.Lines(0, 10))
	assert.Empty(t, p.Lines(2, 0))
	assert.Empty(t, p.Lines(-1, 3))
}

func TestPicomapShortHighlightsRenderEmpty(t *testing.T) {
	p := New(nil, nil, Modifier{Cursor: 99})

	assert.Equal(t, []string{"  0000v", "  0000 "}, p.Lines(4, 2))
}

func TestFormatRowPadsValues(t *testing.T) {
	p := New(highlight.Highlights{12}, highlight.Highlights{7}, Modifier{Cursor: 5})

	assert.Equal(t, []string{"▌▌1207v"}, p.Lines(1, 1))
}

package picomap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameContains(t *testing.T) {
	tests := []struct {
		name   string
		frame  Frame
		offset float64
		scale  float64
		want   bool
	}{
		{"inside", Frame{Top: 2, Bottom: 8}, 4, 1, true},
		{"reversed bounds", Frame{Top: 8, Bottom: 2}, 4, 1, true},
		{"starts at window end", Frame{Top: 5, Bottom: 9}, 4, 1, false},
		{"ends at window start", Frame{Top: 0, Bottom: 4}, 4, 1, true},
		{"ends before window", Frame{Top: 0, Bottom: 3}, 4, 1, false},
		{"fractional window", Frame{Top: 3, Bottom: 3}, 2.5, 1.5, true},
		{"empty frame at zero", Frame{}, 0, 0.3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.frame.Contains(tt.offset, tt.scale))
		})
	}
}

func TestModifierPriority(t *testing.T) {
	frames := []Frame{{Top: 0, Bottom: 20}, {Top: 20, Bottom: 0}}
	for _, visible := range frames {
		for _, sel := range frames {
			m := NewModifier(5, visible).WithSelection(sel)
			assert.Equal(t, MarkerCursor, m.Marker(5, 20, 20))
			assert.Equal(t, MarkerSelection, m.Marker(6, 20, 20))
		}
	}
}

func TestModifierSelectionBeatsVisible(t *testing.T) {
	m := NewModifier(0, Frame{Top: 0, Bottom: 10}).WithSelection(Frame{Top: 6, Bottom: 4})

	var got []rune
	for row := range 10 {
		got = append(got, m.Marker(row, 10, 10))
	}

	assert.Equal(t, []rune("cvvvsssvvv"), got)
}

func TestModifierWithoutFrames(t *testing.T) {
	m := Modifier{Cursor: 50, Visible: Frame{Top: 90, Bottom: 99}}

	assert.Equal(t, MarkerNone, m.Marker(0, 100, 10))
	assert.Equal(t, MarkerCursor, m.Marker(5, 100, 10))
	assert.Equal(t, MarkerVisible, m.Marker(9, 100, 10))
}

func TestModifierDegenerate(t *testing.T) {
	m := Modifier{}

	assert.Equal(t, MarkerNone, m.Marker(0, 0, 10))
	assert.Equal(t, MarkerNone, m.Marker(0, 10, 0))
}

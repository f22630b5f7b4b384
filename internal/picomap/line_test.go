package picomap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picomap/internal/highlight"
)

func TestNewLineAllZero(t *testing.T) {
	for _, n := range []int{1, 2, 9, 64} {
		line := NewLine(make(highlight.Highlights, n))
		require.Len(t, line, n)
		for _, c := range line {
			assert.Equal(t, Cell{}, c)
		}
	}
}

func TestNewLineEmpty(t *testing.T) {
	assert.Nil(t, NewLine(nil))
}

func TestNewLinePairs(t *testing.T) {
	line := NewLine(highlight.Highlights{2, 0, 1, 3, 0, 0})

	assert.Equal(t, Line{
		{Block: BlockFull, Value: 2},
		{Block: BlockTop, Value: 2},
		{Block: BlockBottom, Value: 1},
		{Block: BlockFull, Value: 3},
		{Block: BlockTop, Value: 3},
		{Block: BlockNone, Value: 0},
	}, line)
}

func TestNewLineCurrentValueWins(t *testing.T) {
	line := NewLine(highlight.Highlights{2, 1})

	assert.Equal(t, Cell{Block: BlockFull, Value: 1}, line[1])
}

func TestScaleLength(t *testing.T) {
	line := NewLine(highlight.Highlights{0, 1, 0, 2, 0, 0, 1, 1, 0, 2, 2})
	for _, height := range []int{1, 2, 3, 10, 11, 12, 50} {
		assert.Len(t, line.Scale(height, SmoothForward), height)
		assert.Len(t, line.Scale(height, SmoothSymmetric), height)
	}
}

func TestScaleDegenerate(t *testing.T) {
	assert.Nil(t, Line(nil).Scale(10, SmoothForward))
	assert.Nil(t, NewLine(highlight.Highlights{1}).Scale(0, SmoothForward))
}

func TestScaleIdentity(t *testing.T) {
	// No two adjacent bottom-only cells, so smoothing leaves the line as is.
	line := NewLine(highlight.Highlights{0, 1, 1, 0, 2, 0, 0, 1})
	scaled := line.Scale(len(line), SmoothForward)

	assert.Equal(t, line, scaled)
	assert.Equal(t, scaled, line.Scale(len(line), SmoothForward))
}

func TestScaleKeepsMaxAndOr(t *testing.T) {
	line := Line{
		{Block: BlockTop, Value: 1},
		{Block: BlockNone, Value: 0},
		{Block: BlockBottom, Value: 2},
		{Block: BlockNone, Value: 0},
	}

	scaled := line.Scale(1, SmoothForward)

	assert.Equal(t, Line{{Block: BlockFull, Value: 2}}, scaled)
}

func TestScaleZoomInReplicates(t *testing.T) {
	line := Line{{Block: BlockFull, Value: 4}}

	scaled := line.Scale(3, SmoothForward)

	assert.Equal(t, Line{
		{Block: BlockFull, Value: 4},
		{Block: BlockFull, Value: 4},
		{Block: BlockFull, Value: 4},
	}, scaled)
}

func TestScaleForwardSmoothing(t *testing.T) {
	line := Line{
		{Block: BlockBottom, Value: 1},
		{Block: BlockBottom, Value: 1},
		{Block: BlockBottom, Value: 1},
		{Block: BlockTop, Value: 1},
		{Block: BlockTop, Value: 1},
	}

	scaled := line.Scale(len(line), SmoothForward)

	assert.Equal(t, []Block{BlockBottom, BlockFull, BlockFull, BlockTop, BlockTop}, blocks(scaled))
}

func TestScaleSymmetricSmoothing(t *testing.T) {
	line := Line{
		{Block: BlockBottom, Value: 1},
		{Block: BlockBottom, Value: 1},
		{Block: BlockNone, Value: 0},
		{Block: BlockTop, Value: 1},
		{Block: BlockTop, Value: 1},
		{Block: BlockTop, Value: 1},
	}

	scaled := line.Scale(len(line), SmoothSymmetric)

	assert.Equal(t, []Block{BlockBottom, BlockFull, BlockNone, BlockFull, BlockFull, BlockTop}, blocks(scaled))
}

func TestLineAtOutOfRange(t *testing.T) {
	line := Line{{Block: BlockFull, Value: 1}}

	assert.Equal(t, Cell{}, line.At(-1))
	assert.Equal(t, Cell{}, line.At(1))
	assert.Equal(t, line[0], line.At(0))
}

func TestBlockOr(t *testing.T) {
	assert.Equal(t, BlockFull, BlockTop.Or(BlockBottom))
	assert.Equal(t, BlockTop, BlockTop.Or(BlockNone))
	assert.Equal(t, BlockFull, BlockFull.Or(BlockTop))
	assert.True(t, BlockFull.HasTop())
	assert.True(t, BlockFull.HasBottom())
	assert.False(t, BlockBottom.HasTop())
	assert.Equal(t, []rune{'▌', '▘', '▖', ' '}, []rune{BlockFull.Rune(), BlockTop.Rune(), BlockBottom.Rune(), BlockNone.Rune()})
}

func TestParseSmoothing(t *testing.T) {
	s, err := ParseSmoothing("Symmetric")
	require.NoError(t, err)
	assert.Equal(t, SmoothSymmetric, s)

	s, err = ParseSmoothing("")
	require.NoError(t, err)
	assert.Equal(t, SmoothForward, s)

	_, err = ParseSmoothing("both")
	assert.Error(t, err)
}

func blocks(l Line) []Block {
	out := make([]Block, len(l))
	for i, c := range l {
		out[i] = c.Block
	}
	return out
}

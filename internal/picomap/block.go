package picomap

// Block describes which half of a display glyph carries signal.
type Block uint8

const (
	BlockNone   Block = 0b00
	BlockTop    Block = 0b01
	BlockBottom Block = 0b10
	BlockFull   Block = 0b11
)

// Or combines two blocks: the result carries every half set in either.
func (b Block) Or(other Block) Block {
	return b | other
}

// HasTop reports whether the upper half carries signal.
func (b Block) HasTop() bool { return b&BlockTop != 0 }

// HasBottom reports whether the lower half carries signal.
func (b Block) HasBottom() bool { return b&BlockBottom != 0 }

// Rune returns the glyph drawn for the block.
func (b Block) Rune() rune {
	switch b {
	case BlockFull:
		return '▌'
	case BlockTop:
		return '▘'
	case BlockBottom:
		return '▖'
	default:
		return ' '
	}
}

func (b Block) String() string {
	switch b {
	case BlockFull:
		return "full"
	case BlockTop:
		return "top"
	case BlockBottom:
		return "bottom"
	default:
		return "none"
	}
}

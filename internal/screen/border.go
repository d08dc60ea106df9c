package screen

// BorderStyle selects the box-drawing character set for a window
// frame.
type BorderStyle int

const (
	BorderNone BorderStyle = iota
	BorderSingle
	BorderDouble
	BorderRounded
)

// Box drawing character sets indexed by BorderStyle.
var borderRunes = [...][6]rune{
	BorderNone:    {' ', ' ', ' ', ' ', ' ', ' '},
	BorderSingle:  {'┌', '─', '┐', '│', '└', '┘'},
	BorderDouble:  {'╔', '═', '╗', '║', '╚', '╝'},
	BorderRounded: {'╭', '─', '╮', '│', '╰', '╯'},
}

const (
	borderTL = 0 // top-left
	borderH  = 1 // horizontal
	borderTR = 2 // top-right
	borderV  = 3 // vertical
	borderBL = 4 // bottom-left
	borderBR = 5 // bottom-right
)

func (s BorderStyle) runes() [6]rune {
	if s < 0 || int(s) >= len(borderRunes) {
		return borderRunes[BorderSingle]
	}
	return borderRunes[s]
}

func (s BorderStyle) String() string {
	switch s {
	case BorderNone:
		return "none"
	case BorderSingle:
		return "single"
	case BorderDouble:
		return "double"
	case BorderRounded:
		return "rounded"
	default:
		return "unknown"
	}
}

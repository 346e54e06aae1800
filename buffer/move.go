package buffer

import "github.com/zenote/zen/internal/grapheme"

type MoveUnit int

const (
	MoveGrapheme MoveUnit = iota
	MoveWord
	MoveLine
	// MoveBlock jumps between block starts: a change of block kind, or text
	// after an empty row.
	MoveBlock
	MoveDoc
)

type MoveDir int

const (
	DirLeft MoveDir = iota
	DirRight
	DirUp
	DirDown
	DirHome // start of the unit
	DirEnd  // end of the unit
)

type Move struct {
	Unit   MoveUnit
	Dir    MoveDir
	Extend bool // if true, updates selection anchor/end; if false clears selection
}

// Move moves the cursor by m and emits a Change when the cursor or
// selection actually moved.
func (b *Buffer) Move(m Move) {
	prevCursor := b.cursor
	prevSel := b.sel

	nextCursor := b.clampPos(b.moveCursor(prevCursor, m))

	nextSel := selectionState{}
	if m.Extend {
		anchor := prevCursor
		if prevSel.active && prevSel.anchor != prevSel.end {
			anchor = prevSel.anchor
		}
		if anchor != nextCursor {
			nextSel = selectionState{active: true, anchor: anchor, end: nextCursor}
		}
	}

	if prevCursor == nextCursor && selectionStateEqual(prevSel, nextSel) {
		return
	}

	change := b.beginChange(ChangeSourceLocal)
	b.cursor = nextCursor
	b.sel = nextSel
	b.version++
	b.commitChange(change)
}

// SelectAll selects the whole document.
func (b *Buffer) SelectAll() {
	b.SetSelection(Range{End: b.endPos()})
}

func (b *Buffer) moveCursor(p Pos, m Move) Pos {
	switch m.Unit {
	case MoveGrapheme:
		return b.moveGrapheme(p, m.Dir)
	case MoveWord:
		return b.moveWord(p, m.Dir)
	case MoveLine:
		return b.moveLine(p, m.Dir)
	case MoveBlock:
		return b.moveBlock(p, m.Dir)
	case MoveDoc:
		return b.moveDoc(p, m.Dir)
	default:
		return p
	}
}

func (b *Buffer) moveGrapheme(p Pos, dir MoveDir) Pos {
	switch dir {
	case DirLeft:
		if p.GraphemeCol > 0 {
			return Pos{Row: p.Row, GraphemeCol: p.GraphemeCol - 1}
		}
		if p.Row == 0 {
			return p
		}
		return Pos{Row: p.Row - 1, GraphemeCol: len(b.lines[p.Row-1])}
	case DirRight:
		if p.GraphemeCol < len(b.lines[p.Row]) {
			return Pos{Row: p.Row, GraphemeCol: p.GraphemeCol + 1}
		}
		if p.Row == len(b.lines)-1 {
			return p
		}
		return Pos{Row: p.Row + 1}
	default:
		return b.moveLine(p, dir)
	}
}

func (b *Buffer) moveWord(p Pos, dir MoveDir) Pos {
	row, col := p.Row, p.GraphemeCol
	line := b.lines[row]

	switch dir {
	case DirLeft:
		return Pos{Row: row, GraphemeCol: prevWordBoundary(line, col)}
	case DirRight:
		return Pos{Row: row, GraphemeCol: nextWordBoundary(line, col)}
	case DirHome:
		return Pos{Row: row, GraphemeCol: 0}
	case DirEnd:
		return Pos{Row: row, GraphemeCol: len(line)}
	default:
		return p
	}
}

func (b *Buffer) moveLine(p Pos, dir MoveDir) Pos {
	row, col := p.Row, p.GraphemeCol
	lastRow := len(b.lines) - 1

	switch dir {
	case DirHome:
		return Pos{Row: row, GraphemeCol: 0}
	case DirEnd:
		return Pos{Row: row, GraphemeCol: len(b.lines[row])}
	case DirUp:
		if row == 0 {
			return p
		}
		nr := row - 1
		return Pos{Row: nr, GraphemeCol: min(col, len(b.lines[nr]))}
	case DirDown:
		if row == lastRow {
			return p
		}
		nr := row + 1
		return Pos{Row: nr, GraphemeCol: min(col, len(b.lines[nr]))}
	default:
		return p
	}
}

func (b *Buffer) moveDoc(p Pos, dir MoveDir) Pos {
	switch dir {
	case DirHome, DirUp:
		return Pos{}
	case DirEnd, DirDown:
		return b.endPos()
	default:
		return p
	}
}

func (b *Buffer) endPos() Pos {
	last := len(b.lines) - 1
	return Pos{Row: last, GraphemeCol: len(b.lines[last])}
}

func (b *Buffer) moveBlock(p Pos, dir MoveDir) Pos {
	start := b.blockStart(p.Row)
	switch dir {
	case DirUp:
		if p.Row == start && p.GraphemeCol == 0 && start > 0 {
			start = b.blockStart(start - 1)
		}
		return Pos{Row: start}
	case DirDown:
		for row := p.Row + 1; row < len(b.lines); row++ {
			if b.startsBlock(row) {
				return Pos{Row: row}
			}
		}
		return b.endPos()
	case DirHome:
		return Pos{Row: start}
	case DirEnd:
		row := p.Row
		for row+1 < len(b.lines) && !b.startsBlock(row+1) {
			row++
		}
		return Pos{Row: row, GraphemeCol: len(b.lines[row])}
	default:
		return p
	}
}

func (b *Buffer) blockStart(row int) int {
	for row > 0 && !b.startsBlock(row) {
		row--
	}
	return row
}

func (b *Buffer) startsBlock(row int) bool {
	if row == 0 {
		return true
	}
	if !b.blocks[row].sameShape(b.blocks[row-1]) {
		return true
	}
	return len(b.lines[row-1]) == 0 && len(b.lines[row]) > 0
}

// Word boundaries:
// - skip whitespace, then skip non-whitespace
// - newline is a hard boundary (so this operates on a single logical line)
func prevWordBoundary(line []string, col int) int {
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}
	i := col
	for i > 0 && grapheme.IsSpace(line[i-1]) {
		i--
	}
	for i > 0 && !grapheme.IsSpace(line[i-1]) {
		i--
	}
	return i
}

func nextWordBoundary(line []string, col int) int {
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}
	i := col
	for i < len(line) && grapheme.IsSpace(line[i]) {
		i++
	}
	for i < len(line) && !grapheme.IsSpace(line[i]) {
		i++
	}
	return i
}

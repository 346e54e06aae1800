package buffer

import (
	"strings"

	"github.com/zenote/zen/internal/grapheme"
)

// InsertText inserts text at the cursor, or replaces the active selection.
func (b *Buffer) InsertText(s string) {
	if s == "" {
		if _, ok := b.Selection(); ok {
			b.DeleteSelection()
		}
		return
	}

	r, ok := b.Selection()
	if !ok {
		r = Range{Start: b.cursor, End: b.cursor}
	}
	b.editOne(r, s)
}

// InsertNewline splits the current row. Pressing it on an empty list or task
// row turns that row back into a paragraph instead.
func (b *Buffer) InsertNewline() {
	if _, ok := b.Selection(); !ok {
		row := b.cursor.Row
		switch b.blocks[row].Kind {
		case BlockBullet, BlockOrdered, BlockTask:
			if len(b.lines[row]) == 0 {
				b.setRowBlock(row, Paragraph())
				return
			}
		}
	}
	b.InsertText("\n")
}

// DeleteBackward applies backspace semantics. At the start of a structured
// row it first reverts the row to a paragraph.
func (b *Buffer) DeleteBackward() {
	if _, ok := b.Selection(); ok {
		b.DeleteSelection()
		return
	}

	row, col := b.cursor.Row, b.cursor.GraphemeCol
	if col == 0 && b.blocks[row].Kind != BlockParagraph {
		b.setRowBlock(row, Paragraph())
		return
	}
	if row == 0 && col == 0 {
		return
	}

	if col > 0 {
		b.editOne(Range{
			Start: Pos{Row: row, GraphemeCol: col - 1},
			End:   Pos{Row: row, GraphemeCol: col},
		}, "")
		return
	}

	// Join with previous line (delete the newline).
	prevRow := row - 1
	b.editOne(Range{
		Start: Pos{Row: prevRow, GraphemeCol: len(b.lines[prevRow])},
		End:   Pos{Row: row, GraphemeCol: 0},
	}, "")
}

// DeleteForward applies delete-key semantics.
func (b *Buffer) DeleteForward() {
	if _, ok := b.Selection(); ok {
		b.DeleteSelection()
		return
	}

	row, col := b.cursor.Row, b.cursor.GraphemeCol
	lastRow := len(b.lines) - 1
	if row == lastRow && col == len(b.lines[lastRow]) {
		return
	}

	if col < len(b.lines[row]) {
		b.editOne(Range{
			Start: Pos{Row: row, GraphemeCol: col},
			End:   Pos{Row: row, GraphemeCol: col + 1},
		}, "")
		return
	}

	b.editOne(Range{
		Start: Pos{Row: row, GraphemeCol: col},
		End:   Pos{Row: row + 1, GraphemeCol: 0},
	}, "")
}

// DeleteSelection deletes the active selection, if any.
func (b *Buffer) DeleteSelection() {
	r, ok := b.Selection()
	if !ok {
		return
	}
	b.editOne(r, "")
}

// ToggleTask flips the checked flag of the task row under the cursor.
func (b *Buffer) ToggleTask() bool {
	row := b.cursor.Row
	blk := b.blocks[row]
	if blk.Kind != BlockTask {
		return false
	}
	blk.Checked = !blk.Checked
	b.setRowBlock(row, blk)
	return true
}

func (b *Buffer) editOne(r Range, text string) {
	prev := b.snapshot()
	change := b.beginChange(ChangeSourceLocal)

	nextCursor, applied, changed := b.replaceRange(r, text)
	if !changed {
		return
	}

	b.cursor = nextCursor
	b.sel = selectionState{}
	b.version++
	b.recordUndo(prev)
	change.addAppliedEdit(applied)
	b.commitChange(change)
}

func (b *Buffer) setRowBlock(row int, blk Block) {
	blk = blk.normalized()
	if b.blocks[row] == blk {
		return
	}
	prev := b.snapshot()
	change := b.beginChange(ChangeSourceLocal)
	b.blocks[row] = blk
	change.blocksChanged = true
	b.version++
	b.recordUndo(prev)
	b.commitChange(change)
}

// replaceRange swaps the text in r for text and keeps one block per row: the
// row that holds r.Start keeps its block and rows created by line breaks in
// text continue it. Inserted clusters take the mark typed at r.Start.
func (b *Buffer) replaceRange(r Range, text string) (nextCursor Pos, applied AppliedEdit, changed bool) {
	r = NormalizeRange(ClampRange(r, len(b.lines), b.lineLen))
	if r.IsEmpty() && text == "" {
		return b.cursor, AppliedEdit{}, false
	}

	startRow, startCol := r.Start.Row, r.Start.GraphemeCol
	endRow, endCol := r.End.Row, r.End.GraphemeCol
	deletedText := textForLinesRange(b.lines, r)
	if deletedText == text {
		return b.cursor, AppliedEdit{}, false
	}

	offset := b.posToOffset(r.Start)
	deletedLen := b.posToOffset(r.End) - offset
	carry := b.insertMark(r.Start)

	prefix := b.lines[startRow][:startCol]
	prefixMarks := b.marks[startRow][:startCol]
	suffix := b.lines[endRow][endCol:]
	suffixMarks := b.marks[endRow][endCol:]

	parts := strings.Split(text, "\n")
	repl := make([][]string, len(parts))
	replMarks := make([][]Mark, len(parts))
	for i, p := range parts {
		ins := grapheme.Split(p)
		var line []string
		var marks []Mark
		if i == 0 {
			line = append(line, prefix...)
			marks = append(marks, prefixMarks...)
		}
		line = append(line, ins...)
		marks = append(marks, repeatMark(carry, len(ins))...)
		if i == len(parts)-1 {
			nextCursor = Pos{Row: startRow + i, GraphemeCol: len(line)}
			line = append(line, suffix...)
			marks = append(marks, suffixMarks...)
		}
		repl[i], replMarks[i] = line, marks
	}

	head := b.blocks[startRow]
	replBlocks := make([]Block, len(repl))
	replBlocks[0] = head
	for i := 1; i < len(replBlocks); i++ {
		replBlocks[i] = head.continuation()
	}
	if head.Kind == BlockCode {
		for _, m := range replMarks {
			clear(m)
		}
	}

	keep := len(b.lines) - endRow - 1
	lines := make([][]string, 0, startRow+len(repl)+keep)
	lines = append(lines, b.lines[:startRow]...)
	lines = append(lines, repl...)
	lines = append(lines, b.lines[endRow+1:]...)

	blocks := make([]Block, 0, len(lines))
	blocks = append(blocks, b.blocks[:startRow]...)
	blocks = append(blocks, replBlocks...)
	blocks = append(blocks, b.blocks[endRow+1:]...)

	marks := make([][]Mark, 0, len(lines))
	marks = append(marks, b.marks[:startRow]...)
	marks = append(marks, replMarks...)
	marks = append(marks, b.marks[endRow+1:]...)

	b.lines = lines
	b.blocks = blocks
	b.marks = marks
	applied = AppliedEdit{
		RangeBefore: r,
		RangeAfter:  Range{Start: r.Start, End: nextCursor},
		InsertText:  text,
		DeletedText: deletedText,
		Offset:      offset,
		DeletedLen:  deletedLen,
		InsertedLen: textLen(text),
	}
	return nextCursor, applied, true
}

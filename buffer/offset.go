package buffer

import (
	"strings"

	"github.com/zenote/zen/internal/grapheme"
)

// Offsets address the document as one flat sequence of grapheme clusters in
// which every row break counts as a single position.

// Len returns the number of offset positions in the document.
func (b *Buffer) Len() int {
	n := 0
	for i, line := range b.lines {
		if i > 0 {
			n++
		}
		n += len(line)
	}
	return n
}

// OffsetOf converts p (clamped into bounds) to a document offset.
func (b *Buffer) OffsetOf(p Pos) int {
	return b.posToOffset(b.clampPos(p))
}

// PosAt converts off (clamped into [0, Len]) to a position.
func (b *Buffer) PosAt(off int) Pos {
	if off <= 0 {
		return Pos{}
	}
	for row, line := range b.lines {
		if off <= len(line) {
			return Pos{Row: row, GraphemeCol: off}
		}
		off -= len(line) + 1
	}
	last := len(b.lines) - 1
	return Pos{Row: last, GraphemeCol: len(b.lines[last])}
}

// Range converts an offset pair to a normalized Range.
func (b *Buffer) Range(from, to int) Range {
	return NormalizeRange(Range{Start: b.PosAt(from), End: b.PosAt(to)})
}

// CaretOffset returns the cursor as a document offset.
func (b *Buffer) CaretOffset() int { return b.posToOffset(b.cursor) }

// SelectionOffsets returns the active selection as offsets, from <= to.
func (b *Buffer) SelectionOffsets() (from, to int, ok bool) {
	r, ok := b.Selection()
	if !ok {
		return 0, 0, false
	}
	return b.posToOffset(r.Start), b.posToOffset(r.End), true
}

// TextBetween returns the text in [from, to). Row breaks are returned as
// '\n'. It returns "" when to <= from.
func (b *Buffer) TextBetween(from, to int) string {
	if to <= from {
		return ""
	}
	r := b.Range(from, to)
	return textForLinesRange(b.lines, r)
}

func (b *Buffer) posToOffset(p Pos) int {
	off := 0
	for row := 0; row < p.Row && row < len(b.lines); row++ {
		off += len(b.lines[row]) + 1
	}
	return off + p.GraphemeCol
}

// textLen returns the offset length of text.
func textLen(text string) int {
	if text == "" {
		return 0
	}
	parts := strings.Split(text, "\n")
	n := len(parts) - 1
	for _, p := range parts {
		n += grapheme.Count(p)
	}
	return n
}

func textForLinesRange(lines [][]string, r Range) string {
	r = NormalizeRange(r)
	if r.IsEmpty() {
		return ""
	}

	startRow, endRow := r.Start.Row, r.End.Row
	startCol, endCol := r.Start.GraphemeCol, r.End.GraphemeCol

	if startRow == endRow {
		return grapheme.Join(lines[startRow][startCol:endCol])
	}

	var sb strings.Builder
	for row := startRow; row <= endRow; row++ {
		if row > startRow {
			sb.WriteByte('\n')
		}
		partStart := 0
		partEnd := len(lines[row])
		if row == startRow {
			partStart = startCol
		}
		if row == endRow {
			partEnd = endCol
		}
		sb.WriteString(grapheme.Join(lines[row][partStart:partEnd]))
	}
	return sb.String()
}

package buffer

import "cmp"

// Pos is a caret position: a row (logical line) and a grapheme column in
// it, both zero-based. Column len(row) is the end of the row.
type Pos struct {
	Row         int
	GraphemeCol int
}

// Range is the half-open span [Start, End). Ranges handed out by the buffer
// are normalized; callers may pass either order.
type Range struct {
	Start Pos
	End   Pos
}

// TextEdit replaces Range with Text. Text may span rows.
type TextEdit struct {
	Range Range
	Text  string
}

// ComparePos orders positions row-major.
func ComparePos(a, b Pos) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.GraphemeCol, b.GraphemeCol)
}

func NormalizeRange(r Range) Range {
	if ComparePos(r.Start, r.End) > 0 {
		r.Start, r.End = r.End, r.Start
	}
	return r
}

func (r Range) IsEmpty() bool { return r.Start == r.End }

// ClampPos moves p into a document of rowCount rows (at least one) whose
// row lengths lineLen reports. A nil lineLen treats every row as empty.
func ClampPos(p Pos, rowCount int, lineLen func(row int) int) Pos {
	row := clampInt(p.Row, 0, max(rowCount, 1)-1)
	width := 0
	if lineLen != nil {
		width = max(lineLen(row), 0)
	}
	return Pos{Row: row, GraphemeCol: clampInt(p.GraphemeCol, 0, width)}
}

func ClampRange(r Range, rowCount int, lineLen func(row int) int) Range {
	return Range{
		Start: ClampPos(r.Start, rowCount, lineLen),
		End:   ClampPos(r.End, rowCount, lineLen),
	}
}

// clampInt bounds v to [lo, hi], preferring lo when the interval is empty.
func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

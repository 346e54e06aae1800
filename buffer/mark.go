package buffer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMark is returned when a transaction names a mark the buffer
// cannot represent.
var ErrInvalidMark = errors.New("buffer: invalid mark")

// Mark is the set of inline formats carried by one grapheme cluster.
type Mark uint8

const (
	MarkBold Mark = 1 << iota
	MarkItalic
	MarkStrike
	MarkCode
)

const allMarks = MarkBold | MarkItalic | MarkStrike | MarkCode

// markOrder is the nesting order of delimiters, outermost first. Code is
// innermost because nothing nests inside a code span.
var markOrder = [...]Mark{MarkBold, MarkItalic, MarkStrike, MarkCode}

// Has reports whether every format in f is set.
func (m Mark) Has(f Mark) bool { return m&f == f }

func (m Mark) valid() bool { return m != 0 && m&^allMarks == 0 }

func (m Mark) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, f := range markOrder {
		if !m.Has(f) {
			continue
		}
		switch f {
		case MarkBold:
			parts = append(parts, "bold")
		case MarkItalic:
			parts = append(parts, "italic")
		case MarkStrike:
			parts = append(parts, "strike")
		case MarkCode:
			parts = append(parts, "code")
		}
	}
	if rest := m &^ allMarks; rest != 0 {
		parts = append(parts, fmt.Sprintf("Mark(%d)", uint8(rest)))
	}
	return strings.Join(parts, "+")
}

// MarkOp selects how a MarkStep is applied.
type MarkOp uint8

const (
	AddMark MarkOp = iota
	RemoveMark
	// ToggleMark removes the mark when every affected cluster already
	// carries it and adds it otherwise.
	ToggleMark
)

// MarkStep formats the clusters covered by the selection after a
// transaction's edits and block steps. Code rows are never marked.
type MarkStep struct {
	Op   MarkOp
	Mark Mark
}

// MarkAt returns the marks of the cluster at p. Positions at or past the
// end of a row carry none.
func (b *Buffer) MarkAt(p Pos) Mark {
	if p.Row < 0 || p.Row >= len(b.marks) {
		return 0
	}
	row := b.marks[p.Row]
	if p.GraphemeCol < 0 || p.GraphemeCol >= len(row) {
		return 0
	}
	return row[p.GraphemeCol]
}

// RowMarks returns a copy of the per-cluster marks of row.
func (b *Buffer) RowMarks(row int) []Mark {
	if row < 0 || row >= len(b.marks) {
		return nil
	}
	return append([]Mark(nil), b.marks[row]...)
}

// ToggleMark toggles m over the selection. It reports whether anything
// changed; without a selection there is nothing to format.
func (b *Buffer) ToggleMark(m Mark) bool {
	if _, ok := b.Selection(); !ok {
		return false
	}
	c, err := b.Apply(Transaction{Marks: []MarkStep{{Op: ToggleMark, Mark: m}}})
	return err == nil && !c.IsZero()
}

func (b *Buffer) applyMarkStep(s MarkStep) {
	r, ok := b.Selection()
	if !ok {
		return
	}
	add := s.Op == AddMark
	if s.Op == ToggleMark {
		add = !b.rangeHas(r, s.Mark)
	}
	b.eachCluster(r, func(row, col int) {
		if add {
			b.marks[row][col] |= s.Mark
		} else {
			b.marks[row][col] &^= s.Mark
		}
	})
}

// rangeHas reports whether every markable cluster in r carries m. A range
// with nothing markable has nothing to remove.
func (b *Buffer) rangeHas(r Range, m Mark) bool {
	all, seen := true, false
	b.eachCluster(r, func(row, col int) {
		seen = true
		if !b.marks[row][col].Has(m) {
			all = false
		}
	})
	return seen && all
}

// eachCluster calls fn for every cluster in r outside code rows.
func (b *Buffer) eachCluster(r Range, fn func(row, col int)) {
	r = NormalizeRange(r)
	for row := r.Start.Row; row <= r.End.Row && row < len(b.lines); row++ {
		if b.blocks[row].Kind == BlockCode {
			continue
		}
		lo, hi := 0, len(b.lines[row])
		if row == r.Start.Row {
			lo = r.Start.GraphemeCol
		}
		if row == r.End.Row {
			hi = min(hi, r.End.GraphemeCol)
		}
		for col := lo; col < hi; col++ {
			fn(row, col)
		}
	}
}

// insertMark is the mark typed text takes at p: the marks of the cluster
// before it, with code only kept strictly inside a code span.
func (b *Buffer) insertMark(p Pos) Mark {
	if b.blocks[p.Row].Kind == BlockCode || p.GraphemeCol == 0 {
		return 0
	}
	row := b.marks[p.Row]
	m := row[p.GraphemeCol-1]
	if m.Has(MarkCode) && (p.GraphemeCol >= len(row) || !row[p.GraphemeCol].Has(MarkCode)) {
		m &^= MarkCode
	}
	return m
}

func (b *Buffer) clearCodeMarks() {
	for row, blk := range b.blocks {
		if blk.Kind != BlockCode {
			continue
		}
		clear(b.marks[row])
	}
}

// fitMarks returns one mark per cluster of lines, copied from marks where
// present. The result never aliases marks.
func fitMarks(marks [][]Mark, lines [][]string) [][]Mark {
	out := make([][]Mark, len(lines))
	for i, line := range lines {
		out[i] = make([]Mark, len(line))
		if i < len(marks) {
			copy(out[i], marks[i])
		}
	}
	return out
}

func cloneMarks(marks [][]Mark) [][]Mark {
	out := make([][]Mark, len(marks))
	for i, row := range marks {
		out[i] = append([]Mark(nil), row...)
	}
	return out
}

func marksEqual(a, b [][]Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func repeatMark(m Mark, n int) []Mark {
	out := make([]Mark, n)
	if m != 0 {
		for i := range out {
			out[i] = m
		}
	}
	return out
}

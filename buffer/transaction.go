package buffer

import (
	"errors"
	"fmt"
)

// ErrInvalidBlock is returned when a transaction names a block the buffer
// cannot represent.
var ErrInvalidBlock = errors.New("buffer: invalid block")

// Transaction groups text edits, block steps and mark steps into one atomic
// change.
//
// Edits are applied first, in order, each against the state left by the
// previous one. Block steps then apply to the rows spanned by the selection,
// or to the caret row when there is no selection. Mark steps apply last, to
// the selected clusters only.
type Transaction struct {
	Edits  []TextEdit
	Blocks []BlockStep
	Marks  []MarkStep

	// Select, when set, places a selection over the range after the edits
	// instead of collapsing the caret to the end of the last edit.
	Select *Range
}

// Apply commits tx as one version bump, one undo entry and one Change. A
// transaction whose edits and steps all turn out to be no-ops leaves the
// buffer untouched and returns a zero Change.
func (b *Buffer) Apply(tx Transaction) (Change, error) {
	for _, s := range tx.Blocks {
		if !s.Block.valid() {
			return Change{}, fmt.Errorf("%w: %s level %d", ErrInvalidBlock, s.Block.Kind, s.Block.Level)
		}
		if s.Op != SetBlock && s.Op != ToggleBlock {
			return Change{}, fmt.Errorf("%w: unknown op %d", ErrInvalidBlock, s.Op)
		}
	}
	for _, s := range tx.Marks {
		if !s.Mark.valid() {
			return Change{}, fmt.Errorf("%w: %s", ErrInvalidMark, s.Mark)
		}
		if s.Op > ToggleMark {
			return Change{}, fmt.Errorf("%w: unknown op %d", ErrInvalidMark, s.Op)
		}
	}

	prev := b.snapshot()
	prevBlocks := cloneBlocks(b.blocks)
	change := b.beginChange(ChangeSourceLocal)

	edited := false
	for _, e := range tx.Edits {
		nextCursor, applied, changed := b.replaceRange(e.Range, e.Text)
		if !changed {
			continue
		}
		edited = true
		b.cursor = nextCursor
		change.addAppliedEdit(applied)
	}
	if edited {
		b.sel = selectionState{}
	}

	if tx.Select != nil {
		r := ClampRange(*tx.Select, len(b.lines), b.lineLen)
		if r.Start == r.End {
			b.sel = selectionState{}
		} else {
			b.sel = selectionState{active: true, anchor: r.Start, end: r.End}
		}
		b.cursor = r.End
	}

	prevMarks := cloneMarks(b.marks)
	for _, s := range tx.Blocks {
		b.applyBlockStep(s)
	}
	change.blocksChanged = !blocksEqual(prevBlocks, b.blocks)
	if change.blocksChanged {
		b.clearCodeMarks()
	}
	for _, s := range tx.Marks {
		b.applyMarkStep(s)
	}
	change.marksChanged = !marksEqual(prevMarks, b.marks)

	if !edited && !change.blocksChanged && !change.marksChanged &&
		b.cursor == change.cursorBefore && selectionStateEqual(prev.sel, b.sel) {
		return Change{}, nil
	}

	b.version++
	if edited || change.blocksChanged || change.marksChanged {
		b.recordUndo(prev)
	}
	b.commitChange(change)
	return cloneChange(b.lastChange), nil
}

// ApplyEdits is shorthand for a transaction of plain text edits.
func (b *Buffer) ApplyEdits(edits ...TextEdit) Change {
	c, _ := b.Apply(Transaction{Edits: edits})
	return c
}

func (b *Buffer) applyBlockStep(s BlockStep) {
	first, last := b.stepRows()
	blk := s.Block.normalized()

	if s.Op == ToggleBlock {
		all := true
		for row := first; row <= last; row++ {
			if !b.blocks[row].sameShape(blk) {
				all = false
				break
			}
		}
		if all {
			blk = Paragraph()
		}
	}

	for row := first; row <= last; row++ {
		if b.blocks[row].sameShape(blk) {
			continue
		}
		b.blocks[row] = blk
	}
}

func (b *Buffer) stepRows() (first, last int) {
	r, ok := b.Selection()
	if !ok {
		return b.cursor.Row, b.cursor.Row
	}
	last = r.End.Row
	// A selection ending at the start of a row does not cover it.
	if r.End.GraphemeCol == 0 && last > r.Start.Row {
		last--
	}
	return r.Start.Row, last
}

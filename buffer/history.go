package buffer

// state is one history entry. Blocks and marks are cloned so later edits
// cannot reach back into it.
type state struct {
	text   string
	blocks []Block
	marks  [][]Mark
	cursor Pos
	sel    selectionState
}

// historyState holds past and future states, newest last.
type historyState struct {
	past   []state
	future []state
}

func (b *Buffer) snapshot() state {
	return state{
		text:   b.Text(),
		blocks: cloneBlocks(b.blocks),
		marks:  cloneMarks(b.marks),
		cursor: b.cursor,
		sel:    b.sel,
	}
}

func (b *Buffer) restore(s state) {
	b.lines = splitLines(s.text)
	b.blocks = fitBlocks(s.blocks, len(b.lines))
	b.marks = fitMarks(s.marks, b.lines)
	b.cursor = ClampPos(s.cursor, len(b.lines), b.lineLen)
	b.sel = selectionState{}

	if s.sel.active {
		anchor := ClampPos(s.sel.anchor, len(b.lines), b.lineLen)
		end := ClampPos(s.sel.end, len(b.lines), b.lineLen)
		if anchor != end {
			b.sel = selectionState{active: true, anchor: anchor, end: end}
		}
	}
}

// recordUndo pushes the state from before a committed change and drops
// anything that could have been redone.
func (b *Buffer) recordUndo(prev state) {
	if b.opt.HistoryLimit <= 0 {
		return
	}
	b.hist.past = b.bounded(append(b.hist.past, prev))
	b.hist.future = nil
}

func (b *Buffer) bounded(stack []state) []state {
	if n := len(stack) - b.opt.HistoryLimit; n > 0 {
		return stack[n:]
	}
	return stack
}

func (b *Buffer) CanUndo() bool { return len(b.hist.past) > 0 }

func (b *Buffer) CanRedo() bool { return len(b.hist.future) > 0 }

// Undo restores the state before the last content change. Text, block
// structure and marks come back together.
func (b *Buffer) Undo() bool {
	to, ok := pop(&b.hist.past)
	if !ok {
		return false
	}
	cur := b.snapshot()
	b.hist.future = append(b.hist.future, cur)
	b.jump(cur, to)
	return true
}

func (b *Buffer) Redo() bool {
	to, ok := pop(&b.hist.future)
	if !ok {
		return false
	}
	cur := b.snapshot()
	if b.opt.HistoryLimit > 0 {
		b.hist.past = b.bounded(append(b.hist.past, cur))
	}
	b.jump(cur, to)
	return true
}

func pop(stack *[]state) (state, bool) {
	s := *stack
	if len(s) == 0 {
		return state{}, false
	}
	top := s[len(s)-1]
	*stack = s[:len(s)-1]
	return top, true
}

// jump moves to a history state as one change. The text difference is
// reported as a single replacement so trackers can map through it.
func (b *Buffer) jump(cur, to state) {
	change := b.beginChange(ChangeSourceHistory)
	b.restore(to)
	b.version++
	if applied, ok := replacementAppliedEdit(cur.text, to.text); ok {
		change.addAppliedEdit(applied)
	}
	change.blocksChanged = !blocksEqual(cur.blocks, b.blocks)
	change.marksChanged = !marksEqual(cur.marks, b.marks)
	b.commitChange(change)
}

package buffer

// ChangeSource identifies where a change originated.
type ChangeSource uint8

const (
	ChangeSourceLocal ChangeSource = iota
	ChangeSourceHistory
)

// SelectionState captures normalized selection state at a point in time.
type SelectionState struct {
	Active bool
	Range  Range
}

// AppliedEdit describes one effective edit in a change transaction.
//
// Offset, DeletedLen and InsertedLen are in document offsets (graphemes, with
// each row break counting as one) against the state the edit was applied to.
type AppliedEdit struct {
	RangeBefore Range
	RangeAfter  Range
	InsertText  string
	DeletedText string

	Offset      int
	DeletedLen  int
	InsertedLen int
}

// Change is a normalized, versioned mutation payload. Every effective buffer
// mutation produces exactly one Change, including caret and selection moves.
type Change struct {
	Source             ChangeSource
	VersionBefore      uint64
	VersionAfter       uint64
	CursorBefore       Pos
	CursorAfter        Pos
	CursorOffsetBefore int
	CursorOffsetAfter  int
	SelectionBefore    SelectionState
	SelectionAfter     SelectionState
	AppliedEdits       []AppliedEdit
	BlocksChanged      bool
	MarksChanged       bool
}

// DocChanged reports whether the change touched text.
func (c Change) DocChanged() bool { return len(c.AppliedEdits) > 0 }

// ContentChanged reports whether text, block structure or marks changed.
func (c Change) ContentChanged() bool { return c.DocChanged() || c.BlocksChanged || c.MarksChanged }

// IsZero reports whether c is the empty result of a no-op.
func (c Change) IsZero() bool { return c.VersionBefore == c.VersionAfter }

// MapOffset maps an offset from before the change to after it.
func (c Change) MapOffset(off int, assoc Assoc) int {
	return MapOffset(c.AppliedEdits, off, assoc)
}

type changeBuilder struct {
	source             ChangeSource
	versionBefore      uint64
	cursorBefore       Pos
	cursorOffsetBefore int
	selectionBefore    SelectionState
	appliedEdits       []AppliedEdit
	blocksChanged      bool
	marksChanged       bool
}

// LastChange returns the most recent effective change.
func (b *Buffer) LastChange() (Change, bool) {
	if !b.hasLastChange {
		return Change{}, false
	}
	return cloneChange(b.lastChange), true
}

func cloneChange(in Change) Change {
	out := in
	out.AppliedEdits = append([]AppliedEdit(nil), in.AppliedEdits...)
	return out
}

func selectionStateFromInternal(sel selectionState) SelectionState {
	if !sel.active {
		return SelectionState{}
	}
	r := NormalizeRange(Range{Start: sel.anchor, End: sel.end})
	if r.IsEmpty() {
		return SelectionState{}
	}
	return SelectionState{Active: true, Range: r}
}

func (b *Buffer) beginChange(source ChangeSource) changeBuilder {
	return changeBuilder{
		source:             source,
		versionBefore:      b.version,
		cursorBefore:       b.cursor,
		cursorOffsetBefore: b.posToOffset(b.cursor),
		selectionBefore:    selectionStateFromInternal(b.sel),
	}
}

func (cb *changeBuilder) addAppliedEdit(edit AppliedEdit) {
	edit.RangeBefore = NormalizeRange(edit.RangeBefore)
	edit.RangeAfter = NormalizeRange(edit.RangeAfter)
	cb.appliedEdits = append(cb.appliedEdits, edit)
}

// commitChange records the change and notifies observers. It is a no-op when
// the version did not move.
func (b *Buffer) commitChange(cb changeBuilder) {
	if b.version == cb.versionBefore {
		return
	}
	if len(cb.appliedEdits) > 0 || cb.blocksChanged || cb.marksChanged {
		b.textVersion++
	}
	b.lastChange = Change{
		Source:             cb.source,
		VersionBefore:      cb.versionBefore,
		VersionAfter:       b.version,
		CursorBefore:       cb.cursorBefore,
		CursorAfter:        b.cursor,
		CursorOffsetBefore: cb.cursorOffsetBefore,
		CursorOffsetAfter:  b.posToOffset(b.cursor),
		SelectionBefore:    cb.selectionBefore,
		SelectionAfter:     selectionStateFromInternal(b.sel),
		AppliedEdits:       append([]AppliedEdit(nil), cb.appliedEdits...),
		BlocksChanged:      cb.blocksChanged,
		MarksChanged:       cb.marksChanged,
	}
	b.hasLastChange = true
	b.notify(b.lastChange)
}

func replacementAppliedEdit(beforeText, afterText string) (AppliedEdit, bool) {
	if beforeText == afterText {
		return AppliedEdit{}, false
	}
	return AppliedEdit{
		RangeBefore: fullDocumentRange(beforeText),
		RangeAfter:  fullDocumentRange(afterText),
		InsertText:  afterText,
		DeletedText: beforeText,
		Offset:      0,
		DeletedLen:  textLen(beforeText),
		InsertedLen: textLen(afterText),
	}, true
}

func fullDocumentRange(text string) Range {
	lines := splitLines(text)
	lastRow := len(lines) - 1
	return Range{
		Start: Pos{Row: 0, GraphemeCol: 0},
		End:   Pos{Row: lastRow, GraphemeCol: len(lines[lastRow])},
	}
}

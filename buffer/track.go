package buffer

// Assoc decides which side of an insertion an offset sticks to when the
// insertion happens exactly at that offset.
type Assoc uint8

const (
	// AssocBefore keeps the offset before text inserted at it.
	AssocBefore Assoc = iota
	// AssocAfter moves the offset past text inserted at it.
	AssocAfter
)

// MapOffset maps off through edits applied in order. Offsets inside a
// deleted span collapse onto the edit position.
func MapOffset(edits []AppliedEdit, off int, assoc Assoc) int {
	for _, e := range edits {
		end := e.Offset + e.DeletedLen
		switch {
		case off < e.Offset || (off == e.Offset && assoc == AssocBefore):
		case off > end || (off == end && e.DeletedLen > 0):
			off += e.InsertedLen - e.DeletedLen
		case assoc == AssocBefore:
			off = e.Offset
		default:
			off = e.Offset + e.InsertedLen
		}
	}
	return off
}

// Tracker follows a pinned anchor and the live caret across changes.
type Tracker struct {
	Anchor int
	Caret  int
}

// NewTracker pins anchor at the given caret offset.
func NewTracker(caret int) Tracker {
	return Tracker{Anchor: caret, Caret: caret}
}

// Update maps the anchor through c and takes the caret from it.
func (t *Tracker) Update(c Change) {
	t.Anchor = c.MapOffset(t.Anchor, AssocBefore)
	t.Caret = c.CursorOffsetAfter
}

// Diverged reports whether the caret has left the anchor.
func (t Tracker) Diverged() bool { return t.Anchor != t.Caret }

package editor

import (
	"github.com/zenote/zen/buffer"
	"github.com/zenote/zen/trigger"
)

// screenToDocPos maps viewport-local mouse coordinates to a document position.
//
// Coordinates are in terminal cells relative to the editor's content area.
// Clicks on a block prefix land on column 0 of that row.
func (m *Model) screenToDocPos(x, y int) buffer.Pos {
	if m.buf == nil {
		return buffer.Pos{}
	}
	lay := m.ensureLayout()
	return lay.posAt(m.viewport.YOffset+max(y, 0), max(x, 0))
}

// docToScreenPos maps a document position to viewport-local coordinates.
//
// ok is false when the mapped coordinate is outside the visible viewport.
func (m *Model) docToScreenPos(pos buffer.Pos) (x, y int, ok bool) {
	if m.buf == nil {
		return 0, 0, false
	}
	lay := m.ensureLayout()
	visualRow, x, ok := lay.cursorCell(pos)
	if !ok {
		return 0, 0, false
	}
	y = visualRow - m.viewport.YOffset
	if y < 0 || y >= m.visibleRowCount() {
		return x, y, false
	}
	if m.viewport.Width > 0 && x >= m.viewport.Width {
		return x, y, false
	}
	return x, y, true
}

// Coords returns the screen point of a document offset. It fails for
// offsets outside the document and for points scrolled out of view.
func (m *Model) Coords(offset int) (trigger.Point, bool) {
	if m.buf == nil || offset < 0 || offset > m.buf.Len() {
		return trigger.Point{}, false
	}
	x, y, ok := m.docToScreenPos(m.buf.PosAt(offset))
	if !ok {
		return trigger.Point{}, false
	}
	return trigger.Point{Top: y, Left: x}, true
}

func (m *Model) visibleRowCount() int {
	return max(m.viewport.Height-m.viewport.Style.GetVerticalFrameSize(), 0)
}

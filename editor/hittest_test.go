package editor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenote/zen/buffer"
	"github.com/zenote/zen/trigger"
)

func TestHitTest_ClampsAndYOffset(t *testing.T) {
	m := New(Config{Markdown: "abc\ndef\nghi"})
	m.viewport.YOffset = 1

	if got := m.screenToDocPos(2, 0); got != (buffer.Pos{Row: 1, GraphemeCol: 2}) {
		t.Fatalf("pos at (2,0) with yoffset=1: got %v, want %v", got, buffer.Pos{Row: 1, GraphemeCol: 2})
	}
	if got := m.screenToDocPos(999, 0); got != (buffer.Pos{Row: 1, GraphemeCol: 3}) {
		t.Fatalf("pos at (999,0): got %v, want %v", got, buffer.Pos{Row: 1, GraphemeCol: 3})
	}
}

func TestHitTest_PrefixMapsToStartOfRow(t *testing.T) {
	m := New(Config{Markdown: "- abcd"})

	if got := m.screenToDocPos(0, 0); got != (buffer.Pos{Row: 0, GraphemeCol: 0}) {
		t.Fatalf("prefix click x=0: got %v, want %v", got, buffer.Pos{})
	}
	if got := m.screenToDocPos(3, 0); got != (buffer.Pos{Row: 0, GraphemeCol: 1}) {
		t.Fatalf("second cell x=3: got %v, want %v", got, buffer.Pos{Row: 0, GraphemeCol: 1})
	}
}

func TestHitTest_WrappedRows(t *testing.T) {
	m := New(Config{Markdown: "abcdefgh"})
	m = m.SetSize(4, 5)

	if got := m.screenToDocPos(1, 1); got != (buffer.Pos{Row: 0, GraphemeCol: 5}) {
		t.Fatalf("second segment click: got %v, want %v", got, buffer.Pos{Row: 0, GraphemeCol: 5})
	}
	// Past the end of a wrapped segment stays on that segment.
	if got := m.screenToDocPos(9, 0); got != (buffer.Pos{Row: 0, GraphemeCol: 3}) {
		t.Fatalf("past first segment: got %v, want %v", got, buffer.Pos{Row: 0, GraphemeCol: 3})
	}
}

func TestCoords(t *testing.T) {
	m := New(Config{Markdown: "hello\n- world"})
	m = m.SetSize(20, 5)

	tests := []struct {
		off  int
		want trigger.Point
		ok   bool
	}{
		{0, trigger.Point{Top: 0, Left: 0}, true},
		{5, trigger.Point{Top: 0, Left: 5}, true},
		{7, trigger.Point{Top: 1, Left: 3}, true},
		{11, trigger.Point{Top: 1, Left: 7}, true},
		{12, trigger.Point{}, false},
		{-1, trigger.Point{}, false},
	}
	for _, tt := range tests {
		got, ok := m.Coords(tt.off)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("Coords(%d): got (%v, %v), want (%v, %v)", tt.off, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCoords_ScrolledOutOfView(t *testing.T) {
	m := New(Config{Markdown: "0\n1\n2\n3\n4\n5"})
	m = m.SetSize(10, 3)
	m.viewport.SetYOffset(2)

	if _, ok := m.Coords(0); ok {
		t.Fatalf("row 0 should be out of view")
	}
	if got, ok := m.Coords(m.buf.OffsetOf(buffer.Pos{Row: 3})); !ok || got.Top != 1 {
		t.Fatalf("row 3: got (%v, %v), want top 1", got, ok)
	}
}

func TestMouse_ClickMovesCursorAndDragSelects(t *testing.T) {
	m := New(Config{Markdown: "hello\nworld"})
	m = m.SetSize(20, 5)

	m, _ = m.Update(tea.MouseMsg{X: 2, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := m.buf.Cursor(); got != (buffer.Pos{Row: 1, GraphemeCol: 2}) {
		t.Fatalf("cursor after click: got %v, want %v", got, buffer.Pos{Row: 1, GraphemeCol: 2})
	}

	m, _ = m.Update(tea.MouseMsg{X: 4, Y: 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m, _ = m.Update(tea.MouseMsg{X: 4, Y: 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	from, to, ok := m.buf.SelectionOffsets()
	if !ok || m.buf.TextBetween(from, to) != "rl" {
		t.Fatalf("drag selection: got %q (%v)", m.buf.TextBetween(from, to), ok)
	}
}

func TestMouse_ClickOnTaskBoxToggles(t *testing.T) {
	m := New(Config{Markdown: "intro\n- [ ] buy milk"})
	m = m.SetSize(20, 5)

	m, _ = m.Update(tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !m.buf.Block(1).Checked {
		t.Fatalf("task not checked after clicking its box")
	}
	if got := m.buf.Text(); got != "intro\nbuy milk" {
		t.Fatalf("text changed: %q", got)
	}

	// Clicking the text itself only moves the caret.
	m, _ = m.Update(tea.MouseMsg{X: 5, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !m.buf.Block(1).Checked {
		t.Fatalf("clicking task text toggled it")
	}
	if got := m.buf.Cursor(); got != (buffer.Pos{Row: 1, GraphemeCol: 1}) {
		t.Fatalf("cursor: got %v, want %v", got, buffer.Pos{Row: 1, GraphemeCol: 1})
	}
}

package buffer

import "testing"

func TestBuffer_OffsetRoundTrip(t *testing.T) {
	b := New("ab\n\ncdé", Options{})
	if got, want := b.Len(), 7; got != want {
		t.Fatalf("len=%d, want %d", got, want)
	}

	tests := []struct {
		off int
		pos Pos
	}{
		{0, Pos{Row: 0, GraphemeCol: 0}},
		{2, Pos{Row: 0, GraphemeCol: 2}},
		{3, Pos{Row: 1, GraphemeCol: 0}},
		{4, Pos{Row: 2, GraphemeCol: 0}},
		{7, Pos{Row: 2, GraphemeCol: 3}},
	}
	for _, tt := range tests {
		if got := b.PosAt(tt.off); got != tt.pos {
			t.Fatalf("PosAt(%d)=%v, want %v", tt.off, got, tt.pos)
		}
		if got := b.OffsetOf(tt.pos); got != tt.off {
			t.Fatalf("OffsetOf(%v)=%d, want %d", tt.pos, got, tt.off)
		}
	}

	if got, want := b.PosAt(99), (Pos{Row: 2, GraphemeCol: 3}); got != want {
		t.Fatalf("PosAt past end=%v, want %v", got, want)
	}
	if got, want := b.PosAt(-4), (Pos{}); got != want {
		t.Fatalf("PosAt negative=%v, want %v", got, want)
	}
}

func TestBuffer_TextBetween(t *testing.T) {
	b := New("one\ntwo", Options{})
	if got, want := b.TextBetween(2, 5), "e\nt"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got := b.TextBetween(5, 5); got != "" {
		t.Fatalf("empty span=%q, want empty", got)
	}
	if got := b.TextBetween(5, 2); got != "" {
		t.Fatalf("reversed span=%q, want empty", got)
	}
}

func TestBuffer_CaretAndSelectionOffsets(t *testing.T) {
	b := New("ab\ncd", Options{})
	b.SetCursor(Pos{Row: 1, GraphemeCol: 1})
	if got, want := b.CaretOffset(), 4; got != want {
		t.Fatalf("caret=%d, want %d", got, want)
	}

	if _, _, ok := b.SelectionOffsets(); ok {
		t.Fatalf("expected no selection")
	}
	b.SetSelection(b.Range(4, 1))
	from, to, ok := b.SelectionOffsets()
	if !ok || from != 1 || to != 4 {
		t.Fatalf("selection=(%d,%d,%v), want (1,4,true)", from, to, ok)
	}
}

package buffer

import (
	"errors"
	"testing"
)

func assertMarks(t *testing.T, b *Buffer, row int, want ...Mark) {
	t.Helper()
	got := b.RowMarks(row)
	if len(got) != len(want) {
		t.Fatalf("row %d marks=%v, want %v", row, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d marks=%v, want %v", row, got, want)
		}
	}
}

func TestBuffer_ToggleMark(t *testing.T) {
	b := New("hello you", Options{})
	b.SetSelection(b.Range(0, 5))
	tv := b.TextVersion()

	if !b.ToggleMark(MarkBold) {
		t.Fatalf("expected ToggleMark=true")
	}
	const B = MarkBold
	assertMarks(t, b, 0, B, B, B, B, B, 0, 0, 0, 0)
	if got := b.TextVersion(); got != tv+1 {
		t.Fatalf("textVersion=%d, want %d", got, tv+1)
	}
	c, _ := b.LastChange()
	if !c.MarksChanged || !c.ContentChanged() || c.DocChanged() {
		t.Fatalf("change=%+v, want a marks-only content change", c)
	}
	if _, ok := b.Selection(); !ok {
		t.Fatalf("formatting should keep the selection")
	}

	if !b.ToggleMark(MarkBold) {
		t.Fatalf("expected second ToggleMark=true")
	}
	assertMarks(t, b, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
}

func TestBuffer_ToggleMark_PartlyMarkedSelectionAdds(t *testing.T) {
	b := New("abcd", Options{})
	b.SetSelection(b.Range(0, 2))
	b.ToggleMark(MarkItalic)

	b.SetSelection(b.Range(0, 4))
	b.ToggleMark(MarkItalic)
	const I = MarkItalic
	assertMarks(t, b, 0, I, I, I, I)

	// Marks stack.
	b.SetSelection(b.Range(1, 3))
	b.ToggleMark(MarkStrike)
	assertMarks(t, b, 0, I, I|MarkStrike, I|MarkStrike, I)
}

func TestBuffer_ToggleMark_NeedsSelection(t *testing.T) {
	b := New("abc", Options{})
	v := b.Version()
	if b.ToggleMark(MarkBold) {
		t.Fatalf("expected ToggleMark=false without a selection")
	}
	if b.Version() != v {
		t.Fatalf("version moved without a selection")
	}
}

func TestBuffer_TypedTextTakesMarks(t *testing.T) {
	b := New("ab cd", Options{})
	b.SetSelection(b.Range(0, 2))
	b.ToggleMark(MarkBold)

	b.SetCursor(Pos{Row: 0, GraphemeCol: 2})
	b.InsertText("X")
	if got := b.MarkAt(Pos{Row: 0, GraphemeCol: 2}); got != MarkBold {
		t.Fatalf("typed after bold=%v, want bold", got)
	}

	b.SetCursor(Pos{Row: 0, GraphemeCol: 0})
	b.InsertText("Y")
	if got := b.MarkAt(Pos{Row: 0, GraphemeCol: 0}); got != 0 {
		t.Fatalf("typed at row start=%v, want none", got)
	}
	assertText(t, b, "YabX cd")
}

func TestBuffer_TypedTextLeavesCodeSpanAtItsEnd(t *testing.T) {
	b := New("ab cd", Options{})
	b.SetSelection(b.Range(0, 2))
	b.ToggleMark(MarkCode | MarkBold)

	b.SetCursor(Pos{Row: 0, GraphemeCol: 1})
	b.InsertText("i")
	if got := b.MarkAt(Pos{Row: 0, GraphemeCol: 1}); got != MarkCode|MarkBold {
		t.Fatalf("typed inside code=%v, want code+bold", got)
	}

	b.SetCursor(Pos{Row: 0, GraphemeCol: 3})
	b.InsertText("e")
	if got := b.MarkAt(Pos{Row: 0, GraphemeCol: 3}); got != MarkBold {
		t.Fatalf("typed after code=%v, want bold", got)
	}
}

func TestBuffer_MarksFollowJoinedRows(t *testing.T) {
	b := New("ab\ncd", Options{})
	b.SetSelection(Range{Start: Pos{Row: 1}, End: Pos{Row: 1, GraphemeCol: 2}})
	b.ToggleMark(MarkBold)

	b.SetCursor(Pos{Row: 1, GraphemeCol: 0})
	b.DeleteBackward()
	assertText(t, b, "abcd")
	assertMarks(t, b, 0, 0, 0, MarkBold, MarkBold)

	b.SetCursor(Pos{Row: 0, GraphemeCol: 3})
	b.InsertNewline()
	assertMarks(t, b, 0, 0, 0, MarkBold)
	assertMarks(t, b, 1, MarkBold)
}

func TestBuffer_MarksUndoAndRedo(t *testing.T) {
	b := New("word", Options{})
	b.SetSelection(b.Range(0, 4))
	b.ToggleMark(MarkItalic)

	if !b.Undo() {
		t.Fatalf("expected Undo=true")
	}
	assertMarks(t, b, 0, 0, 0, 0, 0)
	c, _ := b.LastChange()
	if !c.MarksChanged || c.DocChanged() {
		t.Fatalf("undo change=%+v, want marks-only", c)
	}

	if !b.Redo() {
		t.Fatalf("expected Redo=true")
	}
	const I = MarkItalic
	assertMarks(t, b, 0, I, I, I, I)
}

func TestBuffer_Marks_CodeRows(t *testing.T) {
	b := NewWithBlocks("ab\ncd", []Block{Paragraph(), {Kind: BlockCode}}, Options{})
	b.SelectAll()
	b.ToggleMark(MarkBold)
	assertMarks(t, b, 0, MarkBold, MarkBold)
	assertMarks(t, b, 1, 0, 0)

	b.SetSelection(Range{Start: Pos{Row: 0}, End: Pos{Row: 0, GraphemeCol: 2}})
	c, err := b.Apply(Transaction{Blocks: []BlockStep{{Op: SetBlock, Block: Block{Kind: BlockCode}}}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !c.BlocksChanged || !c.MarksChanged {
		t.Fatalf("change=%+v, want block and mark change", c)
	}
	assertMarks(t, b, 0, 0, 0)

	if !b.Undo() {
		t.Fatalf("expected Undo=true")
	}
	assertMarks(t, b, 0, MarkBold, MarkBold)
}

func TestBuffer_Apply_RejectsInvalidMark(t *testing.T) {
	b := New("abc", Options{})
	b.SelectAll()
	v := b.Version()

	for _, step := range []MarkStep{
		{Op: AddMark, Mark: 0},
		{Op: AddMark, Mark: Mark(1 << 6)},
		{Op: MarkOp(9), Mark: MarkBold},
	} {
		_, err := b.Apply(Transaction{Marks: []MarkStep{step}})
		if !errors.Is(err, ErrInvalidMark) {
			t.Fatalf("step %+v: err=%v, want ErrInvalidMark", step, err)
		}
	}
	if b.Version() != v {
		t.Fatalf("rejected transactions moved the version")
	}
}

func TestBuffer_Apply_MarkStepsRunAfterEdits(t *testing.T) {
	b := New("go", Options{})
	sel := Range{End: Pos{Row: 0, GraphemeCol: 4}}
	_, err := b.Apply(Transaction{
		Edits:  []TextEdit{{Range: b.Range(2, 2), Text: "od"}},
		Select: &sel,
		Marks:  []MarkStep{{Op: AddMark, Mark: MarkBold}, {Op: RemoveMark, Mark: MarkItalic}},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	assertText(t, b, "good")
	const B = MarkBold
	assertMarks(t, b, 0, B, B, B, B)
}

func TestMark_String(t *testing.T) {
	tests := []struct {
		in   Mark
		want string
	}{
		{0, "none"},
		{MarkBold, "bold"},
		{MarkItalic | MarkCode, "italic+code"},
		{MarkStrike | Mark(1<<7), "strike+Mark(128)"},
	}
	for _, tc := range tests {
		if got := tc.in.String(); got != tc.want {
			t.Fatalf("%d.String()=%q, want %q", uint8(tc.in), got, tc.want)
		}
	}
}

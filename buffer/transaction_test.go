package buffer

import (
	"errors"
	"testing"
)

func TestBuffer_Apply_DeleteRunAndSetBlockIsOneChange(t *testing.T) {
	b := New("/head", Options{})
	b.SetCursor(Pos{Row: 0, GraphemeCol: 5})

	var got []Change
	b.Subscribe(func(c Change) { got = append(got, c) })
	v := b.Version()

	ch, err := b.Apply(Transaction{
		Edits:  []TextEdit{{Range: b.Range(0, 5)}},
		Blocks: []BlockStep{{Op: ToggleBlock, Block: Heading(1)}},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, want := b.Text(), ""; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got := b.Block(0); got != Heading(1) {
		t.Fatalf("block=%+v, want heading 1", got)
	}
	if got := b.Version(); got != v+1 {
		t.Fatalf("version=%d, want %d", got, v+1)
	}
	if len(got) != 1 {
		t.Fatalf("observed %d changes, want 1", len(got))
	}
	if !ch.DocChanged() || !ch.BlocksChanged {
		t.Fatalf("change=%+v, want text and block change", ch)
	}

	if ok := b.Undo(); !ok {
		t.Fatalf("expected Undo=true")
	}
	if got, want := b.Text(), "/head"; got != want {
		t.Fatalf("text after undo=%q, want %q", got, want)
	}
	if got := b.Block(0); got != Paragraph() {
		t.Fatalf("block after undo=%+v, want paragraph", got)
	}
}

func TestBuffer_Apply_ToggleBlock(t *testing.T) {
	b := NewWithBlocks("a\nb\nc", []Block{{Kind: BlockQuote}, {Kind: BlockQuote}, Paragraph()}, Options{})
	quote := Block{Kind: BlockQuote}

	// Mixed rows: toggle sets every row.
	b.SetSelection(Range{Start: Pos{Row: 0}, End: Pos{Row: 2, GraphemeCol: 1}})
	if _, err := b.Apply(Transaction{Blocks: []BlockStep{{Op: ToggleBlock, Block: quote}}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	for row := 0; row < 3; row++ {
		if got := b.Block(row); got != quote {
			t.Fatalf("row %d block=%+v, want quote", row, got)
		}
	}

	// All rows already match: toggle reverts to paragraphs.
	if _, err := b.Apply(Transaction{Blocks: []BlockStep{{Op: ToggleBlock, Block: quote}}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	for row := 0; row < 3; row++ {
		if got := b.Block(row); got != Paragraph() {
			t.Fatalf("row %d block=%+v, want paragraph", row, got)
		}
	}
}

func TestBuffer_Apply_SetBlockIsIdempotent(t *testing.T) {
	b := New("x", Options{})
	step := BlockStep{Op: SetBlock, Block: Heading(3)}
	if _, err := b.Apply(Transaction{Blocks: []BlockStep{step}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	v := b.Version()

	ch, err := b.Apply(Transaction{Blocks: []BlockStep{step}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !ch.IsZero() {
		t.Fatalf("change=%+v, want zero", ch)
	}
	if got := b.Version(); got != v {
		t.Fatalf("version=%d, want unchanged %d", got, v)
	}
}

func TestBuffer_Apply_SelectionEndingAtRowStartSkipsThatRow(t *testing.T) {
	b := New("a\nb", Options{})
	b.SetSelection(Range{Start: Pos{Row: 0}, End: Pos{Row: 1}})
	if _, err := b.Apply(Transaction{Blocks: []BlockStep{{Op: SetBlock, Block: Block{Kind: BlockBullet}}}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := b.Block(0).Kind; got != BlockBullet {
		t.Fatalf("row 0 kind=%v, want bullet", got)
	}
	if got := b.Block(1).Kind; got != BlockParagraph {
		t.Fatalf("row 1 kind=%v, want paragraph", got)
	}
}

func TestBuffer_Apply_RejectsInvalidBlock(t *testing.T) {
	b := New("abc", Options{})
	v := b.Version()

	_, err := b.Apply(Transaction{
		Edits:  []TextEdit{{Range: b.Range(0, 1), Text: "X"}},
		Blocks: []BlockStep{{Op: SetBlock, Block: Heading(7)}},
	})
	if !errors.Is(err, ErrInvalidBlock) {
		t.Fatalf("err=%v, want ErrInvalidBlock", err)
	}
	if got, want := b.Text(), "abc"; got != want {
		t.Fatalf("text=%q, want unchanged %q", got, want)
	}
	if got := b.Version(); got != v {
		t.Fatalf("version=%d, want unchanged %d", got, v)
	}
	if b.CanUndo() {
		t.Fatalf("expected no history entry")
	}
}

func TestBuffer_Apply_SelectPlacesSelection(t *testing.T) {
	b := New("hello world", Options{})
	sel := Range{Start: Pos{GraphemeCol: 0}, End: Pos{GraphemeCol: 3}}
	if _, err := b.Apply(Transaction{
		Edits:  []TextEdit{{Range: b.Range(0, 5), Text: "hey"}},
		Select: &sel,
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	r, ok := b.Selection()
	if !ok || r != sel {
		t.Fatalf("selection=%v ok=%v, want %v", r, ok, sel)
	}
	if got, want := b.Cursor(), sel.End; got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
}

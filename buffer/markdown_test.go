package buffer

import "testing"

func TestParseMarkdown_Blocks(t *testing.T) {
	src := "# Title\n" +
		"intro line\n" +
		"> quoted\n" +
		"- one\n" +
		"- [x] done\n" +
		"- [ ] todo\n" +
		"1. first\n" +
		"2. second\n" +
		"```go\n" +
		"x := 1\n" +
		"```\n"

	text, blocks := ParseMarkdown(src)
	wantText := "Title\nintro line\nquoted\none\ndone\ntodo\nfirst\nsecond\nx := 1"
	if text != wantText {
		t.Fatalf("text=%q, want %q", text, wantText)
	}

	want := []Block{
		Heading(1),
		Paragraph(),
		{Kind: BlockQuote},
		{Kind: BlockBullet},
		{Kind: BlockTask, Checked: true},
		{Kind: BlockTask},
		{Kind: BlockOrdered},
		{Kind: BlockOrdered},
		{Kind: BlockCode, Lang: "go"},
	}
	if len(blocks) != len(want) {
		t.Fatalf("blocks=%+v, want %d entries", blocks, len(want))
	}
	for i := range want {
		if blocks[i] != want[i] {
			t.Fatalf("block[%d]=%+v, want %+v", i, blocks[i], want[i])
		}
	}
}

func TestMarkdown_RoundTrip(t *testing.T) {
	text := "Title\n\nbody\n\nitem\nnext\ndone\nafter list\nsteps\n\nfunc main() {}\n\n# not a heading"
	blocks := []Block{
		Heading(2),
		Paragraph(),
		Paragraph(),
		Paragraph(),
		{Kind: BlockBullet},
		{Kind: BlockBullet},
		{Kind: BlockTask, Checked: true},
		Paragraph(),
		{Kind: BlockOrdered},
		{Kind: BlockCode, Lang: "go"},
		{Kind: BlockCode, Lang: "go"},
		Paragraph(),
		Paragraph(),
	}

	src := MarshalMarkdown(text, blocks)
	gotText, gotBlocks := ParseMarkdown(src)
	if gotText != text {
		t.Fatalf("round trip text=%q, want %q\nmarkdown:\n%s", gotText, text, src)
	}
	if !blocksEqual(gotBlocks, blocks) {
		t.Fatalf("round trip blocks=%+v, want %+v\nmarkdown:\n%s", gotBlocks, blocks, src)
	}
}

func TestMarshalMarkdown_Lines(t *testing.T) {
	text := "T\na\nb\nc\nd"
	blocks := []Block{
		Heading(3),
		{Kind: BlockOrdered},
		{Kind: BlockOrdered},
		{Kind: BlockQuote},
		{Kind: BlockTask},
	}
	want := "### T\n1. a\n2. b\n> c\n- [ ] d\n"
	if got := MarshalMarkdown(text, blocks); got != want {
		t.Fatalf("markdown=%q, want %q", got, want)
	}
}

func TestNewFromMarkdown(t *testing.T) {
	b := NewFromMarkdown("## Plan\n- [ ] write\n", Options{})
	if got, want := b.Text(), "Plan\nwrite"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got := b.Block(1); got != (Block{Kind: BlockTask}) {
		t.Fatalf("block=%+v, want unchecked task", got)
	}
	if got, want := b.Markdown(), "## Plan\n- [ ] write\n"; got != want {
		t.Fatalf("markdown=%q, want %q", got, want)
	}
}

func TestParseMarkdown_Empty(t *testing.T) {
	text, blocks := ParseMarkdown("  \n")
	if text != "" || blocks != nil {
		t.Fatalf("got (%q, %v), want empty", text, blocks)
	}
}

func TestMarkdown_Marks(t *testing.T) {
	tests := []struct {
		name string
		src  string
		text string
		// spans lists [from, to) cluster columns of row 0 and their marks.
		spans []markSpan
	}{
		{
			name: "each mark",
			src:  "**bold** and *it* ~~gone~~ `x*y`\n",
			text: "bold and it gone x*y",
			spans: []markSpan{
				{0, 4, MarkBold}, {9, 11, MarkItalic}, {12, 16, MarkStrike}, {17, 20, MarkCode},
			},
		},
		{
			name:  "nested",
			src:   "***both*** plain\n",
			text:  "both plain",
			spans: []markSpan{{0, 4, MarkBold | MarkItalic}},
		},
		{
			name:  "bold code",
			src:   "run **`make`** now\n",
			text:  "run make now",
			spans: []markSpan{{4, 8, MarkBold | MarkCode}},
		},
		{
			name:  "code with backticks",
			src:   "use `` `x` `` now\n",
			text:  "use `x` now",
			spans: []markSpan{{4, 7, MarkCode}},
		},
		{
			name:  "heading",
			src:   "## Plan *soon*\n",
			text:  "Plan soon",
			spans: []markSpan{{5, 9, MarkItalic}},
		},
		{
			name: "code rows stay raw",
			src:  "```\n**x**\n```\n",
			text: "**x**",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewFromMarkdown(tc.src, Options{})
			if got := b.Text(); got != tc.text {
				t.Fatalf("text=%q, want %q", got, tc.text)
			}
			want := make([]Mark, len(b.RowMarks(0)))
			for _, s := range tc.spans {
				for i := s.from; i < s.to; i++ {
					want[i] = s.mark
				}
			}
			assertMarks(t, b, 0, want...)
			if got := b.Markdown(); got != tc.src {
				t.Fatalf("markdown=%q, want %q", got, tc.src)
			}
		})
	}
}

type markSpan struct {
	from, to int
	mark     Mark
}

func TestMarkdown_EscapesLiteralSyntax(t *testing.T) {
	rows := "a*b_c~d`e\\f\n# h\n1. x\n- y\n[link](url) <b>"
	b := New(rows, Options{})
	want := "a\\*b\\_c\\~d\\`e\\\\f\n\\# h\n1\\. x\n\\- y\n[link](url) <b>\n"
	if got := b.Markdown(); got != want {
		t.Fatalf("markdown=%q, want %q", got, want)
	}

	back := NewFromMarkdown(want, Options{})
	if got := back.Text(); got != rows {
		t.Fatalf("round trip text=%q, want %q", got, rows)
	}
	for row := 0; row < back.LineCount(); row++ {
		for _, m := range back.RowMarks(row) {
			if m != 0 {
				t.Fatalf("row %d marks=%v, want none", row, back.RowMarks(row))
			}
		}
	}
}

func TestMarkdown_MarksSkipEdgeWhitespace(t *testing.T) {
	b := New("a b c", Options{})
	b.SetSelection(b.Range(1, 4))
	b.ToggleMark(MarkBold)

	want := "a **b** c\n"
	if got := b.Markdown(); got != want {
		t.Fatalf("markdown=%q, want %q", got, want)
	}
	back := NewFromMarkdown(want, Options{})
	assertMarks(t, back, 0, 0, 0, MarkBold, 0, 0)
}

func TestMarkdown_AdjacentMarks(t *testing.T) {
	b := New("ab", Options{})
	b.SetSelection(b.Range(0, 1))
	b.ToggleMark(MarkItalic)
	b.SetSelection(b.Range(1, 2))
	b.ToggleMark(MarkBold)

	back := NewFromMarkdown(b.Markdown(), Options{})
	if got := back.Text(); got != "ab" {
		t.Fatalf("text=%q, want %q\nmarkdown: %q", got, "ab", b.Markdown())
	}
	assertMarks(t, back, 0, MarkItalic, MarkBold)
}

func TestParseMarkdown_DropsMarks(t *testing.T) {
	text, _ := ParseMarkdown("**a** `b`\n")
	if text != "a b" {
		t.Fatalf("text=%q, want %q", text, "a b")
	}
}

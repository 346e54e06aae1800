package buffer

import (
	"strings"

	"github.com/zenote/zen/internal/grapheme"
)

type Options struct {
	HistoryLimit int // default: 1000
}

type selectionState struct {
	active bool
	anchor Pos
	end    Pos
}

// Buffer is the pure document state: rows of grapheme clusters, one block
// per row, one mark per cluster, cursor, and selection.
type Buffer struct {
	lines  [][]string
	blocks []Block
	marks  [][]Mark

	version     uint64
	textVersion uint64

	cursor Pos
	sel    selectionState

	opt  Options
	hist historyState

	lastChange    Change
	hasLastChange bool

	observers []observer
	nextObsID int
}

func New(text string, opt Options) *Buffer {
	return NewWithBlocks(text, nil, opt)
}

// NewWithBlocks creates a buffer whose rows carry the given blocks. Missing
// entries default to paragraphs; extra entries are ignored.
func NewWithBlocks(text string, blocks []Block, opt Options) *Buffer {
	if opt.HistoryLimit == 0 {
		opt.HistoryLimit = 1000
	}
	lines := splitLines(text)
	return &Buffer{
		lines:  lines,
		blocks: fitBlocks(blocks, len(lines)),
		marks:  fitMarks(nil, lines),
		opt:    opt,
	}
}

func (b *Buffer) Text() string {
	if len(b.lines) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, line := range b.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(grapheme.Join(line))
	}
	return sb.String()
}

// Version increments on every effective change, including cursor moves.
func (b *Buffer) Version() uint64 { return b.version }

// TextVersion increments only when text, block structure or marks change.
func (b *Buffer) TextVersion() uint64 { return b.textVersion }

func (b *Buffer) LineCount() int { return len(b.lines) }

func (b *Buffer) Line(row int) string {
	if row < 0 || row >= len(b.lines) {
		return ""
	}
	return grapheme.Join(b.lines[row])
}

func (b *Buffer) Block(row int) Block {
	if row < 0 || row >= len(b.blocks) {
		return Paragraph()
	}
	return b.blocks[row]
}

func (b *Buffer) Blocks() []Block { return cloneBlocks(b.blocks) }

func (b *Buffer) Cursor() Pos { return b.cursor }

func (b *Buffer) SetCursor(p Pos) {
	next := b.clampPos(p)
	if next == b.cursor && !b.sel.active {
		return
	}
	change := b.beginChange(ChangeSourceLocal)
	b.cursor = next
	b.sel = selectionState{}
	b.version++
	b.commitChange(change)
}

func (b *Buffer) Selection() (Range, bool) {
	if !b.sel.active {
		return Range{}, false
	}
	r := NormalizeRange(Range{Start: b.sel.anchor, End: b.sel.end})
	if r.IsEmpty() {
		return Range{}, false
	}
	return r, true
}

// SelectionRaw returns the raw selection anchor/end without normalization.
func (b *Buffer) SelectionRaw() (Range, bool) {
	if !b.sel.active || b.sel.anchor == b.sel.end {
		return Range{}, false
	}
	return Range{Start: b.sel.anchor, End: b.sel.end}, true
}

// SetSelection selects r and moves the cursor to its end.
func (b *Buffer) SetSelection(r Range) {
	clamped := ClampRange(r, len(b.lines), b.lineLen)
	next := selectionState{active: true, anchor: clamped.Start, end: clamped.End}
	if clamped.Start == clamped.End {
		next = selectionState{}
	}
	if selectionStateEqual(b.sel, next) && b.cursor == clamped.End {
		return
	}

	change := b.beginChange(ChangeSourceLocal)
	b.sel = next
	b.cursor = clamped.End
	b.version++
	b.commitChange(change)
}

func (b *Buffer) ClearSelection() {
	if !b.sel.active {
		return
	}
	change := b.beginChange(ChangeSourceLocal)
	b.sel = selectionState{}
	b.version++
	b.commitChange(change)
}

func (b *Buffer) lineLen(row int) int {
	if row < 0 || row >= len(b.lines) {
		return 0
	}
	return len(b.lines[row])
}

func (b *Buffer) clampPos(p Pos) Pos {
	return ClampPos(p, len(b.lines), b.lineLen)
}

func selectionStateEqual(a, b selectionState) bool {
	if !a.active && !b.active {
		return true
	}
	return a.active == b.active && a.anchor == b.anchor && a.end == b.end
}

func splitLines(text string) [][]string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	lines := make([][]string, 0, len(parts))
	for _, s := range parts {
		lines = append(lines, grapheme.Split(s))
	}
	if len(lines) == 0 {
		lines = append(lines, nil)
	}
	return lines
}

func fitBlocks(blocks []Block, rows int) []Block {
	out := make([]Block, rows)
	for i := range out {
		if i < len(blocks) && blocks[i].valid() {
			out[i] = blocks[i].normalized()
		}
	}
	return out
}

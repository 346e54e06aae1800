package buffer

import "fmt"

// BlockKind is the structural type of one logical line.
type BlockKind uint8

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockQuote
	BlockBullet
	BlockOrdered
	BlockTask
	BlockCode
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockHeading:
		return "heading"
	case BlockQuote:
		return "blockquote"
	case BlockBullet:
		return "bulletList"
	case BlockOrdered:
		return "orderedList"
	case BlockTask:
		return "taskList"
	case BlockCode:
		return "codeBlock"
	default:
		return fmt.Sprintf("BlockKind(%d)", uint8(k))
	}
}

// Block describes the structure of a row.
//
// Level is only meaningful for headings (1..6), Checked only for tasks and
// Lang only for code rows.
type Block struct {
	Kind    BlockKind
	Level   int
	Checked bool
	Lang    string
}

func Paragraph() Block { return Block{Kind: BlockParagraph} }

func Heading(level int) Block { return Block{Kind: BlockHeading, Level: level} }

func (b Block) valid() bool {
	switch b.Kind {
	case BlockParagraph, BlockQuote, BlockBullet, BlockOrdered, BlockTask, BlockCode:
		return true
	case BlockHeading:
		return b.Level >= 1 && b.Level <= 6
	default:
		return false
	}
}

// sameShape reports whether a and b are the same kind of block, ignoring
// per-row state such as a task's checked flag.
func (b Block) sameShape(o Block) bool {
	if b.Kind != o.Kind {
		return false
	}
	if b.Kind == BlockHeading {
		return b.Level == o.Level
	}
	return true
}

// normalized drops fields that do not apply to the kind.
func (b Block) normalized() Block {
	out := Block{Kind: b.Kind}
	switch b.Kind {
	case BlockHeading:
		out.Level = b.Level
	case BlockTask:
		out.Checked = b.Checked
	case BlockCode:
		out.Lang = b.Lang
	}
	return out
}

// continuation returns the block a new row gets when a row of kind b is split.
func (b Block) continuation() Block {
	switch b.Kind {
	case BlockHeading:
		return Paragraph()
	case BlockTask:
		return Block{Kind: BlockTask}
	default:
		return b.normalized()
	}
}

// BlockOp selects how a BlockStep is applied.
type BlockOp uint8

const (
	// SetBlock sets every affected row to the block.
	SetBlock BlockOp = iota
	// ToggleBlock sets the block unless every affected row already has it,
	// in which case the rows revert to paragraphs.
	ToggleBlock
)

// BlockStep changes the structure of the rows spanned by the selection (or
// the caret row when there is no selection) after a transaction's edits.
type BlockStep struct {
	Op    BlockOp
	Block Block
}

func blocksEqual(a, b []Block) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cloneBlocks(in []Block) []Block {
	if len(in) == 0 {
		return nil
	}
	out := make([]Block, len(in))
	copy(out, in)
	return out
}

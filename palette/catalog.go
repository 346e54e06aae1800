package palette

import (
	"strings"

	"github.com/zenote/zen/buffer"
)

// Command is the structural transform a catalog entry applies.
type Command uint8

const (
	CmdParagraph Command = iota
	CmdHeading1
	CmdHeading2
	CmdHeading3
	CmdHeading4
	CmdHeading5
	CmdHeading6
	CmdBlockquote
	CmdBulletList
	CmdOrderedList
	CmdTaskList
	CmdCodeBlock
)

var commandNames = [...]string{
	CmdParagraph:   "paragraph",
	CmdHeading1:    "heading1",
	CmdHeading2:    "heading2",
	CmdHeading3:    "heading3",
	CmdHeading4:    "heading4",
	CmdHeading5:    "heading5",
	CmdHeading6:    "heading6",
	CmdBlockquote:  "blockquote",
	CmdBulletList:  "bulletList",
	CmdOrderedList: "orderedList",
	CmdTaskList:    "taskList",
	CmdCodeBlock:   "codeBlock",
}

func (c Command) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return "unknown"
}

// Step returns the block step that applies c. Paragraph always sets; every
// other command toggles.
func (c Command) Step() buffer.BlockStep {
	switch c {
	case CmdParagraph:
		return buffer.BlockStep{Op: buffer.SetBlock, Block: buffer.Paragraph()}
	case CmdHeading1, CmdHeading2, CmdHeading3, CmdHeading4, CmdHeading5, CmdHeading6:
		return buffer.BlockStep{Op: buffer.ToggleBlock, Block: buffer.Heading(int(c-CmdHeading1) + 1)}
	case CmdBlockquote:
		return buffer.BlockStep{Op: buffer.ToggleBlock, Block: buffer.Block{Kind: buffer.BlockQuote}}
	case CmdBulletList:
		return buffer.BlockStep{Op: buffer.ToggleBlock, Block: buffer.Block{Kind: buffer.BlockBullet}}
	case CmdOrderedList:
		return buffer.BlockStep{Op: buffer.ToggleBlock, Block: buffer.Block{Kind: buffer.BlockOrdered}}
	case CmdTaskList:
		return buffer.BlockStep{Op: buffer.ToggleBlock, Block: buffer.Block{Kind: buffer.BlockTask}}
	case CmdCodeBlock:
		return buffer.BlockStep{Op: buffer.ToggleBlock, Block: buffer.Block{Kind: buffer.BlockCode}}
	default:
		// Surfaces as buffer.ErrInvalidBlock.
		return buffer.BlockStep{Op: buffer.SetBlock, Block: buffer.Block{Kind: buffer.BlockKind(255)}}
	}
}

type Category uint8

const (
	CategoryBasic Category = iota
	CategoryHeading
	CategoryList
	CategoryOther
)

func (c Category) String() string {
	switch c {
	case CategoryBasic:
		return "basic"
	case CategoryHeading:
		return "heading"
	case CategoryList:
		return "list"
	default:
		return "other"
	}
}

// Descriptor is one palette entry.
type Descriptor struct {
	Key         string
	Label       string
	Description string
	Command     Command
	Category    Category
}

var catalog = []Descriptor{
	{Key: "text", Label: "Text", Description: "Start writing with plain text", Command: CmdParagraph, Category: CategoryBasic},
	{Key: "heading1", Label: "Heading 1", Description: "Big section heading", Command: CmdHeading1, Category: CategoryHeading},
	{Key: "heading2", Label: "Heading 2", Description: "Medium section heading", Command: CmdHeading2, Category: CategoryHeading},
	{Key: "heading3", Label: "Heading 3", Description: "Small section heading", Command: CmdHeading3, Category: CategoryHeading},
	{Key: "heading4", Label: "Heading 4", Description: "Smaller section heading", Command: CmdHeading4, Category: CategoryHeading},
	{Key: "heading5", Label: "Heading 5", Description: "Tiny section heading", Command: CmdHeading5, Category: CategoryHeading},
	{Key: "heading6", Label: "Heading 6", Description: "Smallest section heading", Command: CmdHeading6, Category: CategoryHeading},
	{Key: "quote", Label: "Quote", Description: "Capture a quote", Command: CmdBlockquote, Category: CategoryBasic},
	{Key: "bulletList", Label: "Bullet List", Description: "Create a simple bullet list", Command: CmdBulletList, Category: CategoryList},
	{Key: "orderedList", Label: "Numbered List", Description: "Create a list with numbering", Command: CmdOrderedList, Category: CategoryList},
	{Key: "todo", Label: "To-do List", Description: "Track tasks with a to-do list", Command: CmdTaskList, Category: CategoryList},
	{Key: "code", Label: "Code", Description: "Capture a code snippet", Command: CmdCodeBlock, Category: CategoryOther},
}

// Catalog returns a copy of the static command catalog.
func Catalog() []Descriptor {
	return append([]Descriptor(nil), catalog...)
}

// Filter keeps the entries whose label, description or key contains query,
// ignoring case and surrounding space, in catalog order. A blank query keeps
// everything.
func Filter(entries []Descriptor, query string) []Descriptor {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Descriptor(nil), entries...)
	}
	out := make([]Descriptor, 0, len(entries))
	for _, d := range entries {
		if strings.Contains(strings.ToLower(d.Label), q) ||
			strings.Contains(strings.ToLower(d.Description), q) ||
			strings.Contains(strings.ToLower(d.Key), q) {
			out = append(out, d)
		}
	}
	return out
}

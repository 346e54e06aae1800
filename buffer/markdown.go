package buffer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/zenote/zen/internal/grapheme"
)

// Markdown is the storage format. Each row maps to one source line, with
// the block expressed as the usual line prefix. Emphasis, strong,
// strikethrough and code spans become marks; any other inline syntax is
// kept as literal row text.

var md = goldmark.New(goldmark.WithExtensions(extension.TaskList))

// inline reads one row as a lone paragraph. Links, autolinks and raw HTML
// are left out so they stay literal text.
var inline = parser.NewParser(
	parser.WithBlockParsers(util.Prioritized(parser.NewParagraphParser(), 1000)),
	parser.WithInlineParsers(
		util.Prioritized(parser.NewCodeSpanParser(), 100),
		util.Prioritized(parser.NewEmphasisParser(), 500),
		util.Prioritized(extension.NewStrikethroughParser(), 500),
	),
)

var (
	taskPrefixRE    = regexp.MustCompile(`^\[([ xX])\](?:\s|$)`)
	paraMarkerRE    = regexp.MustCompile(`^[#>+=|-]`)
	orderedMarkerRE = regexp.MustCompile(`^(\d+)([.)])`)
)

// NewFromMarkdown parses src into a new buffer.
func NewFromMarkdown(src string, opt Options) *Buffer {
	t, blocks, marks := parseMarkdown(src)
	b := NewWithBlocks(t, blocks, opt)
	b.marks = fitMarks(marks, b.lines)
	b.clearCodeMarks()
	return b
}

// Markdown serializes the buffer, marks included.
func (b *Buffer) Markdown() string {
	return marshalMarkdown(b.lines, b.blocks, b.marks)
}

type mdRow struct {
	text  string
	block Block
	marks []Mark
	// line is the source line whose preceding blank lines become empty
	// paragraph rows, or -1 when the row directly follows its predecessor.
	line int
}

type mdParser struct {
	src    []byte
	lines  []string
	starts []int
	rows   []mdRow
	last   int
}

// ParseMarkdown converts Markdown into row text and per-row blocks. Inline
// formatting is read and dropped; NewFromMarkdown keeps it as marks.
//
// Blank lines between blocks come back as empty paragraph rows, except the
// one separator line MarshalMarkdown writes where Markdown needs it.
func ParseMarkdown(src string) (string, []Block) {
	t, blocks, _ := parseMarkdown(src)
	return t, blocks
}

func parseMarkdown(src string) (string, []Block, [][]Mark) {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	if strings.TrimSpace(src) == "" {
		return "", nil, nil
	}

	p := &mdParser{src: []byte(src), last: -1}
	p.indexLines(src)

	doc := md.Parser().Parse(text.NewReader(p.src))
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		p.block(n)
	}
	return p.assemble()
}

func (p *mdParser) indexLines(src string) {
	p.lines = strings.Split(src, "\n")
	if strings.HasSuffix(src, "\n") {
		p.lines = p.lines[:len(p.lines)-1]
	}
	off := 0
	p.starts = make([]int, len(p.lines))
	for i, l := range p.lines {
		p.starts[i] = off
		off += len(l) + 1
	}
}

func (p *mdParser) lineOf(off int) int {
	lo, hi := 0, len(p.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if p.starts[mid] <= off {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func (p *mdParser) blank(line int) bool {
	return strings.TrimSpace(p.lines[line]) == ""
}

// nextLine returns the first non-blank source line after the last consumed
// one.
func (p *mdParser) nextLine() (int, bool) {
	for l := p.last + 1; l < len(p.lines); l++ {
		if !p.blank(l) {
			return l, true
		}
	}
	return 0, false
}

func (p *mdParser) emit(t string, blk Block, line int) {
	t, marks := parseInline(t)
	p.rows = append(p.rows, mdRow{text: t, block: blk, marks: marks, line: line})
	if line >= 0 {
		p.last = line
	}
}

func (p *mdParser) segmentText(seg text.Segment) string {
	return strings.TrimRight(string(seg.Value(p.src)), " \t\r\n")
}

// emitLines emits one row per source line of n, or a single empty row when
// n carries no text.
func (p *mdParser) emitLines(n ast.Node, blk Block) {
	segs := n.Lines()
	if segs.Len() == 0 {
		line, ok := p.nextLine()
		if !ok {
			line = -1
		}
		p.emit("", blk, line)
		return
	}
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		p.emit(p.segmentText(seg), blk, p.lineOf(seg.Start))
	}
}

func (p *mdParser) block(n ast.Node) {
	switch n := n.(type) {
	case *ast.Heading:
		p.emitLines(n, Heading(n.Level))
	case *ast.Paragraph, *ast.TextBlock:
		p.emitLines(n, Paragraph())
	case *ast.Blockquote:
		p.quote(n)
	case *ast.List:
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			p.listItem(n, item)
		}
	case *ast.FencedCodeBlock:
		p.code(n, string(n.Language(p.src)), true)
	case *ast.CodeBlock:
		p.code(n, "", false)
	default:
		if n.Lines().Len() > 0 {
			p.emitLines(n, Paragraph())
			return
		}
		// Thematic breaks and similar leaf nodes keep their source line.
		if line, ok := p.nextLine(); ok {
			p.emit(strings.TrimSpace(p.lines[line]), Paragraph(), line)
		}
	}
}

func (p *mdParser) quote(n ast.Node) {
	blk := Block{Kind: BlockQuote}
	if n.FirstChild() == nil {
		p.emitLines(n, blk)
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Lines().Len() > 0 {
			p.emitLines(c, blk)
			continue
		}
		p.quote(c)
	}
}

func (p *mdParser) listItem(list *ast.List, item ast.Node) {
	blk := Block{Kind: BlockBullet}
	if list.IsOrdered() {
		blk.Kind = BlockOrdered
	}

	first := item.FirstChild()
	if first == nil || first.Lines().Len() == 0 {
		line, ok := p.nextLine()
		if !ok {
			line = -1
		}
		p.emit("", blk, line)
		if first != nil {
			p.block(first)
		}
		return
	}

	checked, task := false, false
	if cb, ok := first.FirstChild().(*east.TaskCheckBox); ok {
		task, checked = true, cb.IsChecked
	}
	segs := first.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		t := p.segmentText(seg)
		if i == 0 {
			if m := taskPrefixRE.FindStringSubmatch(t); m != nil {
				task = true
				checked = checked || m[1] != " "
				t = strings.TrimLeft(t[len(m[0]):], " ")
			}
			if task {
				blk = Block{Kind: BlockTask, Checked: checked}
			}
		}
		p.emit(t, blk, p.lineOf(seg.Start))
	}

	for c := first.NextSibling(); c != nil; c = c.NextSibling() {
		p.block(c)
	}
}

func (p *mdParser) code(n ast.Node, lang string, fenced bool) {
	blk := Block{Kind: BlockCode, Lang: lang}
	open := -1
	if fenced {
		if l, ok := p.nextLine(); ok {
			open = l
		}
	}

	segs := n.Lines()
	if segs.Len() == 0 {
		p.emit("", blk, open)
	}
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		line := p.lineOf(seg.Start)
		gap := -1
		if i == 0 {
			gap = line
			if fenced && open >= 0 {
				gap = open
			}
		}
		p.rows = append(p.rows, mdRow{
			text:  strings.TrimRight(string(seg.Value(p.src)), "\r\n"),
			block: blk,
			line:  gap,
		})
		p.last = line
	}

	if fenced {
		// Step over the closing fence.
		if l, ok := p.nextLine(); ok {
			p.last = l
		}
	}
}

func (p *mdParser) assemble() (string, []Block, [][]Mark) {
	rows := make([]string, 0, len(p.rows))
	blocks := make([]Block, 0, len(p.rows))
	marks := make([][]Mark, 0, len(p.rows))
	emptyRow := func() {
		rows = append(rows, "")
		blocks = append(blocks, Paragraph())
		marks = append(marks, nil)
	}

	for i, r := range p.rows {
		if r.line >= 0 {
			blanks := 0
			for l := r.line - 1; l >= 0 && p.blank(l); l-- {
				blanks++
			}
			if i > 0 && separated(p.rows[i-1].block, r.block, r.text) {
				blanks--
			}
			for ; blanks > 0; blanks-- {
				emptyRow()
			}
		}
		rows = append(rows, r.text)
		blocks = append(blocks, r.block)
		marks = append(marks, r.marks)
	}

	for l := len(p.lines) - 1; l > p.last && p.blank(l); l-- {
		emptyRow()
	}
	return strings.Join(rows, "\n"), blocks, marks
}

// separated reports whether Markdown needs a blank line between a row of
// block prev and the next non-empty row, to keep the next row from being
// read as a continuation of prev.
func separated(prev, next Block, nextText string) bool {
	switch prev.Kind {
	case BlockQuote, BlockBullet, BlockOrdered, BlockTask:
		return next.Kind == BlockParagraph
	case BlockParagraph:
		switch next.Kind {
		case BlockBullet, BlockOrdered, BlockTask:
			return nextText == ""
		}
	}
	return false
}

// parseInline reads the inline syntax of one row into plain text and one
// mark per cluster. Backslash escapes are resolved outside code spans.
func parseInline(row string) (string, []Mark) {
	if row == "" {
		return "", nil
	}
	src := []byte(row)
	doc := inline.Parse(text.NewReader(src))

	var out []byte
	var byteMarks []Mark
	add := func(v []byte, m Mark) {
		out = append(out, v...)
		byteMarks = append(byteMarks, repeatMark(m, len(v))...)
	}

	var walk func(n ast.Node, m Mark)
	walk = func(n ast.Node, m Mark) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Text:
				v := c.Segment.Value(src)
				if !m.Has(MarkCode) {
					v = util.UnescapePunctuations(v)
				}
				add(v, m)
			case *ast.String:
				add(c.Value, m)
			case *ast.CodeSpan:
				walk(c, m|MarkCode)
			case *ast.Emphasis:
				f := MarkItalic
				if c.Level >= 2 {
					f = MarkBold
				}
				walk(c, m|f)
			case *east.Strikethrough:
				walk(c, m|MarkStrike)
			default:
				walk(c, m)
			}
		}
	}
	walk(doc, 0)

	t := string(out)
	clusters := grapheme.Split(t)
	marks := make([]Mark, len(clusters))
	marked := false
	off := 0
	for i, c := range clusters {
		marks[i] = byteMarks[off]
		marked = marked || marks[i] != 0
		off += len(c)
	}
	if !marked {
		return t, nil
	}
	return t, marks
}

// MarshalMarkdown serializes row text and per-row blocks. Missing blocks
// are paragraphs.
func MarshalMarkdown(t string, blocks []Block) string {
	lines := splitLines(t)
	return marshalMarkdown(lines, fitBlocks(blocks, len(lines)), nil)
}

func marshalMarkdown(lines [][]string, blocks []Block, marks [][]Mark) string {
	marks = fitMarks(marks, lines)

	var sb strings.Builder
	var prev *Block
	ordinal := 0

	for i := 0; i < len(lines); i++ {
		blk := blocks[i]

		if blk.Kind == BlockCode {
			sb.WriteString("```" + blk.Lang + "\n")
			j := i
			for ; j < len(lines) && blocks[j].Kind == BlockCode && blocks[j].Lang == blk.Lang; j++ {
				sb.WriteString(grapheme.Join(lines[j]) + "\n")
			}
			sb.WriteString("```\n")
			prev = &blocks[j-1]
			ordinal = 0
			i = j - 1
			continue
		}

		row := inlineMarkdown(lines[i], marks[i])
		if blk.Kind == BlockParagraph && strings.TrimSpace(row) == "" {
			sb.WriteString("\n")
			continue
		}

		if prev != nil && separated(*prev, blk, row) {
			sb.WriteString("\n")
		}

		switch blk.Kind {
		case BlockOrdered:
			ordinal++
		default:
			ordinal = 0
		}
		if blk.Kind == BlockParagraph && (len(marks[i]) == 0 || marks[i][0] == 0) {
			row = escapeParagraphMarker(row)
		}
		sb.WriteString(markdownLine(blk, row, ordinal))
		sb.WriteString("\n")
		prev = &blocks[i]
	}
	return sb.String()
}

func markdownLine(blk Block, row string, ordinal int) string {
	withPrefix := func(prefix string) string {
		if row == "" {
			return prefix
		}
		return prefix + " " + row
	}
	switch blk.Kind {
	case BlockHeading:
		return withPrefix(strings.Repeat("#", blk.Level))
	case BlockQuote:
		return withPrefix(">")
	case BlockBullet:
		return "- " + row
	case BlockOrdered:
		return strconv.Itoa(ordinal) + ". " + row
	case BlockTask:
		box := "[ ]"
		if blk.Checked {
			box = "[x]"
		}
		return withPrefix("- " + box)
	default:
		return row
	}
}

// escapeParagraphMarker keeps a paragraph row that starts like a block
// marker from being read as one.
func escapeParagraphMarker(row string) string {
	if paraMarkerRE.MatchString(row) {
		return `\` + row
	}
	return orderedMarkerRE.ReplaceAllString(row, `$1\$2`)
}

func markDelim(m Mark) string {
	switch m {
	case MarkBold:
		return "**"
	case MarkItalic:
		return "*"
	case MarkStrike:
		return "~~"
	}
	return ""
}

// inlineMarkdown writes one row with its marks as delimiters. Bold, italic
// and strike nest as a stack; code runs become atomic code spans.
func inlineMarkdown(clusters []string, marks []Mark) string {
	eff := flankingMarks(clusters, marks)

	var sb strings.Builder
	var open []Mark
	to := func(want Mark) {
		cut := len(open)
		for k, m := range open {
			if !want.Has(m) {
				cut = k
				break
			}
		}
		for k := len(open) - 1; k >= cut; k-- {
			sb.WriteString(markDelim(open[k]))
		}
		open = open[:cut]

		var have Mark
		for _, m := range open {
			have |= m
		}
		for _, m := range markOrder {
			if m == MarkCode || !want.Has(m) || have.Has(m) {
				continue
			}
			sb.WriteString(markDelim(m))
			open = append(open, m)
		}
	}

	for i := 0; i < len(clusters); {
		want := eff[i]
		to(want &^ MarkCode)
		if want.Has(MarkCode) {
			j := i
			for j < len(clusters) && eff[j] == want {
				j++
			}
			sb.WriteString(codeSpan(grapheme.Join(clusters[i:j])))
			i = j
			continue
		}
		sb.WriteString(escapeCluster(clusters[i]))
		i++
	}
	to(0)
	return sb.String()
}

// flankingMarks drops bold, italic and strike from whitespace at the edges
// of each run, where a delimiter would not open or close.
func flankingMarks(clusters []string, marks []Mark) []Mark {
	eff := append([]Mark(nil), marks...)
	blank := func(i int) bool { return strings.TrimSpace(clusters[i]) == "" }
	for _, f := range markOrder[:3] {
		for i := 0; i < len(eff); {
			if !eff[i].Has(f) {
				i++
				continue
			}
			j := i
			for j < len(eff) && eff[j].Has(f) {
				j++
			}
			lo, hi := i, j
			for lo < hi && blank(lo) {
				eff[lo] &^= f
				lo++
			}
			for hi > lo && blank(hi-1) {
				eff[hi-1] &^= f
				hi--
			}
			i = j
		}
	}
	return eff
}

func escapeCluster(c string) string {
	switch c {
	case `\`, "*", "_", "~", "`":
		return `\` + c
	}
	return c
}

// codeSpan fences s with one backtick more than its longest backtick run,
// padding with spaces where the content would otherwise lose its edges.
func codeSpan(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	fence := strings.Repeat("`", longest+1)
	pad := strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") ||
		(len(s) > 1 && strings.HasPrefix(s, " ") && strings.HasSuffix(s, " ") && strings.TrimSpace(s) != "")
	if pad {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}

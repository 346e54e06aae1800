package editor

import (
	"strconv"
	"strings"

	"github.com/zenote/zen/buffer"
	"github.com/zenote/zen/internal/grapheme"
)

type layoutKey struct {
	bufVersion   uint64
	contentWidth int
	tabWidth     int
}

// segment is one visual row of a logical row: clusters [start, end).
type segment struct {
	start, end int
	cells      int
}

type layoutLine struct {
	block  buffer.Block
	prefix string
	// indent is the prefix width; wrapped segments are indented by it.
	indent   int
	clusters []string
	widths   []int
	segments []segment

	firstVisualRow int
}

type layoutRow struct {
	line    int
	segment int
}

type layoutCache struct {
	valid bool
	key   layoutKey
	lines []layoutLine
	rows  []layoutRow
}

func (m *Model) ensureLayout() *layoutCache {
	key := layoutKey{
		bufVersion:   m.buf.Version(),
		contentWidth: m.viewport.Width - m.viewport.Style.GetHorizontalFrameSize(),
		tabWidth:     m.cfg.TabWidth,
	}
	if m.lay.valid && m.lay.key == key {
		return m.lay
	}

	n := m.buf.LineCount()
	lines := make([]layoutLine, 0, n)
	rows := make([]layoutRow, 0, n)
	ordinal := 0
	for row := 0; row < n; row++ {
		blk := m.buf.Block(row)
		if blk.Kind == buffer.BlockOrdered {
			ordinal++
		} else {
			ordinal = 0
		}

		ln := layoutLine{block: blk, prefix: blockPrefix(blk, ordinal)}
		ln.indent = grapheme.StringWidth(ln.prefix)
		ln.clusters = grapheme.Split(m.buf.Line(row))
		ln.widths = make([]int, len(ln.clusters))
		cell := 0
		for i, c := range ln.clusters {
			w := grapheme.Width(c, cell, key.tabWidth)
			ln.widths[i] = w
			cell += w
		}
		ln.segments = wrapSegments(ln.widths, wrapWidth(key.contentWidth, ln.indent))
		ln.firstVisualRow = len(rows)
		for i := range ln.segments {
			rows = append(rows, layoutRow{line: row, segment: i})
		}
		lines = append(lines, ln)
	}

	*m.lay = layoutCache{valid: true, key: key, lines: lines, rows: rows}
	return m.lay
}

// wrapWidth is the room left for text after the prefix. Zero means no
// wrapping, which is the case before the first SetSize.
func wrapWidth(contentWidth, indent int) int {
	if contentWidth <= 0 {
		return 0
	}
	return max(contentWidth-indent, 1)
}

// wrapSegments breaks a row into segments of at most width cells. A
// cluster wider than width gets a segment of its own. width <= 0 keeps the
// row whole.
func wrapSegments(widths []int, width int) []segment {
	if len(widths) == 0 {
		return []segment{{}}
	}
	var out []segment
	cur := segment{}
	for i, w := range widths {
		if width > 0 && cur.cells+w > width && cur.end > cur.start {
			out = append(out, cur)
			cur = segment{start: i, end: i}
		}
		cur.end = i + 1
		cur.cells += w
	}
	return append(out, cur)
}

func blockPrefix(b buffer.Block, ordinal int) string {
	switch b.Kind {
	case buffer.BlockHeading:
		return strings.Repeat("#", clampInt(b.Level, 1, 6)) + " "
	case buffer.BlockQuote:
		return "│ "
	case buffer.BlockBullet:
		return "• "
	case buffer.BlockOrdered:
		return strconv.Itoa(ordinal) + ". "
	case buffer.BlockTask:
		if b.Checked {
			return "[x] "
		}
		return "[ ] "
	case buffer.BlockCode:
		return "▏ "
	default:
		return ""
	}
}

// cursorCell returns the visual row and cell of pos.
func (c *layoutCache) cursorCell(pos buffer.Pos) (visualRow, x int, ok bool) {
	if len(c.lines) == 0 {
		return 0, 0, false
	}
	ln := c.lines[clampInt(pos.Row, 0, len(c.lines)-1)]
	col := clampInt(pos.GraphemeCol, 0, len(ln.clusters))

	segIdx := len(ln.segments) - 1
	for i, seg := range ln.segments {
		if col < seg.end {
			segIdx = i
			break
		}
	}
	seg := ln.segments[segIdx]
	x = ln.indent
	for i := seg.start; i < col && i < len(ln.widths); i++ {
		x += ln.widths[i]
	}
	return ln.firstVisualRow + segIdx, x, true
}

// posAt maps a visual row and cell back to a document position.
func (c *layoutCache) posAt(visualRow, x int) buffer.Pos {
	if len(c.rows) == 0 {
		return buffer.Pos{}
	}
	ref := c.rows[clampInt(visualRow, 0, len(c.rows)-1)]
	ln := c.lines[ref.line]
	seg := ln.segments[ref.segment]

	cell := ln.indent
	col := seg.start
	for col < seg.end {
		w := ln.widths[col]
		if x < cell+(w+1)/2 {
			break
		}
		cell += w
		col++
	}
	// The last column of a wrapped segment belongs to the next segment.
	if col == seg.end && ref.segment < len(ln.segments)-1 && col > seg.start {
		col--
	}
	return buffer.Pos{Row: ref.line, GraphemeCol: col}
}

// taskBoxAt reports the task row whose "[ ]" box covers the cell.
func (c *layoutCache) taskBoxAt(visualRow, x int) (int, bool) {
	if visualRow < 0 || visualRow >= len(c.rows) || x < 0 || x >= 3 {
		return 0, false
	}
	ref := c.rows[visualRow]
	if ref.segment != 0 || c.lines[ref.line].block.Kind != buffer.BlockTask {
		return 0, false
	}
	return ref.line, true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package editor

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zenote/zen/buffer"
	"github.com/zenote/zen/internal/grapheme"
)

func (m *Model) renderContent() string {
	if m.buf == nil {
		return ""
	}
	lay := m.ensureLayout()
	st := m.cfg.Style

	cursor := m.buf.Cursor()
	sel, selOK := m.buf.Selection()

	var ghostText string
	if m.focused {
		if d, ok := m.ghost.Decoration(m.buf.CaretOffset()); ok {
			ghostText = d.Text
		}
	}

	out := make([]string, 0, len(lay.rows))
	for _, ref := range lay.rows {
		ln := lay.lines[ref.line]
		seg := ln.segments[ref.segment]

		var sb strings.Builder
		if ref.segment == 0 {
			sb.WriteString(m.prefixStyle(ln.block).Render(ln.prefix))
		} else if ln.indent > 0 {
			sb.WriteString(strings.Repeat(" ", ln.indent))
		}

		base := m.bodyStyle(ln.block)
		var code []lipgloss.Style
		var marks []buffer.Mark
		if ln.block.Kind == buffer.BlockCode {
			code = m.code.rowStyles(m.buf, ref.line)
		} else {
			marks = m.buf.RowMarks(ref.line)
		}

		hasCursor := m.focused && cursor.Row == ref.line && cursorInSegment(ln, ref.segment, cursor.GraphemeCol)
		selStart, selEnd, hasSel := selectionCols(sel, selOK, ref.line, len(ln.clusters))

		for i := seg.start; i < seg.end; i++ {
			if hasCursor && i == cursor.GraphemeCol && ghostText != "" {
				sb.WriteString(m.renderGhost(ghostText, base, ghostRoom(lay.key.contentWidth, ln.indent+cellsBefore(ln, seg, i))))
			}

			style := base
			switch {
			case i < len(code):
				style = code[i]
			case i < len(marks) && marks[i] != 0:
				style = m.markStyle(base, marks[i])
			}
			text := ln.clusters[i]
			if text == "\t" {
				text = strings.Repeat(" ", ln.widths[i])
			}
			switch {
			case hasCursor && i == cursor.GraphemeCol && ghostText == "":
				sb.WriteString(st.Cursor.Inherit(style).Render(text))
			case hasSel && i >= selStart && i < selEnd:
				sb.WriteString(st.Selection.Inherit(style).Render(text))
			default:
				sb.WriteString(style.Render(text))
			}
		}

		if hasCursor && cursor.GraphemeCol >= seg.end {
			if ghostText != "" {
				sb.WriteString(m.renderGhost(ghostText, base, ghostRoom(lay.key.contentWidth, ln.indent+seg.cells)))
			} else {
				sb.WriteString(st.Cursor.Inherit(base).Render(" "))
			}
		}
		out = append(out, sb.String())
	}
	return strings.Join(out, "\n")
}

// renderGhost draws the suggestion at the caret. The cursor sits on its
// first cell; the rest is cut to the room left on the row.
func (m *Model) renderGhost(text string, base lipgloss.Style, room int) string {
	st := m.cfg.Style
	ghost := st.Ghost.Inherit(base)
	clusters := grapheme.Split(text)
	if len(clusters) == 0 {
		return ""
	}
	head := st.Cursor.Inherit(ghost).Render(clusters[0])
	if room <= 0 {
		return head
	}
	rest := grapheme.Truncate(grapheme.Join(clusters[1:]), max(room-grapheme.StringWidth(clusters[0]), 0), "")
	if rest == "" {
		return head
	}
	return head + ghost.Render(rest)
}

func (m *Model) markStyle(base lipgloss.Style, mk buffer.Mark) lipgloss.Style {
	st := m.cfg.Style
	if mk.Has(buffer.MarkCode) {
		base = st.InlineCode.Inherit(base)
	}
	if mk.Has(buffer.MarkBold) {
		base = st.Strong.Inherit(base)
	}
	if mk.Has(buffer.MarkItalic) {
		base = st.Emphasis.Inherit(base)
	}
	if mk.Has(buffer.MarkStrike) {
		base = st.Strike.Inherit(base)
	}
	return base
}

func (m *Model) prefixStyle(b buffer.Block) lipgloss.Style {
	st := m.cfg.Style
	switch b.Kind {
	case buffer.BlockHeading:
		return st.Heading[clampInt(b.Level, 1, 6)-1]
	case buffer.BlockQuote:
		return st.Quote
	case buffer.BlockCode:
		return st.CodeGutter
	case buffer.BlockBullet, buffer.BlockOrdered, buffer.BlockTask:
		return st.ListMarker
	default:
		return st.Text
	}
}

func (m *Model) bodyStyle(b buffer.Block) lipgloss.Style {
	st := m.cfg.Style
	switch b.Kind {
	case buffer.BlockHeading:
		return st.Heading[clampInt(b.Level, 1, 6)-1]
	case buffer.BlockQuote:
		return st.Quote
	case buffer.BlockCode:
		return st.Code
	case buffer.BlockTask:
		if b.Checked {
			return st.TaskDone
		}
	}
	return st.Text
}

// ghostRoom is the width left on a row after used cells. An unsized editor
// does not wrap, so the ghost is never cut there.
func ghostRoom(contentWidth, used int) int {
	if contentWidth <= 0 {
		return math.MaxInt32
	}
	return contentWidth - used
}

func cursorInSegment(ln layoutLine, segIdx, col int) bool {
	seg := ln.segments[segIdx]
	if col < seg.start {
		return false
	}
	if col < seg.end {
		return true
	}
	return segIdx == len(ln.segments)-1
}

func cellsBefore(ln layoutLine, seg segment, col int) int {
	n := 0
	for i := seg.start; i < col && i < len(ln.widths); i++ {
		n += ln.widths[i]
	}
	return n
}

func selectionCols(sel buffer.Range, ok bool, row, rowLen int) (start, end int, has bool) {
	if !ok || row < sel.Start.Row || row > sel.End.Row {
		return 0, 0, false
	}
	start, end = 0, rowLen
	if row == sel.Start.Row {
		start = clampInt(sel.Start.GraphemeCol, 0, rowLen)
	}
	if row == sel.End.Row {
		end = clampInt(sel.End.GraphemeCol, 0, rowLen)
	}
	return start, end, start < end
}

package palette

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/zenote/zen/internal/grapheme"
	"github.com/zenote/zen/trigger"
)

type Style struct {
	Box         lipgloss.Style
	Search      lipgloss.Style
	Item        lipgloss.Style
	Selected    lipgloss.Style
	Description lipgloss.Style
	Empty       lipgloss.Style
}

func DefaultStyle() Style {
	return Style{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		Search:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Item:        lipgloss.NewStyle(),
		Selected:    lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")),
		Description: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Empty:       lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
	}
}

// View renders the open palette as a box. It returns "" when closed.
func (c *Controller) View(st Style) string {
	s := c.session
	if !s.Open {
		return ""
	}
	inner := c.cfg.Width - st.Box.GetHorizontalFrameSize()
	if inner < 1 {
		inner = 1
	}

	lines := make([]string, 0, c.cfg.MaxRows+1)
	if c.cfg.Input == InputSearchField {
		c.input.Width = inner - grapheme.StringWidth(c.input.Prompt) - 1
		lines = append(lines, c.input.View())
	} else {
		search := string(c.cfg.Trigger.Char) + s.Search
		if c.cfg.Trigger.Char == 0 {
			search = string(trigger.DefaultConfig().Char) + s.Search
		}
		lines = append(lines, st.Search.Render(grapheme.Truncate(search, inner, "…")))
	}

	if len(s.Filtered) == 0 {
		lines = append(lines, st.Empty.Render(pad("No results", inner)))
		return st.Box.Render(strings.Join(lines, "\n"))
	}

	first, last := window(s.Selected, len(s.Filtered), c.cfg.MaxRows)
	for i := first; i < last; i++ {
		lines = append(lines, renderRow(st, s.Filtered[i], i == s.Selected, inner))
	}
	return st.Box.Render(strings.Join(lines, "\n"))
}

// Overlay composites the palette over base, a rendering of the document
// area whose content starts at origin and spans bounds.
func (c *Controller) Overlay(base string, st Style, bounds Size, origin trigger.Point) string {
	view := c.View(st)
	if view == "" {
		return base
	}
	box := Size{Width: lipgloss.Width(view), Height: lipgloss.Height(view)}
	p := Place(c.session.Position, box, bounds, c.cfg.EdgePadding)
	return overlay.Composite(view, base, overlay.Left, overlay.Top, origin.Left+p.Left, origin.Top+p.Top)
}

func renderRow(st Style, d Descriptor, selected bool, width int) string {
	label := grapheme.Truncate(d.Label, width, "…")
	used := grapheme.StringWidth(label)
	row := label
	if rest := width - used - 2; rest > 0 && d.Description != "" {
		desc := grapheme.Truncate(d.Description, rest, "…")
		row += "  " + desc
	}
	row = pad(row, width)
	if selected {
		return st.Selected.Render(row)
	}
	if i := strings.Index(row, "  "); i > 0 && d.Description != "" {
		return st.Item.Render(row[:i]) + st.Description.Render(row[i:])
	}
	return st.Item.Render(row)
}

// window returns the visible slice [first, last) of n rows that keeps
// selected in view.
func window(selected, n, rows int) (int, int) {
	if rows <= 0 || n <= rows {
		return 0, n
	}
	first := 0
	if selected >= rows {
		first = selected - rows + 1
	}
	return first, first + rows
}

func pad(s string, width int) string {
	if w := grapheme.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

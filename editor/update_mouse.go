package editor

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenote/zen/buffer"
	"github.com/zenote/zen/palette"
)

func (m Model) updateMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	if !m.focused || m.buf == nil {
		return m, cmd
	}
	if isWheel(msg) {
		m.repositionPalette()
		return m, cmd
	}

	switch msg.Action { //nolint:exhaustive
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, cmd
		}
		if !m.mouseInBounds(msg.X, msg.Y) {
			return m, cmd
		}
		// A click elsewhere ends the command session.
		if m.palette.IsOpen() {
			m.palette.Close(palette.CloseExternal)
			m.detector.Reset()
		}

		if !msg.Shift && !m.cfg.ReadOnly {
			if row, ok := m.ensureLayout().taskBoxAt(m.viewport.YOffset+msg.Y, msg.X); ok {
				m.buf.SetCursor(buffer.Pos{Row: row})
				m.buf.ToggleTask()
				return m, cmd
			}
		}

		p := m.screenToDocPos(msg.X, msg.Y)
		if msg.Shift {
			anchor := m.buf.Cursor()
			if raw, ok := m.buf.SelectionRaw(); ok {
				anchor = raw.Start
			}
			m.mouseAnchor = anchor
			m.buf.SetSelection(buffer.Range{Start: anchor, End: p})
		} else {
			m.mouseAnchor = p
			m.buf.SetCursor(p)
		}
		m.mouseDragging = true

	case tea.MouseActionMotion:
		if !m.mouseDragging {
			return m, cmd
		}

		x, y := m.clampMouseToBounds(msg.X, msg.Y)
		p := m.screenToDocPos(x, y)
		if p == m.mouseAnchor {
			m.buf.SetCursor(p)
		} else {
			m.buf.SetSelection(buffer.Range{Start: m.mouseAnchor, End: p})
		}

	case tea.MouseActionRelease:
		m.mouseDragging = false
	}

	return m, cmd
}

func isWheel(msg tea.MouseMsg) bool {
	if msg.Action != tea.MouseActionPress {
		return false
	}
	switch msg.Button { //nolint:exhaustive
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown, tea.MouseButtonWheelLeft, tea.MouseButtonWheelRight:
		return true
	}
	return false
}

func (m Model) mouseInBounds(x, y int) bool {
	h := m.visibleRowCount()
	if m.viewport.Width <= 0 || h <= 0 {
		return false
	}
	return x >= 0 && x < m.viewport.Width && y >= 0 && y < h
}

func (m Model) clampMouseToBounds(x, y int) (int, int) {
	if m.viewport.Width > 0 {
		x = clampInt(x, 0, m.viewport.Width-1)
	}
	if h := m.visibleRowCount(); h > 0 {
		y = clampInt(y, 0, h-1)
	}
	return x, y
}

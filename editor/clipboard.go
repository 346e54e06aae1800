package editor

import "strings"

// Clipboard provides editor-level clipboard integration.
//
// Errors must not crash the UI; they are logged and otherwise ignored.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(s string) error
}

func (m *Model) selectedText() string {
	from, to, ok := m.buf.SelectionOffsets()
	if !ok {
		return ""
	}
	return m.buf.TextBetween(from, to)
}

func (m *Model) copySelection() {
	if m.cfg.Clipboard == nil {
		return
	}
	s := m.selectedText()
	if s == "" {
		return
	}
	if err := m.cfg.Clipboard.WriteText(s); err != nil {
		m.log.Warn("clipboard write", "err", err)
	}
}

func (m *Model) cutSelection() {
	if m.cfg.Clipboard == nil {
		return
	}
	s := m.selectedText()
	if s == "" {
		return
	}
	if err := m.cfg.Clipboard.WriteText(s); err != nil {
		m.log.Warn("clipboard write", "err", err)
		return
	}
	m.buf.DeleteSelection()
}

func (m *Model) pasteClipboard() {
	if m.cfg.Clipboard == nil {
		return
	}
	s, err := m.cfg.Clipboard.ReadText()
	if err != nil {
		m.log.Warn("clipboard read", "err", err)
		return
	}
	if s == "" {
		return
	}
	// Normalize newlines from external sources.
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	m.buf.InsertText(s)
}

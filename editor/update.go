package editor

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenote/zen/ai"
	"github.com/zenote/zen/buffer"
	"github.com/zenote/zen/palette"
	"github.com/zenote/zen/trigger"
)

// updateKey runs a key through the palette pipeline: the trigger detector
// sees it first, then an open palette, then a pending ghost suggestion, then
// the AI bindings, and only then the document.
func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.focused || m.buf == nil {
		return m, nil
	}
	m.notice = ""

	if m.cfg.ReadOnly {
		m.editKey(msg)
		return m, nil
	}

	doc := m.doc()
	if ev := m.detector.KeyDown(doc, msg); ev.Kind == trigger.EventClose {
		m.palette.Close(palette.CloseEscape)
		return m, nil
	}

	if consumed, act := m.palette.HandleKey(msg); consumed {
		switch act.Kind {
		case palette.ActionCommit:
			if err := m.palette.Commit(doc, act.Descriptor); err != nil {
				m.log.Error("palette commit", "command", act.Descriptor.Key, "err", err)
				m.notice = "Command failed"
				return m, nil
			}
			m.detector.Reset()
		case palette.ActionClosed:
			m.detector.Reset()
		}
		return m, nil
	}

	if m.ghost.HandleKey(doc, msg) {
		return m, nil
	}

	if op, ok := m.ai.Config().KeyMap.OpFor(msg); ok {
		return m, m.startAI(op)
	}

	if key.Matches(msg, m.cfg.KeyMap.Save) {
		m.save()
		return m, nil
	}

	m.editKey(msg)

	switch ev := m.detector.AfterKey(doc); ev.Kind {
	case trigger.EventOpen:
		m.palette.Open(ev.Position, ev.Offset)
	case trigger.EventClose:
		m.palette.Close(palette.CloseDiverged)
	}
	if m.palette.IsOpen() && m.palette.Config().Input == palette.InputDocument {
		if q, ok := m.detector.Query(doc); ok {
			m.palette.SetSearch(q)
		}
	}
	return m, nil
}

func (m *Model) startAI(op ai.Op) tea.Cmd {
	if m.cfg.Relay == nil {
		m.notice = "AI is not configured"
		return nil
	}
	req, err := m.ai.Prepare(op, m.doc())
	if err != nil {
		m.notice = ai.Notice(err)
		return nil
	}
	m.ghost.Clear()

	run := m.ai.Run
	timeout := m.cfg.RequestTimeout
	cmd := func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return run(ctx, req)()
	}
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *Model) save() {
	saved, err := m.saver.flush(true)
	switch {
	case err != nil:
		m.notice = "Save failed: " + err.Error()
	case saved:
		m.notice = "Saved"
	case m.cfg.Store != nil:
		m.notice = "No changes"
	}
}

// editKey applies a key to the document. In read-only mode only movement,
// selection and copy work.
func (m *Model) editKey(msg tea.KeyMsg) {
	km := m.cfg.KeyMap
	ro := m.cfg.ReadOnly

	// Paste events should always insert literal text and never trigger shortcuts.
	if msg.Type == tea.KeyRunes && msg.Paste && len(msg.Runes) > 0 {
		if !ro {
			m.buf.InsertText(string(msg.Runes))
		}
		return
	}

	switch {
	case key.Matches(msg, km.Left):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirLeft})
	case key.Matches(msg, km.Right):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirRight})
	case key.Matches(msg, km.Up):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirUp})
	case key.Matches(msg, km.Down):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirDown})

	case key.Matches(msg, km.ShiftLeft):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirLeft, Extend: true})
	case key.Matches(msg, km.ShiftRight):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirRight, Extend: true})
	case key.Matches(msg, km.ShiftUp):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirUp, Extend: true})
	case key.Matches(msg, km.ShiftDown):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirDown, Extend: true})

	case key.Matches(msg, km.WordLeft):
		m.buf.Move(buffer.Move{Unit: buffer.MoveWord, Dir: buffer.DirLeft})
	case key.Matches(msg, km.WordRight):
		m.buf.Move(buffer.Move{Unit: buffer.MoveWord, Dir: buffer.DirRight})
	case key.Matches(msg, km.BlockUp):
		m.buf.Move(buffer.Move{Unit: buffer.MoveBlock, Dir: buffer.DirUp})
	case key.Matches(msg, km.BlockDown):
		m.buf.Move(buffer.Move{Unit: buffer.MoveBlock, Dir: buffer.DirDown})

	case key.Matches(msg, km.Home):
		m.buf.Move(buffer.Move{Unit: buffer.MoveLine, Dir: buffer.DirHome})
	case key.Matches(msg, km.End):
		m.buf.Move(buffer.Move{Unit: buffer.MoveLine, Dir: buffer.DirEnd})
	case key.Matches(msg, km.DocStart):
		m.buf.Move(buffer.Move{Unit: buffer.MoveDoc, Dir: buffer.DirHome})
	case key.Matches(msg, km.DocEnd):
		m.buf.Move(buffer.Move{Unit: buffer.MoveDoc, Dir: buffer.DirEnd})
	case key.Matches(msg, km.SelectAll):
		m.buf.SelectAll()

	case key.Matches(msg, km.Copy):
		m.copySelection()

	case ro:
		return

	case key.Matches(msg, km.Backspace):
		m.buf.DeleteBackward()
	case key.Matches(msg, km.Delete):
		m.buf.DeleteForward()
	case key.Matches(msg, km.Enter):
		m.buf.InsertNewline()
	case key.Matches(msg, km.Tab):
		m.buf.InsertText("\t")
	case key.Matches(msg, km.ToggleTask):
		m.buf.ToggleTask()
	case key.Matches(msg, km.Bold):
		m.buf.ToggleMark(buffer.MarkBold)
	case key.Matches(msg, km.Italic):
		m.buf.ToggleMark(buffer.MarkItalic)
	case key.Matches(msg, km.Strike):
		m.buf.ToggleMark(buffer.MarkStrike)
	case key.Matches(msg, km.InlineCode):
		m.buf.ToggleMark(buffer.MarkCode)

	case key.Matches(msg, km.Undo):
		_ = m.buf.Undo()
	case key.Matches(msg, km.Redo):
		_ = m.buf.Redo()

	case key.Matches(msg, km.Cut):
		m.cutSelection()
	case key.Matches(msg, km.Paste):
		m.pasteClipboard()

	default:
		if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 && !msg.Alt {
			m.buf.InsertText(string(msg.Runes))
		} else if msg.Type == tea.KeySpace {
			m.buf.InsertText(" ")
		}
	}
}

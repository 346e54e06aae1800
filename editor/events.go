package editor

import "github.com/zenote/zen/buffer"

// ChangeEvent is passed to Config.OnChange.
type ChangeEvent struct {
	Version   uint64
	Cursor    buffer.Pos
	Selection struct {
		Range  buffer.Range
		Active bool
	}

	// Markdown is the whole document after the change.
	Markdown string
	Change   buffer.Change
}

func buildChangeEvent(b *buffer.Buffer, c buffer.Change) ChangeEvent {
	ev := ChangeEvent{
		Version:  b.Version(),
		Cursor:   b.Cursor(),
		Markdown: b.Markdown(),
		Change:   c,
	}
	if r, ok := b.Selection(); ok {
		ev.Selection.Active = true
		ev.Selection.Range = r
	}
	return ev
}

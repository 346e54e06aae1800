package editor

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenote/zen/internal/notes"
)

type memStore struct {
	calls []string
	err   error
}

func (s *memStore) UpdateNote(_ context.Context, _ int64, p notes.Patch) error {
	if s.err != nil {
		return s.err
	}
	if p.Content != nil {
		s.calls = append(s.calls, *p.Content)
	}
	return nil
}

func TestSave_AfterEdit(t *testing.T) {
	st := &memStore{}
	m := New(Config{Markdown: "# T", NoteID: 7, Store: st})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	if len(st.calls) != 0 {
		t.Fatalf("cursor move saved: %q", st.calls)
	}

	m = typeText(m, "x")
	if len(st.calls) != 1 || st.calls[0] != "# Tx\n" {
		t.Fatalf("saves after typing: got %q, want one %q", st.calls, "# Tx\n")
	}
}

func TestSave_ForceSkipsUnchangedContent(t *testing.T) {
	st := &memStore{}
	m := New(Config{Markdown: "hello", Store: st})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if len(st.calls) != 0 {
		t.Fatalf("unchanged note written: %q", st.calls)
	}
	if got := m.Notice(); got != "No changes" {
		t.Fatalf("notice: got %q, want %q", got, "No changes")
	}

	m = typeText(m, "a")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if len(st.calls) != 2 {
		t.Fatalf("writes: got %d, want %d", len(st.calls), 2)
	}
}

func TestSave_ErrorBecomesNotice(t *testing.T) {
	st := &memStore{err: errors.New("disk full")}
	m := New(Config{Markdown: "a", Store: st})

	m = typeText(m, "b")
	if got := m.Notice(); !strings.HasPrefix(got, "Save failed") || !strings.Contains(got, "disk full") {
		t.Fatalf("notice: got %q", got)
	}

	// The failed write is retried on the next flush.
	st.err = nil
	m, _ = m.Save()
	if len(st.calls) != 1 {
		t.Fatalf("retry writes: got %d, want %d", len(st.calls), 1)
	}
}

func TestOnChange_ReportsMarkdown(t *testing.T) {
	var got []ChangeEvent
	m := New(Config{Markdown: "a", OnChange: func(ev ChangeEvent) { got = append(got, ev) }})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = typeText(m, "b")
	if len(got) != 1 {
		t.Fatalf("events: got %d, want %d", len(got), 1)
	}
	if got[0].Markdown != "ab\n" {
		t.Fatalf("markdown: got %q, want %q", got[0].Markdown, "ab\n")
	}
	if !got[0].Change.DocChanged() {
		t.Fatalf("change not marked as a doc change")
	}
}

func TestSave_AfterTaskClick(t *testing.T) {
	st := &memStore{}
	m := New(Config{Markdown: "- [ ] ship", NoteID: 1, Store: st})
	m = m.SetSize(20, 4)

	m, _ = m.Update(tea.MouseMsg{X: 1, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if len(st.calls) != 1 || st.calls[0] != "- [x] ship\n" {
		t.Fatalf("saves after click: got %q, want one %q", st.calls, "- [x] ship\n")
	}
}

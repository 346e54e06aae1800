package editor

import (
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/zenote/zen/ai"
	"github.com/zenote/zen/buffer"
)

type stubRelay struct {
	reply string
	calls int
}

func (r *stubRelay) Do(context.Context, ai.Op, string) (string, error) {
	r.calls++
	return r.reply, nil
}

var altS = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s"), Alt: true}

// resultOf runs the AI command out of a batch and returns its result.
func resultOf(t *testing.T, cmd tea.Cmd) ai.ResultMsg {
	t.Helper()
	if cmd == nil {
		t.Fatalf("no command returned")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("expected a batch")
	}
	for _, c := range batch {
		if c == nil {
			continue
		}
		if res, ok := c().(ai.ResultMsg); ok {
			return res
		}
	}
	t.Fatalf("batch has no ai result")
	return ai.ResultMsg{}
}

func TestAI_SummarizeReplacesSelection(t *testing.T) {
	relay := &stubRelay{reply: "Short."}
	m := New(Config{Markdown: "intro: a very long sentence", Relay: relay})
	m = m.SetSize(40, 5)
	m.buf.SetSelection(buffer.Range{Start: m.buf.PosAt(7), End: m.buf.PosAt(27)})

	m, cmd := m.Update(altS)
	if !m.Busy() {
		t.Fatalf("not busy after starting a command")
	}
	if view := ansi.Strip(m.View()); !strings.Contains(view, "Thinking") {
		t.Fatalf("status line missing progress:\n%s", view)
	}

	// A second command while busy is refused with a notice.
	m, again := m.Update(altS)
	if again != nil {
		t.Fatalf("second command started while busy")
	}
	if got := m.Notice(); got != "An AI command is already running" {
		t.Fatalf("busy notice: got %q", got)
	}

	m, _ = m.Update(resultOf(t, cmd))
	if m.Busy() {
		t.Fatalf("still busy after the result")
	}
	if got := m.buf.Text(); got != "intro: Short." {
		t.Fatalf("text: got %q, want %q", got, "intro: Short.")
	}
	if relay.calls != 1 {
		t.Fatalf("relay calls: got %d, want %d", relay.calls, 1)
	}
}

func TestAI_AutocompleteShowsGhost(t *testing.T) {
	relay := &stubRelay{reply: " world"}
	m := New(Config{Markdown: "hello", Relay: relay})
	m.buf.SetCursor(m.buf.PosAt(5))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlAt})
	m, _ = m.Update(resultOf(t, cmd))

	if got := ansi.Strip(m.renderContent()); got != "hello world" {
		t.Fatalf("render with ghost: got %q", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := m.buf.Text(); got != "hello world" {
		t.Fatalf("text after accept: got %q", got)
	}
}

func TestAI_Notices(t *testing.T) {
	m := New(Config{Markdown: "hello", Relay: &stubRelay{}})
	m, cmd := m.Update(altS)
	if cmd != nil {
		t.Fatalf("command started without a selection")
	}
	if got := m.Notice(); got != "Please select some text to use AI commands" {
		t.Fatalf("notice: got %q", got)
	}

	// Any key clears the notice.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if got := m.Notice(); got != "" {
		t.Fatalf("notice after a key: got %q", got)
	}

	m = New(Config{Markdown: "hello"})
	m, _ = m.Update(altS)
	if got := m.Notice(); got != "AI is not configured" {
		t.Fatalf("notice without relay: got %q", got)
	}
}

func TestAI_SpinnerTicksOnlyWhileBusy(t *testing.T) {
	m := New(Config{Markdown: "hello"})
	if _, cmd := m.Update(spinner.TickMsg{}); cmd != nil {
		t.Fatalf("spinner ticked while idle")
	}
}

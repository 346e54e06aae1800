package trigger

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenote/zen/buffer"
)

// testDoc is a buffer whose every offset sits on screen at (row, col), with
// offsets past the end of the document unmapped.
type testDoc struct {
	*buffer.Buffer
}

func (d testDoc) Coords(off int) (Point, bool) {
	if off < 0 || off > d.Len() {
		return Point{}, false
	}
	p := d.PosAt(off)
	return Point{Top: p.Row, Left: p.GraphemeCol}, true
}

func newDoc(text string, caret int) testDoc {
	b := buffer.New(text, buffer.Options{})
	b.SetCursor(b.PosAt(caret))
	return testDoc{b}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeKey runs one key through the detector the way the editor does.
func typeKey(d *Detector, doc testDoc, msg tea.KeyMsg) (down, after Event) {
	down = d.KeyDown(doc, msg)
	switch msg.Type {
	case tea.KeyRunes:
		doc.InsertText(string(msg.Runes))
	case tea.KeySpace:
		doc.InsertText(" ")
	case tea.KeyEnter:
		doc.InsertNewline()
	case tea.KeyBackspace:
		doc.DeleteBackward()
	case tea.KeyLeft:
		doc.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirLeft})
	}
	after = d.AfterKey(doc)
	return down, after
}

func TestDetector_OpensAfterSpace(t *testing.T) {
	doc := newDoc("some text ", 10)
	d := New(DefaultConfig())

	_, ev := typeKey(d, doc, runes("/"))
	if ev.Kind != EventOpen {
		t.Fatalf("event=%+v, want open", ev)
	}
	if got, want := ev.Offset, 10; got != want {
		t.Fatalf("offset=%d, want %d", got, want)
	}
	if got, want := ev.Position, (Point{Top: 1, Left: 11}); got != want {
		t.Fatalf("position=%+v, want %+v", got, want)
	}
	if off, ok := d.Active(); !ok || off != 10 {
		t.Fatalf("active=(%d,%v), want (10,true)", off, ok)
	}
}

func TestDetector_Guard(t *testing.T) {
	tests := []struct {
		name string
		text string
		open bool
	}{
		{"empty document", "", true},
		{"line start", "first\n", true},
		{"after space", "word ", true},
		{"after terminator", "Done.", true},
		{"after question", "why?", true},
		{"inside word", "and", false},
		{"after comma", "a,", false},
		{"url-like", "http:", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newDoc(tt.text, len([]rune(tt.text)))
			d := New(DefaultConfig())
			_, ev := typeKey(d, doc, runes("/"))
			if got := ev.Kind == EventOpen; got != tt.open {
				t.Fatalf("open=%v, want %v (event %+v)", got, tt.open, ev)
			}
		})
	}
}

func TestDetector_OnlyWindowBeforeCaretMatters(t *testing.T) {
	// A long line with a space far back still opens: the last char decides.
	text := "x " + "abcdefghijklmnopqrstuvwxyzabcdefgh "
	doc := newDoc(text, len(text))
	d := New(DefaultConfig())
	if _, ev := typeKey(d, doc, runes("/")); ev.Kind != EventOpen {
		t.Fatalf("event=%+v, want open", ev)
	}
}

func TestDetector_CoordsFallback(t *testing.T) {
	doc := newDoc("", 0)
	d := New(DefaultConfig())
	fallback := fallbackDoc{doc}

	d.KeyDown(fallback, runes("/"))
	doc.InsertText("/")
	ev := d.AfterKey(fallback)
	if ev.Kind != EventOpen {
		t.Fatalf("event=%+v, want open", ev)
	}
	if got, want := ev.Position, (Point{Top: 1, Left: 0}); got != want {
		t.Fatalf("position=%+v, want %+v", got, want)
	}
}

// fallbackDoc has no coordinates at the document end.
type fallbackDoc struct{ testDoc }

func (d fallbackDoc) Coords(off int) (Point, bool) {
	if off >= d.Len() {
		return Point{}, false
	}
	return d.testDoc.Coords(off)
}

func TestDetector_CloseOnEscape(t *testing.T) {
	doc := newDoc("", 0)
	d := New(DefaultConfig())
	typeKey(d, doc, runes("/"))

	ev := d.KeyDown(doc, tea.KeyMsg{Type: tea.KeyEsc})
	if ev.Kind != EventClose || ev.Reason != ReasonEscape {
		t.Fatalf("event=%+v, want close(escape)", ev)
	}
	if _, ok := d.Active(); ok {
		t.Fatalf("expected detector idle")
	}

	// Escape with no run is ignored.
	if ev := d.KeyDown(doc, tea.KeyMsg{Type: tea.KeyEsc}); ev.Kind != EventNone {
		t.Fatalf("event=%+v, want none", ev)
	}
}

func TestDetector_CloseWhenRunBreaks(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
	}{
		{"space typed", []tea.KeyMsg{runes("h"), {Type: tea.KeySpace}}},
		{"newline typed", []tea.KeyMsg{runes("h"), {Type: tea.KeyEnter}}},
		{"trigger deleted", []tea.KeyMsg{runes("h"), {Type: tea.KeyBackspace}, {Type: tea.KeyBackspace}}},
		{"caret left run", []tea.KeyMsg{{Type: tea.KeyLeft}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newDoc("", 0)
			d := New(DefaultConfig())
			typeKey(d, doc, runes("/"))

			var last Event
			for _, k := range tt.keys {
				_, last = typeKey(d, doc, k)
			}
			if last.Kind != EventClose || last.Reason != ReasonBroken {
				t.Fatalf("event=%+v, want close(broken)", last)
			}
		})
	}
}

func TestDetector_QueryAndObserve(t *testing.T) {
	doc := newDoc("ab ", 3)
	d := New(DefaultConfig())
	doc.Subscribe(d.Observe)

	typeKey(d, doc, runes("/"))
	for _, r := range "head" {
		if _, ev := typeKey(d, doc, runes(string(r))); ev.Kind != EventNone {
			t.Fatalf("unexpected event %+v", ev)
		}
	}
	if q, ok := d.Query(doc); !ok || q != "head" {
		t.Fatalf("query=(%q,%v), want (head,true)", q, ok)
	}

	// An insertion before the run moves the trigger with it.
	doc.ApplyEdits(buffer.TextEdit{Range: doc.Range(0, 0), Text: "XY"})
	if off, ok := d.Active(); !ok || off != 5 {
		t.Fatalf("active=(%d,%v), want (5,true)", off, ok)
	}
}

func TestFindTrigger(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name  string
		text  string
		want  int
		found bool
	}{
		{"direct", "ab /head", 3, true},
		{"at start", "/quote", 0, true},
		{"stopped by space", "/a b", 0, false},
		{"none", "plain", 0, false},
		{"beyond limit", "/" + "abcdefghijklmnopqrstuvwxyzabcde", 0, false},
		{"at limit", "/" + "abcdefghijklmnopqrstuvwxyzabc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newDoc(tt.text, len([]rune(tt.text)))
			got, ok := FindTrigger(doc, cfg)
			if ok != tt.found || (ok && got != tt.want) {
				t.Fatalf("FindTrigger=(%d,%v), want (%d,%v)", got, ok, tt.want, tt.found)
			}
		})
	}
}

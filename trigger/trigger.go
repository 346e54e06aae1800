// Package trigger decides when a slash-command session opens and closes by
// watching the keys typed into a document and the text just before the
// caret. It never edits the document.
package trigger

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenote/zen/buffer"
)

// Point is a screen position in terminal cells, relative to the editor's
// content area.
type Point struct {
	Top  int
	Left int
}

// Document is the read-only view of the document the detector needs.
type Document interface {
	CaretOffset() int
	SelectionOffsets() (from, to int, ok bool)
	TextBetween(from, to int) string
	Coords(offset int) (Point, bool)
}

// Config makes the trigger character and the scan bounds explicit.
type Config struct {
	Char rune
	// ScanLimit bounds every backward scan, in characters.
	ScanLimit int
	// StopChars end a trigger run.
	StopChars string
	// Terminators are the sentence-ending characters after which the
	// trigger may open.
	Terminators string
}

func DefaultConfig() Config {
	return Config{
		Char:        '/',
		ScanLimit:   30,
		StopChars:   " \n",
		Terminators: ".!?",
	}
}

func normalizeConfig(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Char == 0 {
		cfg.Char = def.Char
	}
	if cfg.ScanLimit <= 0 {
		cfg.ScanLimit = def.ScanLimit
	}
	if cfg.StopChars == "" {
		cfg.StopChars = def.StopChars
	}
	if cfg.Terminators == "" {
		cfg.Terminators = def.Terminators
	}
	return cfg
}

type EventKind uint8

const (
	EventNone EventKind = iota
	EventOpen
	EventClose
)

type CloseReason uint8

const (
	ReasonEscape CloseReason = iota
	// ReasonBroken means the run between the trigger and the caret no longer
	// holds: a stop character was typed, the trigger was deleted, or the
	// caret left the run.
	ReasonBroken
)

func (r CloseReason) String() string {
	switch r {
	case ReasonEscape:
		return "escape"
	case ReasonBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// Event is what the detector reports for a key. Offset is the trigger
// character's offset and Position the point just below the caret.
type Event struct {
	Kind     EventKind
	Offset   int
	Position Point
	Reason   CloseReason
}

// Detector tracks at most one trigger run.
//
// A key goes through KeyDown before the editor applies it and AfterKey
// after, so the detector sees both the typed key and the resulting text.
type Detector struct {
	cfg   Config
	close key.Binding

	pending int
	armed   bool
	offset  int
}

func New(cfg Config) *Detector {
	return &Detector{
		cfg:     normalizeConfig(cfg),
		close:   key.NewBinding(key.WithKeys("esc")),
		pending: -1,
	}
}

func (d *Detector) Config() Config { return d.cfg }

// Active reports the trigger offset of the open run.
func (d *Detector) Active() (int, bool) {
	return d.offset, d.armed
}

// Reset forgets the current run without reporting a close.
func (d *Detector) Reset() {
	d.pending = -1
	d.armed = false
	d.offset = 0
}

// KeyDown inspects a key before it is applied.
func (d *Detector) KeyDown(doc Document, msg tea.KeyMsg) Event {
	if doc == nil {
		return Event{}
	}
	if d.armed && key.Matches(msg, d.close) {
		off := d.offset
		d.Reset()
		return Event{Kind: EventClose, Offset: off, Reason: ReasonEscape}
	}
	if !d.isTriggerKey(msg) {
		return Event{}
	}

	at := doc.CaretOffset()
	if from, _, ok := doc.SelectionOffsets(); ok {
		at = from
	}
	before := doc.TextBetween(max(0, at-d.cfg.ScanLimit), at)
	if d.opensAfter(before) {
		d.pending = at
	}
	return Event{}
}

// AfterKey reports the open or close that the applied key caused.
func (d *Detector) AfterKey(doc Document) Event {
	if doc == nil {
		return Event{}
	}

	if d.pending >= 0 {
		at := d.pending
		d.pending = -1
		if doc.CaretOffset() == at+1 && doc.TextBetween(at, at+1) == string(d.cfg.Char) {
			d.armed = true
			d.offset = at
			return Event{Kind: EventOpen, Offset: at, Position: below(doc, at+1)}
		}
	}

	if d.armed && d.broken(doc) {
		off := d.offset
		d.Reset()
		return Event{Kind: EventClose, Offset: off, Reason: ReasonBroken}
	}
	return Event{}
}

// Observe keeps the trigger offset in step with edits made elsewhere in the
// document.
func (d *Detector) Observe(c buffer.Change) {
	if !d.armed || !c.DocChanged() {
		return
	}
	d.offset = c.MapOffset(d.offset, buffer.AssocAfter)
}

// Query returns the text typed after the trigger character.
func (d *Detector) Query(doc Document) (string, bool) {
	if !d.armed || doc == nil {
		return "", false
	}
	caret := doc.CaretOffset()
	if caret <= d.offset {
		return "", true
	}
	return doc.TextBetween(d.offset+1, caret), true
}

func (d *Detector) isTriggerKey(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyRunes && !msg.Alt && len(msg.Runes) == 1 && msg.Runes[0] == d.cfg.Char
}

// opensAfter reports whether the trigger may open after the text before.
func (d *Detector) opensAfter(before string) bool {
	if before == "" {
		return true
	}
	r := lastRune(before)
	if r == '\n' || strings.ContainsRune(d.cfg.StopChars, r) || isSpace(r) {
		return true
	}
	return strings.ContainsRune(d.cfg.Terminators, r)
}

func (d *Detector) broken(doc Document) bool {
	caret := doc.CaretOffset()
	if caret <= d.offset || caret-d.offset > d.cfg.ScanLimit {
		return true
	}
	if doc.TextBetween(d.offset, d.offset+1) != string(d.cfg.Char) {
		return true
	}
	return strings.ContainsAny(doc.TextBetween(d.offset+1, caret), d.cfg.StopChars)
}

// below returns the point under the caret, looking up at first and falling
// back to at-1 when at has no coordinates.
func below(doc Document, at int) Point {
	p, ok := doc.Coords(at)
	if !ok {
		p, ok = doc.Coords(at - 1)
	}
	if !ok {
		return Point{}
	}
	p.Top++
	return p
}

// Package palette implements the slash-command palette: the session state,
// the filtered command list, keyboard navigation, and the commit that turns
// the typed trigger run into a block transform.
package palette

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenote/zen/buffer"
	"github.com/zenote/zen/trigger"
)

// InputMode selects where typed characters go while the palette is open.
type InputMode uint8

const (
	// InputDocument lets typed characters reach the document; the search
	// follows the text after the trigger character.
	InputDocument InputMode = iota
	// InputSearchField routes typed characters into the palette's own
	// search field and leaves the document alone.
	InputSearchField
)

type Config struct {
	Width       int
	MaxRows     int
	EdgePadding int
	Input       InputMode
	Trigger     trigger.Config
	KeyMap      KeyMap
	Logger      *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Width:       36,
		MaxRows:     8,
		EdgePadding: 1,
		Trigger:     trigger.DefaultConfig(),
		KeyMap:      DefaultKeyMap(),
	}
}

type KeyMap struct {
	Next, Prev key.Binding
	Commit     key.Binding
	Close      key.Binding
	Backspace  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:      key.NewBinding(key.WithKeys("down", "tab", "ctrl+n"), key.WithHelp("↓", "next command")),
		Prev:      key.NewBinding(key.WithKeys("up", "shift+tab", "ctrl+p"), key.WithHelp("↑", "previous command")),
		Commit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply command")),
		Close:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Backspace: key.NewBinding(key.WithKeys("backspace", "ctrl+h")),
	}
}

// Session is the state of an open palette.
type Session struct {
	Open          bool
	Search        string
	Filtered      []Descriptor
	Selected      int
	Position      trigger.Point
	TriggerOffset int
}

type EventKind uint8

const (
	EventOpened EventKind = iota
	EventClosed
	EventFiltered
	EventCommitted
)

type CloseReason uint8

const (
	CloseEscape CloseReason = iota
	CloseBackspace
	CloseCommitted
	// CloseDiverged means the trigger run was broken in the document.
	CloseDiverged
	CloseExternal
)

func (r CloseReason) String() string {
	switch r {
	case CloseEscape:
		return "escape"
	case CloseBackspace:
		return "backspace"
	case CloseCommitted:
		return "committed"
	case CloseDiverged:
		return "diverged"
	default:
		return "external"
	}
}

// Event is delivered to subscribers after the state change it describes.
type Event struct {
	Kind       EventKind
	Session    Session
	Descriptor Descriptor // EventCommitted
	Reason     CloseReason
}

// ActionKind tells the host what a handled key asks for.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionCommit
	ActionClosed
)

type Action struct {
	Kind       ActionKind
	Descriptor Descriptor
}

// Document is what Commit edits.
type Document interface {
	trigger.TextReader
	Range(from, to int) buffer.Range
	Apply(tx buffer.Transaction) (buffer.Change, error)
}

// Controller owns the palette session. It is driven synchronously from the
// host's update loop.
type Controller struct {
	cfg     Config
	catalog []Descriptor
	session Session
	input   textinput.Model
	log     *slog.Logger

	observers []func(Event)
}

func New(cfg Config) *Controller {
	def := DefaultConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = def.MaxRows
	}
	if cfg.EdgePadding < 0 {
		cfg.EdgePadding = 0
	}
	if len(cfg.KeyMap.Next.Keys()) == 0 {
		cfg.KeyMap = def.KeyMap
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	in := textinput.New()
	in.Prompt = string(trigger.DefaultConfig().Char)
	if cfg.Trigger.Char != 0 {
		in.Prompt = string(cfg.Trigger.Char)
	}
	in.Placeholder = "Search commands"
	in.CharLimit = 64

	return &Controller{
		cfg:     cfg,
		catalog: Catalog(),
		input:   in,
		log:     log,
	}
}

func (c *Controller) Config() Config { return c.cfg }

// Subscribe registers fn for palette events, delivered in registration
// order.
func (c *Controller) Subscribe(fn func(Event)) {
	if fn != nil {
		c.observers = append(c.observers, fn)
	}
}

func (c *Controller) emit(ev Event) {
	ev.Session = c.Session()
	for _, fn := range c.observers {
		fn(ev)
	}
}

// Session returns a copy of the current session.
func (c *Controller) Session() Session {
	s := c.session
	s.Filtered = append([]Descriptor(nil), c.session.Filtered...)
	return s
}

func (c *Controller) IsOpen() bool { return c.session.Open }

// Open starts a new session with an empty search and the full catalog.
func (c *Controller) Open(pos trigger.Point, triggerOffset int) {
	c.session = Session{
		Open:          true,
		Filtered:      Catalog(),
		Position:      pos,
		TriggerOffset: triggerOffset,
	}
	c.input.SetValue("")
	c.input.Focus()
	c.emit(Event{Kind: EventOpened})
}

// Close ends the session. Closing a closed palette does nothing.
func (c *Controller) Close(reason CloseReason) {
	if !c.session.Open {
		return
	}
	c.session = Session{}
	c.input.Blur()
	c.input.SetValue("")
	c.emit(Event{Kind: EventClosed, Reason: reason})
}

// Reposition moves the session anchor, e.g. after the caret moved on screen.
func (c *Controller) Reposition(pos trigger.Point) {
	if c.session.Open {
		c.session.Position = pos
	}
}

// SetSearch refilters the catalog and resets the selection.
func (c *Controller) SetSearch(text string) {
	if !c.session.Open {
		return
	}
	if text == c.session.Search && c.session.Filtered != nil {
		return
	}
	c.session.Search = text
	c.session.Filtered = Filter(c.catalog, text)
	c.session.Selected = 0
	if c.input.Value() != text {
		c.input.SetValue(text)
	}
	c.emit(Event{Kind: EventFiltered})
}

func (c *Controller) Next() { c.step(1) }

func (c *Controller) Prev() { c.step(-1) }

func (c *Controller) step(delta int) {
	n := len(c.session.Filtered)
	if !c.session.Open || n == 0 {
		return
	}
	c.session.Selected = ((c.session.Selected+delta)%n + n) % n
}

// Selected returns the highlighted entry.
func (c *Controller) Selected() (Descriptor, bool) {
	s := c.session
	if !s.Open || s.Selected < 0 || s.Selected >= len(s.Filtered) {
		return Descriptor{}, false
	}
	return s.Filtered[s.Selected], true
}

// HandleKey applies a key to an open palette. Navigation, Enter, Escape and
// Backspace on an empty search are always consumed. Other keys are consumed
// only in InputSearchField mode.
func (c *Controller) HandleKey(msg tea.KeyMsg) (consumed bool, act Action) {
	if !c.session.Open {
		return false, Action{}
	}
	km := c.cfg.KeyMap

	switch {
	case key.Matches(msg, km.Next):
		c.Next()
		return true, Action{}
	case key.Matches(msg, km.Prev):
		c.Prev()
		return true, Action{}
	case key.Matches(msg, km.Commit):
		if d, ok := c.Selected(); ok {
			return true, Action{Kind: ActionCommit, Descriptor: d}
		}
		return true, Action{}
	case key.Matches(msg, km.Close):
		c.Close(CloseEscape)
		return true, Action{Kind: ActionClosed}
	case key.Matches(msg, km.Backspace) && c.session.Search == "":
		c.Close(CloseBackspace)
		return true, Action{Kind: ActionClosed}
	}

	if c.cfg.Input != InputSearchField {
		return false, Action{}
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	_ = cmd // cursor blink is not driven in the editor
	c.SetSearch(c.input.Value())
	return true, Action{}
}

// Commit deletes the trigger run before the caret and applies d's block
// transform in one transaction, then closes the session. A missing trigger
// skips the delete. A nil document makes Commit a no-op.
func (c *Controller) Commit(doc Document, d Descriptor) error {
	if doc == nil {
		return nil
	}

	tx := buffer.Transaction{Blocks: []buffer.BlockStep{d.Command.Step()}}
	if start, ok := trigger.FindTrigger(doc, c.cfg.Trigger); ok {
		tx.Edits = []buffer.TextEdit{{Range: doc.Range(start, doc.CaretOffset())}}
	}
	if _, err := doc.Apply(tx); err != nil {
		return fmt.Errorf("palette: commit %s: %w", d.Key, err)
	}

	c.log.Debug("palette commit", "command", d.Key, "deleted", len(tx.Edits) > 0)
	wasOpen := c.session.Open
	c.emit(Event{Kind: EventCommitted, Descriptor: d})
	if wasOpen {
		c.Close(CloseCommitted)
	}
	return nil
}

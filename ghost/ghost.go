// Package ghost holds at most one inline suggestion pinned to a document
// offset. The suggestion is drawn after the caret as a decoration and only
// becomes text when accepted.
package ghost

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenote/zen/buffer"
)

var (
	ErrNoSuggestion = errors.New("ghost: no pending suggestion")
	ErrNotAtAnchor  = errors.New("ghost: caret is not at the suggestion anchor")
)

// Suggestion is pending text anchored at a document offset.
type Suggestion struct {
	Text   string
	Anchor int
}

type Reason uint8

const (
	ReasonDismissed Reason = iota
	ReasonAccepted
	// ReasonDiverged means the caret left the anchor, by typing or moving.
	ReasonDiverged
	ReasonReplaced
)

func (r Reason) String() string {
	switch r {
	case ReasonDismissed:
		return "dismissed"
	case ReasonAccepted:
		return "accepted"
	case ReasonDiverged:
		return "diverged"
	case ReasonReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

type EventKind uint8

const (
	EventSet EventKind = iota
	EventCleared
)

type Event struct {
	Kind       EventKind
	Suggestion Suggestion
	Reason     Reason // EventCleared
}

// Decoration is the view-only text to draw at Offset. Text is the first
// line of the suggestion.
type Decoration struct {
	Offset int
	Text   string
}

// Document is the part of a document Accept and HandleKey need.
type Document interface {
	CaretOffset() int
	Range(from, to int) buffer.Range
	Apply(tx buffer.Transaction) (buffer.Change, error)
}

type KeyMap struct {
	Accept  key.Binding
	Dismiss key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Accept:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "accept suggestion")),
		Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss suggestion")),
	}
}

type Config struct {
	KeyMap KeyMap
	Logger *slog.Logger
}

type Controller struct {
	keys KeyMap
	log  *slog.Logger

	pending bool
	s       Suggestion

	observers []func(Event)
}

func New(cfg Config) *Controller {
	if len(cfg.KeyMap.Accept.Keys()) == 0 {
		cfg.KeyMap = DefaultKeyMap()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Controller{keys: cfg.KeyMap, log: log}
}

// Subscribe registers fn; events are delivered synchronously in
// registration order.
func (c *Controller) Subscribe(fn func(Event)) {
	if fn != nil {
		c.observers = append(c.observers, fn)
	}
}

func (c *Controller) emit(ev Event) {
	for _, fn := range c.observers {
		fn(ev)
	}
}

// Set replaces any pending suggestion. Empty text clears instead.
func (c *Controller) Set(text string, anchor int) {
	if text == "" {
		c.clear(ReasonDismissed)
		return
	}
	if anchor < 0 {
		anchor = 0
	}
	if c.pending {
		c.clear(ReasonReplaced)
	}
	c.pending = true
	c.s = Suggestion{Text: text, Anchor: anchor}
	c.emit(Event{Kind: EventSet, Suggestion: c.s})
}

// Clear dismisses the pending suggestion.
func (c *Controller) Clear() { c.clear(ReasonDismissed) }

func (c *Controller) clear(reason Reason) {
	if !c.pending {
		return
	}
	s := c.s
	c.pending = false
	c.s = Suggestion{}
	c.log.Debug("ghost cleared", "reason", reason.String(), "anchor", s.Anchor)
	c.emit(Event{Kind: EventCleared, Suggestion: s, Reason: reason})
}

func (c *Controller) Pending() (Suggestion, bool) {
	return c.s, c.pending
}

// Observe drops the suggestion once the caret leaves the anchor. Typing at
// the anchor moves the caret past it, so a stale suggestion never survives
// an edit.
func (c *Controller) Observe(ch buffer.Change) {
	if !c.pending {
		return
	}
	if ch.CursorOffsetAfter != c.s.Anchor {
		c.clear(ReasonDiverged)
	}
}

// Decoration returns what to draw for the given caret. Nothing is drawn
// unless the caret sits exactly on the anchor.
func (c *Controller) Decoration(caret int) (Decoration, bool) {
	if !c.pending || caret != c.s.Anchor {
		return Decoration{}, false
	}
	text := c.s.Text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return Decoration{Offset: c.s.Anchor, Text: text}, true
}

// Accept inserts the full suggestion at the anchor in one transaction and
// clears it. The document is left alone unless the caret is on the anchor.
func (c *Controller) Accept(doc Document) error {
	if !c.pending {
		return ErrNoSuggestion
	}
	if doc == nil || doc.CaretOffset() != c.s.Anchor {
		return ErrNotAtAnchor
	}

	s := c.s
	// Observers of the insert must not see the suggestion as pending.
	c.pending = false
	c.s = Suggestion{}
	tx := buffer.Transaction{Edits: []buffer.TextEdit{{Range: doc.Range(s.Anchor, s.Anchor), Text: s.Text}}}
	if _, err := doc.Apply(tx); err != nil {
		c.pending = true
		c.s = s
		return fmt.Errorf("ghost: accept: %w", err)
	}

	c.log.Debug("ghost accepted", "anchor", s.Anchor, "len", len(s.Text))
	c.emit(Event{Kind: EventCleared, Suggestion: s, Reason: ReasonAccepted})
	return nil
}

// HandleKey accepts on Tab and dismisses on Escape while a suggestion is
// pending at the caret. Every other key passes through.
func (c *Controller) HandleKey(doc Document, msg tea.KeyMsg) bool {
	if !c.pending || doc == nil || doc.CaretOffset() != c.s.Anchor {
		return false
	}
	switch {
	case key.Matches(msg, c.keys.Accept):
		if err := c.Accept(doc); err != nil {
			c.log.Warn("ghost accept failed", "err", err)
		}
		return true
	case key.Matches(msg, c.keys.Dismiss):
		c.clear(ReasonDismissed)
		return true
	}
	return false
}

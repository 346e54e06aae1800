package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenote/zen/buffer"
)

var (
	// ErrBusy rejects a request while another is in flight.
	ErrBusy = errors.New("ai: a request is already in flight")
	// ErrEmptyInput is matched by every *InputError.
	ErrEmptyInput = errors.New("ai: empty input")
	// ErrSelectionChanged means the captured selection no longer holds the
	// text that was sent.
	ErrSelectionChanged = errors.New("ai: selection changed while waiting")
	ErrNotRunning       = errors.New("ai: no request in flight")
)

// InputError carries the message shown when there is nothing to send.
type InputError struct {
	Op      Op
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Is(target error) bool { return target == ErrEmptyInput }

// ReplacePolicy decides which range a rewrite replaces.
type ReplacePolicy uint8

const (
	// ReplaceCaptured replaces the selection captured at request time,
	// mapped through later edits, and only if it still holds the sent text.
	ReplaceCaptured ReplacePolicy = iota
	// ReplaceCurrent replaces whatever is selected when the result arrives.
	ReplaceCurrent
)

func (p ReplacePolicy) String() string {
	if p == ReplaceCurrent {
		return "current"
	}
	return "captured"
}

func ParseReplacePolicy(s string) (ReplacePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "captured":
		return ReplaceCaptured, nil
	case "current":
		return ReplaceCurrent, nil
	}
	return ReplaceCaptured, fmt.Errorf("ai: unknown replace policy %q", s)
}

// Document is the part of the editor document the orchestrator reads and
// edits.
type Document interface {
	CaretOffset() int
	SelectionOffsets() (from, to int, ok bool)
	TextBetween(from, to int) string
	Range(from, to int) buffer.Range
	Apply(tx buffer.Transaction) (buffer.Change, error)
}

// Ghost receives autocomplete results.
type Ghost interface {
	Set(text string, anchor int)
}

type Config struct {
	// ContextWindow is how many characters before the caret autocomplete
	// sends.
	ContextWindow int
	Policy        ReplacePolicy
	KeyMap        KeyMap
	Logger        *slog.Logger
}

func DefaultConfig() Config {
	return Config{ContextWindow: 500, KeyMap: DefaultKeyMap()}
}

type KeyMap struct {
	Summarize    key.Binding
	Expand       key.Binding
	Improve      key.Binding
	Autocomplete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Summarize:    key.NewBinding(key.WithKeys("alt+s"), key.WithHelp("alt+s", "summarize selection")),
		Expand:       key.NewBinding(key.WithKeys("alt+e"), key.WithHelp("alt+e", "expand selection")),
		Improve:      key.NewBinding(key.WithKeys("alt+i"), key.WithHelp("alt+i", "improve selection")),
		Autocomplete: key.NewBinding(key.WithKeys("ctrl+@"), key.WithHelp("ctrl+space", "autocomplete")),
	}
}

// OpFor maps a key to the operation bound to it.
func (km KeyMap) OpFor(msg tea.KeyMsg) (Op, bool) {
	switch {
	case key.Matches(msg, km.Summarize):
		return OpSummarize, true
	case key.Matches(msg, km.Expand):
		return OpExpand, true
	case key.Matches(msg, km.Improve):
		return OpImprove, true
	case key.Matches(msg, km.Autocomplete):
		return OpAutocomplete, true
	}
	return "", false
}

// Request is a validated operation with the document state captured when
// it was prepared.
type Request struct {
	ID    uint64
	Op    Op
	Text  string
	Caret int
	// From and To are the captured selection for rewrites.
	From, To int
}

// ResultMsg is delivered to the update loop when a request finishes.
type ResultMsg struct {
	Request Request
	Text    string
	Err     error
	Elapsed time.Duration
}

// Outcome is what Complete did. Notice is the advisory to show, if any.
type Outcome struct {
	Applied bool
	Notice  string
	Err     error
}

// Orchestrator runs at most one relay request at a time.
type Orchestrator struct {
	relay Relay
	cfg   Config
	log   *slog.Logger

	nextID   uint64
	busy     bool
	inflight Request
	// Captured selection and caret, followed across edits while busy.
	from, to int
	caret    buffer.Tracker
}

func NewOrchestrator(relay Relay, cfg Config) *Orchestrator {
	def := DefaultConfig()
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = def.ContextWindow
	}
	if len(cfg.KeyMap.Summarize.Keys()) == 0 {
		cfg.KeyMap = def.KeyMap
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{relay: relay, cfg: cfg, log: log}
}

func (o *Orchestrator) Config() Config { return o.cfg }

func (o *Orchestrator) Busy() bool { return o.busy }

// Prepare validates op against doc and, on success, marks the orchestrator
// busy. Every successful Prepare must be followed by Complete.
func (o *Orchestrator) Prepare(op Op, doc Document) (Request, error) {
	if o.busy {
		return Request{}, ErrBusy
	}
	if !op.valid() {
		return Request{}, fmt.Errorf("ai: unknown operation %q", op)
	}
	if doc == nil {
		return Request{}, &InputError{Op: op, Message: emptyMessage(op)}
	}

	caret := doc.CaretOffset()
	req := Request{Op: op, Caret: caret, From: caret, To: caret}
	if op == OpAutocomplete {
		start := caret - o.cfg.ContextWindow
		if start < 0 {
			start = 0
		}
		req.Text = doc.TextBetween(start, caret)
	} else if from, to, ok := doc.SelectionOffsets(); ok {
		req.From, req.To = from, to
		req.Text = doc.TextBetween(from, to)
	}
	if strings.TrimSpace(req.Text) == "" {
		return Request{}, &InputError{Op: op, Message: emptyMessage(op)}
	}

	o.nextID++
	req.ID = o.nextID
	o.busy = true
	o.inflight = req
	o.from, o.to = req.From, req.To
	o.caret = buffer.NewTracker(caret)
	return req, nil
}

func emptyMessage(op Op) string {
	if op == OpAutocomplete {
		return "Please type some text to use autocomplete"
	}
	return "Please select some text to use AI commands"
}

// Run calls the relay off the update loop. The returned command always
// yields a ResultMsg, including when the relay panics.
func (o *Orchestrator) Run(ctx context.Context, req Request) tea.Cmd {
	relay := o.relay
	log := o.log
	return func() (msg tea.Msg) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				log.Error("ai relay panic", "op", req.Op, "panic", r)
				msg = ResultMsg{Request: req, Err: fmt.Errorf("ai %s: %v", req.Op, r), Elapsed: time.Since(start)}
			}
		}()
		if relay == nil {
			return ResultMsg{Request: req, Err: errors.New("ai: no relay configured")}
		}
		log.Info("ai request", "op", req.Op, "id", req.ID, "in", len(req.Text))
		text, err := relay.Do(ctx, req.Op, req.Text)
		return ResultMsg{Request: req, Text: text, Err: err, Elapsed: time.Since(start)}
	}
}

// Observe follows the captured selection and the caret while a request is
// in flight.
func (o *Orchestrator) Observe(c buffer.Change) {
	if !o.busy {
		return
	}
	o.caret.Update(c)
	if c.DocChanged() {
		o.from = c.MapOffset(o.from, buffer.AssocAfter)
		o.to = c.MapOffset(o.to, buffer.AssocBefore)
	}
}

// Complete applies msg to the document and clears the busy state, whatever
// the result.
func (o *Orchestrator) Complete(msg ResultMsg, doc Document, ghost Ghost) (out Outcome) {
	if !o.busy || msg.Request.ID != o.inflight.ID {
		o.log.Warn("ai result without request", "op", msg.Request.Op, "id", msg.Request.ID)
		return Outcome{Err: ErrNotRunning}
	}
	from, to := o.from, o.to
	anchor, diverged := o.caret.Anchor, o.caret.Diverged()
	o.busy = false
	o.inflight = Request{}

	defer func() {
		if out.Err != nil {
			out.Notice = Notice(out.Err)
			o.log.Warn("ai command failed", "op", msg.Request.Op, "err", out.Err, "elapsed", msg.Elapsed)
			return
		}
		o.log.Info("ai command done", "op", msg.Request.Op, "applied", out.Applied, "elapsed", msg.Elapsed)
	}()

	if msg.Err != nil {
		return Outcome{Err: msg.Err}
	}
	if msg.Text == "" {
		return Outcome{Err: ErrEmptyResult}
	}

	if msg.Request.Op == OpAutocomplete {
		if ghost == nil {
			return Outcome{}
		}
		// A caret that left the mapped anchor discards the suggestion.
		if diverged {
			o.log.Debug("autocomplete dropped", "anchor", anchor, "caret", o.caret.Caret)
			return Outcome{}
		}
		ghost.Set(msg.Text, anchor)
		return Outcome{Applied: true}
	}

	if doc == nil {
		return Outcome{}
	}
	switch o.cfg.Policy {
	case ReplaceCurrent:
		from, to = doc.CaretOffset(), doc.CaretOffset()
		if f, t, ok := doc.SelectionOffsets(); ok {
			from, to = f, t
		}
	default:
		if to < from || doc.TextBetween(from, to) != msg.Request.Text {
			return Outcome{Err: ErrSelectionChanged}
		}
	}

	tx := buffer.Transaction{Edits: []buffer.TextEdit{{Range: doc.Range(from, to), Text: msg.Text}}}
	if _, err := doc.Apply(tx); err != nil {
		return Outcome{Err: fmt.Errorf("ai %s: apply: %w", msg.Request.Op, err)}
	}
	return Outcome{Applied: true}
}

// Notice renders err as the advisory shown in the editor.
func Notice(err error) string {
	var in *InputError
	var relay *RelayError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &in):
		return in.Message
	case errors.Is(err, ErrBusy):
		return "An AI command is already running"
	case errors.Is(err, ErrSelectionChanged):
		return "AI command failed: the selection changed while waiting"
	case errors.As(err, &relay):
		return "AI command failed: " + relay.Message
	case errors.Is(err, ErrEmptyResult):
		return "AI command failed: " + defaultFailure
	}
	return "AI command failed: " + err.Error()
}

package editor

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zenote/zen/ai"
	"github.com/zenote/zen/buffer"
	"github.com/zenote/zen/ghost"
	"github.com/zenote/zen/palette"
	"github.com/zenote/zen/trigger"
)

// Model is a Bubble Tea component that edits one note.
//
// It owns the buffer and wires the trigger detector, the command palette,
// the ghost suggestion and the AI orchestrator to it. The last row of the
// view is a status line.
type Model struct {
	cfg Config
	buf *buffer.Buffer

	focused bool

	viewport viewport.Model
	spinner  spinner.Model

	detector *trigger.Detector
	palette  *palette.Controller
	ghost    *ghost.Controller
	ai       *ai.Orchestrator
	saver    *saver
	code     *codeHighlighter
	lay      *layoutCache

	notice string

	lastBufVersion uint64
	lastCursor     buffer.Pos

	mouseAnchor   buffer.Pos
	mouseDragging bool

	log *slog.Logger
}

func New(cfg Config) Model {
	cfg = normalizeConfig(cfg)
	buf := buffer.NewFromMarkdown(cfg.Markdown, buffer.Options{HistoryLimit: cfg.HistoryLimit})

	m := Model{
		cfg:      cfg,
		buf:      buf,
		focused:  true,
		viewport: viewport.New(0, 0),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		detector: trigger.New(cfg.Palette.Trigger),
		palette:  palette.New(cfg.Palette),
		ghost:    ghost.New(cfg.Ghost),
		ai:       ai.NewOrchestrator(cfg.Relay, cfg.AI),
		saver:    newSaver(cfg, buf),
		code:     newCodeHighlighter(cfg.CodeTheme, cfg.Style.Code),
		lay:      &layoutCache{},
		log:      cfg.Logger,
	}

	buf.Subscribe(m.detector.Observe)
	buf.Subscribe(m.ghost.Observe)
	buf.Subscribe(m.ai.Observe)
	buf.Subscribe(m.saver.Observe)
	if cfg.OnChange != nil {
		onChange := cfg.OnChange
		buf.Subscribe(func(c buffer.Change) {
			if c.ContentChanged() {
				onChange(buildChangeEvent(buf, c))
			}
		})
	}

	m.lastBufVersion = buf.Version()
	m.lastCursor = buf.Cursor()
	m.rebuildContent()
	return m
}

func (m Model) Buffer() *buffer.Buffer { return m.buf }

// Palette exposes the command palette controller, mostly for hosts that
// want to subscribe to its events.
func (m Model) Palette() *palette.Controller { return m.palette }

func (m Model) Ghost() *ghost.Controller { return m.ghost }

// Busy reports whether an AI command is in flight.
func (m Model) Busy() bool { return m.ai.Busy() }

// Notice returns the message shown on the status line.
func (m Model) Notice() string { return m.notice }

func (m Model) Markdown() string { return m.buf.Markdown() }

func (m Model) Init() tea.Cmd { return nil }

// SetSize sets the outer size. One row is kept for the status line.
func (m Model) SetSize(width, height int) Model {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	m.viewport.Width = width
	m.viewport.Height = max(height-1, 0)

	m.rebuildContent()
	m.followCursorWithForce(true)
	m.repositionPalette()
	return m
}

func (m Model) Focus() Model {
	if !m.focused {
		m.focused = true
		m.rebuildContent()
		m.followCursorWithForce(true)
	}
	return m
}

func (m Model) Blur() Model {
	if m.focused {
		m.focused = false
		m.palette.Close(palette.CloseExternal)
		m.detector.Reset()
		m.rebuildContent()
	}
	return m
}

func (m Model) Focused() bool { return m.focused }

// Save writes the document to the store now.
func (m Model) Save() (Model, error) {
	_, err := m.saver.flush(true)
	return m, err
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.updateKey(msg)
		m.afterUpdate()
		return m, cmd
	case tea.MouseMsg:
		var cmd tea.Cmd
		m, cmd = m.updateMouse(msg)
		m.flushSaves()
		m.syncFromBuffer()
		return m, cmd
	case ai.ResultMsg:
		out := m.ai.Complete(msg, m.doc(), m.ghost)
		m.notice = out.Notice
		m.afterUpdate()
		return m, nil
	case spinner.TickMsg:
		if !m.ai.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		// The host may have mutated the buffer directly.
		if m.syncFromBuffer() {
			m.followCursorWithForce(true)
		}
		return m, nil
	}
}

func (m Model) View() string {
	base := m.viewport.View()
	if m.palette.IsOpen() {
		bounds := palette.Size{Width: m.viewport.Width, Height: m.visibleRowCount()}
		base = m.palette.Overlay(base, m.cfg.PaletteStyle, bounds, trigger.Point{})
	}
	return lipgloss.JoinVertical(lipgloss.Left, base, m.statusLine())
}

func (m Model) statusLine() string {
	st := m.cfg.Style
	var s string
	switch {
	case m.ai.Busy():
		s = st.Status.Render(m.spinner.View() + " Thinking…")
	case m.notice != "":
		s = st.Notice.Render(m.notice)
	}
	return lipgloss.NewStyle().MaxWidth(max(m.viewport.Width, 1)).Render(s)
}

// afterUpdate flushes pending saves and redraws after a message that may
// have edited the document.
func (m *Model) afterUpdate() {
	m.flushSaves()
	if m.syncFromBuffer() {
		m.followCursorWithForce(true)
	}
	m.repositionPalette()
}

func (m *Model) flushSaves() {
	if _, err := m.saver.flush(false); err != nil {
		m.notice = "Save failed: " + err.Error()
	}
}

func (m *Model) syncFromBuffer() (cursorChanged bool) {
	if m.buf == nil {
		return false
	}
	ver := m.buf.Version()
	cur := m.buf.Cursor()
	if ver == m.lastBufVersion && cur == m.lastCursor {
		// Ghost text and the focus state are drawn without a version bump.
		m.rebuildContent()
		return false
	}
	cursorChanged = cur != m.lastCursor
	m.lastBufVersion = ver
	m.lastCursor = cur
	m.rebuildContent()
	return cursorChanged
}

func (m *Model) rebuildContent() {
	m.viewport.SetContent(m.renderContent())
}

func (m *Model) followCursorWithForce(force bool) {
	if m.buf == nil {
		return
	}
	h := m.visibleRowCount()
	if h <= 0 {
		return
	}
	visualRow, _, ok := m.ensureLayout().cursorCell(m.buf.Cursor())
	if !ok {
		return
	}

	y := m.viewport.YOffset
	if visualRow < y {
		m.viewport.SetYOffset(visualRow)
		return
	}
	if visualRow >= y+h {
		m.viewport.SetYOffset(visualRow - h + 1)
		return
	}
	if force && y > 0 && len(m.lay.rows)-y < h {
		m.viewport.SetYOffset(max(len(m.lay.rows)-h, 0))
	}
}

// repositionPalette keeps an open palette under its trigger after scrolls
// and resizes.
func (m *Model) repositionPalette() {
	if !m.palette.IsOpen() {
		return
	}
	off, ok := m.detector.Active()
	if !ok {
		off = m.palette.Session().TriggerOffset
	}
	p, ok := m.Coords(off + 1)
	if !ok {
		p, ok = m.Coords(off)
	}
	if !ok {
		return
	}
	p.Top++
	m.palette.Reposition(p)
}

// document adapts the buffer to the interfaces of the trigger, palette,
// ghost and ai packages.
type document struct {
	*buffer.Buffer
	m *Model
}

func (d document) Coords(offset int) (trigger.Point, bool) { return d.m.Coords(offset) }

func (m *Model) doc() document { return document{Buffer: m.buf, m: m} }

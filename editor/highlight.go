package editor

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/zenote/zen/buffer"
	"github.com/zenote/zen/internal/grapheme"
)

// codeHighlighter colors code rows with chroma. Consecutive code rows that
// share a language are tokenised together so multi-line constructs work.
type codeHighlighter struct {
	theme *chroma.Style
	base  lipgloss.Style

	version uint64
	valid   bool
	// rows maps a code row to one style per grapheme cluster.
	rows map[int][]lipgloss.Style
}

func newCodeHighlighter(theme string, base lipgloss.Style) *codeHighlighter {
	st := styles.Get(theme)
	if st == nil {
		st = styles.Fallback
	}
	return &codeHighlighter{theme: st, base: base}
}

// rowStyles returns per-cluster styles for a code row, or nil.
func (h *codeHighlighter) rowStyles(b *buffer.Buffer, row int) []lipgloss.Style {
	if h == nil || b == nil {
		return nil
	}
	if !h.valid || h.version != b.Version() {
		h.rebuild(b)
	}
	return h.rows[row]
}

func (h *codeHighlighter) rebuild(b *buffer.Buffer) {
	h.rows = make(map[int][]lipgloss.Style)
	h.version = b.Version()
	h.valid = true

	n := b.LineCount()
	for row := 0; row < n; {
		blk := b.Block(row)
		if blk.Kind != buffer.BlockCode {
			row++
			continue
		}
		end := row + 1
		for end < n {
			next := b.Block(end)
			if next.Kind != buffer.BlockCode || next.Lang != blk.Lang {
				break
			}
			end++
		}
		h.highlightRun(b, blk.Lang, row, end)
		row = end
	}
}

func (h *codeHighlighter) highlightRun(b *buffer.Buffer, lang string, first, end int) {
	lines := make([]string, 0, end-first)
	for row := first; row < end; row++ {
		lines = append(lines, b.Line(row))
	}
	src := strings.Join(lines, "\n")

	lexer := lexers.Get(lang)
	if lexer == nil && lang == "" {
		lexer = lexers.Analyse(src)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, src)
	if err != nil {
		return
	}

	row := first
	var cur []lipgloss.Style
	flush := func() {
		if row < end {
			h.rows[row] = cur
		}
		cur = nil
		row++
	}
	for tok := it(); tok != chroma.EOF; tok = it() {
		st := h.tokenStyle(tok.Type)
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				flush()
			}
			for range grapheme.Split(part) {
				cur = append(cur, st)
			}
		}
	}
	if cur != nil {
		flush()
	}
}

func (h *codeHighlighter) tokenStyle(t chroma.TokenType) lipgloss.Style {
	e := h.theme.Get(t)
	st := h.base
	if e.Colour.IsSet() {
		st = st.Foreground(lipgloss.Color(e.Colour.String()))
	}
	if e.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if e.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	if e.Underline == chroma.Yes {
		st = st.Underline(true)
	}
	return st
}

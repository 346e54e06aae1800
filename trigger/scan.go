package trigger

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zenote/zen/internal/grapheme"
)

// TextReader is the part of a document FindTrigger reads.
type TextReader interface {
	CaretOffset() int
	TextBetween(from, to int) string
}

// FindTrigger scans backward from the caret for the trigger character. The
// scan stops at the first stop character or after cfg.ScanLimit characters.
func FindTrigger(doc TextReader, cfg Config) (int, bool) {
	if doc == nil {
		return 0, false
	}
	cfg = normalizeConfig(cfg)

	caret := doc.CaretOffset()
	from := max(0, caret-cfg.ScanLimit)
	clusters := grapheme.Split(doc.TextBetween(from, caret))
	trig := string(cfg.Char)

	for i := len(clusters) - 1; i >= 0; i-- {
		c := clusters[i]
		if c == trig {
			return caret - (len(clusters) - i), true
		}
		if strings.ContainsAny(c, cfg.StopChars) {
			return 0, false
		}
	}
	return 0, false
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func isSpace(r rune) bool { return unicode.IsSpace(r) }

// Package grapheme holds the grapheme-cluster and terminal-cell helpers shared
// by the document model and the renderer.
package grapheme

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Split returns grapheme clusters for text in visual order.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	g := uniseg.NewGraphemes(text)
	out := make([]string, 0, len(text))
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Count returns the number of grapheme clusters in text.
func Count(text string) int {
	if text == "" {
		return 0
	}
	return uniseg.GraphemeClusterCount(text)
}

// Join concatenates grapheme clusters into a single string.
func Join(clusters []string) string {
	switch len(clusters) {
	case 0:
		return ""
	case 1:
		return clusters[0]
	}
	return strings.Join(clusters, "")
}

// IsSpace reports whether all runes in cluster are Unicode whitespace.
func IsSpace(cluster string) bool {
	if cluster == "" {
		return false
	}
	for _, r := range cluster {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Width returns the terminal cell width of one cluster drawn at visual
// column col. Tabs advance to the next multiple of tabWidth.
func Width(cluster string, col, tabWidth int) int {
	if cluster == "\t" {
		if tabWidth <= 0 {
			tabWidth = 4
		}
		return tabWidth - col%tabWidth
	}

	w := runewidth.StringWidth(cluster)
	if w <= 0 {
		w = uniseg.StringWidth(cluster)
	}
	if w < 0 {
		w = 0
	}
	return w
}

// StringWidth returns the cell width of text with no tab expansion.
func StringWidth(text string) int {
	n := 0
	for _, c := range Split(text) {
		n += Width(c, n, 1)
	}
	return n
}

// Truncate cuts text to at most width cells, appending tail when it cuts.
func Truncate(text string, width int, tail string) string {
	if width <= 0 {
		return ""
	}
	if StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, tail)
}

// Package buffer implements the document model for zen notes: rows of
// grapheme clusters with one structural block per row, a cursor, a
// selection, undo history and Markdown conversion.
//
// Positions are 0-based (Row, GraphemeCol). Offsets address the document as
// a flat sequence of grapheme clusters in which every row break counts as
// one position. Every effective mutation, including caret moves, produces
// exactly one Change that observers receive synchronously.
package buffer

// Package editor provides the Bubble Tea note editor component.
//
// The Model owns a buffer and routes each key through the slash-command
// trigger, the command palette, the ghost suggestion and the AI bindings
// before it reaches the document. It renders rich-text blocks with
// grapheme-aware wrapping, highlights code rows with chroma, and writes the
// note back to a Store as Markdown.
package editor

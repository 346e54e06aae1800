package palette

import "github.com/zenote/zen/trigger"

// Size is a width and height in terminal cells.
type Size struct {
	Width  int
	Height int
}

// Place keeps a box of the given size inside bounds. A box that would
// overflow the right edge is pulled left by its own width plus padding; one
// that would overflow the bottom flips above the anchor. Neither coordinate
// goes below zero.
func Place(anchor trigger.Point, box, bounds Size, padding int) trigger.Point {
	p := anchor
	if bounds.Width > 0 && p.Left+box.Width > bounds.Width {
		p.Left = bounds.Width - box.Width - padding
	}
	if bounds.Height > 0 && p.Top+box.Height > bounds.Height {
		p.Top = anchor.Top - box.Height - padding
	}
	if p.Left < 0 {
		p.Left = 0
	}
	if p.Top < 0 {
		p.Top = 0
	}
	return p
}

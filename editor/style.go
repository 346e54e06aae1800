package editor

import "github.com/charmbracelet/lipgloss"

// Style controls the editor's rendering.
type Style struct {
	Text      lipgloss.Style
	Selection lipgloss.Style
	Cursor    lipgloss.Style
	Ghost     lipgloss.Style

	// Block prefixes and bodies.
	Heading    [6]lipgloss.Style
	Quote      lipgloss.Style
	ListMarker lipgloss.Style
	TaskDone   lipgloss.Style
	CodeGutter lipgloss.Style
	Code       lipgloss.Style

	// Inline marks, layered over the block body.
	Strong     lipgloss.Style
	Emphasis   lipgloss.Style
	Strike     lipgloss.Style
	InlineCode lipgloss.Style

	Status lipgloss.Style
	Notice lipgloss.Style
}

func DefaultStyle() Style {
	heading := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	return Style{
		Text:      lipgloss.NewStyle(),
		Selection: lipgloss.NewStyle().Background(lipgloss.Color("237")),
		Cursor:    lipgloss.NewStyle().Reverse(true),
		Ghost:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),

		Heading: [6]lipgloss.Style{
			heading.Underline(true),
			heading,
			heading.Foreground(lipgloss.Color("183")),
			heading.Foreground(lipgloss.Color("183")).Bold(false),
			heading.Foreground(lipgloss.Color("250")),
			heading.Foreground(lipgloss.Color("245")).Bold(false),
		},
		Quote:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		ListMarker: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		TaskDone:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Strikethrough(true),
		CodeGutter: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Code:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),

		Strong:     lipgloss.NewStyle().Bold(true),
		Emphasis:   lipgloss.NewStyle().Italic(true),
		Strike:     lipgloss.NewStyle().Strikethrough(true),
		InlineCode: lipgloss.NewStyle().Foreground(lipgloss.Color("180")).Background(lipgloss.Color("236")),

		Status: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Notice: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zenote/zen/editor"
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

// app hosts one editor and the note title above it.
type app struct {
	title  string
	editor editor.Model
	err    error
}

func newApp(title string, ed editor.Model) app {
	return app{title: title, editor: ed}
}

func (a app) Init() tea.Cmd { return a.editor.Init() }

func (a app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.editor = a.editor.SetSize(msg.Width, msg.Height-1)
		return a, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+q" || msg.String() == "ctrl+c" {
			ed, err := a.editor.Save()
			a.editor = ed
			if err != nil {
				a.err = fmt.Errorf("save on quit: %w", err)
			}
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(msg)
	return a, cmd
}

func (a app) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(a.title), a.editor.View())
}

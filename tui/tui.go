package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Start launches the TUI and blocks until the user quits.
func Start(opts Options) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package ui

import tea "github.com/charmbracelet/bubbletea"

// NewProgram wraps Model in a bubbletea Program configured for full-screen,
// mouse-wheel-aware rendering (spec §4.10).
func NewProgram(m *Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
}

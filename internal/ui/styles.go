package ui

import "github.com/charmbracelet/lipgloss"

// Centralized lipgloss styles for CLI output.
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(lipgloss.Color("63")).
			Bold(true).
			Padding(0, 1)

	goodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// Header renders a section header line.
func Header(text string) string {
	return headerStyle.Render(text)
}

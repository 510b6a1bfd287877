package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	gridStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	statusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("82"))

	statusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	metricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	metricValue = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	keyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Italic(true)
)

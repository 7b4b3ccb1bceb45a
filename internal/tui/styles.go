package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("141")
	colorText   = lipgloss.Color("252")
	colorMuted  = lipgloss.Color("245")
	colorError  = lipgloss.Color("196")
	colorOK     = lipgloss.Color("42")

	titleStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Underline(true)

	textStyle = lipgloss.NewStyle().Foreground(colorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(colorAccent).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().Foreground(colorOK)

	chipStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	userStyle      = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(colorText)
	statusStyle    = lipgloss.NewStyle().Foreground(colorError)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)

package tui

import "github.com/charmbracelet/lipgloss"

// Colors of the wire animation on the web page.
var (
	Blue  = lipgloss.Color("#4285F4")
	Green = lipgloss.Color("#34A853")
	White = lipgloss.Color("#FFFFFF")
	Muted = lipgloss.Color("#6B7280")
	Red   = lipgloss.Color("#EF4444")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(White).
			Background(Blue).
			Padding(0, 1)

	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(Green)
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(Blue)
	errorReplyStyle     = lipgloss.NewStyle().Foreground(Red)
	hintStyle           = lipgloss.NewStyle().Foreground(Muted)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Blue).
			Padding(0, 1)
)

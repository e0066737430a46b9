package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Layout constants
const (
	minTextareaHeight = 3
	maxTextareaHeight = 10
	minViewportHeight = 1
	sidebarWidth      = 32
	headerHeight      = 2
	inputBorderHeight = 2
)

// Color palette
var (
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	accentColor  = lipgloss.Color("#06B6D4") // Cyan
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
	textColor    = lipgloss.Color("#F9FAFB") // Light gray
	dimTextColor = lipgloss.Color("#9CA3AF") // Dim gray
	borderColor  = lipgloss.Color("#4B5563")
	activeColor  = lipgloss.Color("#10B981") // Green
)

var (
	titleStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(textColor).
			Bold(true).
			Padding(0, 1)

	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(borderColor).
			PaddingRight(1)

	sidebarHeaderStyle = lipgloss.NewStyle().
				Foreground(accentColor).
				Bold(true)

	workspaceStyle = lipgloss.NewStyle().
			Foreground(dimTextColor)

	workspaceActiveStyle = lipgloss.NewStyle().
				Foreground(accentColor).
				Bold(true)

	chatItemStyle = lipgloss.NewStyle().
			Foreground(dimTextColor).
			PaddingLeft(2)

	chatActiveStyle = lipgloss.NewStyle().
			Foreground(activeColor).
			Bold(true).
			PaddingLeft(1)

	chatCursorStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(borderColor).
			PaddingLeft(2)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(accentColor).
				PaddingLeft(1).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(accentColor)

	modelMessageStyle = lipgloss.NewStyle().
				Foreground(textColor)

	errorMessageStyle = lipgloss.NewStyle().
				Foreground(errorColor)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	textAreaStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	searchStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette, taken from Claude Code's own terminal theme.
var (
	colorClaude   = lipgloss.Color("#D97757")
	colorGreen    = lipgloss.Color("#2c7a39")
	colorAmber    = lipgloss.Color("#966c1e")
	colorRed      = lipgloss.Color("#ff6b6b")
	colorGray     = lipgloss.Color("#666666")
	colorDarkGray = lipgloss.Color("#9aa4b2")
)

// Styles holds all the lipgloss styles for the menu and CLI output.
type Styles struct {
	// Header box
	Header      lipgloss.Style
	Star        lipgloss.Style
	Muted       lipgloss.Style
	Current     lipgloss.Style
	NoneCurrent lipgloss.Style

	// Menu box
	Menu         lipgloss.Style
	Item         lipgloss.Style
	SelectedItem lipgloss.Style
	Active       lipgloss.Style
	Hint         lipgloss.Style
	Help         lipgloss.Style

	// Result messages
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorClaude).
			Padding(1).
			Width(64),

		Star: lipgloss.NewStyle().
			Foreground(colorClaude),

		Muted: lipgloss.NewStyle().
			Foreground(colorGray),

		Current: lipgloss.NewStyle().
			Foreground(colorGreen),

		NoneCurrent: lipgloss.NewStyle().
			Foreground(colorAmber),

		Menu: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDarkGray).
			Padding(1),

		Item: lipgloss.NewStyle().
			PaddingLeft(2),

		SelectedItem: lipgloss.NewStyle().
			Foreground(colorClaude).
			Bold(true),

		Active: lipgloss.NewStyle().
			Foreground(colorGreen),

		Hint: lipgloss.NewStyle().
			Foreground(colorAmber).
			Bold(true),

		Help: lipgloss.NewStyle().
			PaddingLeft(2),

		Success: lipgloss.NewStyle().
			Foreground(colorGreen),

		Warning: lipgloss.NewStyle().
			Foreground(colorClaude),

		Error: lipgloss.NewStyle().
			Foreground(colorRed),
	}
}

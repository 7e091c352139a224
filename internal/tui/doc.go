// Package tui renders the account selection menu.
//
// The menu knows nothing about ~/.claude.json: it is handed a Menu of
// labelled entries and returns the Choice the user made. This package uses
// Bubble Tea and Lipgloss from Charm.
package tui

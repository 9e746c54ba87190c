// Package ui holds the terminal styles prpflow uses for human-facing output.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	ColorSubtle  = lipgloss.Color("241") // Gray
	ColorSuccess = lipgloss.Color("42")  // Green
	ColorWarning = lipgloss.Color("214") // Orange/Yellow
	ColorError   = lipgloss.Color("160") // Red
	ColorValue   = lipgloss.Color("75")  // Blue

	StyleKey     = lipgloss.NewStyle().Foreground(ColorSubtle)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue)
	StyleFound   = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleMissing = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
)

// KeyValue renders a step output line as key=value with a dimmed key.
func KeyValue(key, value string, valueStyle lipgloss.Style) string {
	return StyleKey.Render(key+"=") + valueStyle.Render(value)
}

// BoolStyle picks the style for a "true"/"false" flag value.
func BoolStyle(value string) lipgloss.Style {
	if value == "true" {
		return StyleFound
	}
	return StyleMissing
}

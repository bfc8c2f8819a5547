// Package ui provides the terminal styling for tapnode's client-side
// commands.
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette for command output
var (
	SuccessColor = lipgloss.Color("#43BF6D") // Green - healthy state
	ErrorColor   = lipgloss.Color("#FF5555") // Red - unreachable, faults
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Shared styles for status output
var (
	// TitleStyle is for the report heading
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// KeyStyle is for field names (e.g. "Node:")
	KeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(2).
			Width(12)

	// ValueStyle is for field values
	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// OnStyle marks the LED as lit
	OnStyle = lipgloss.NewStyle().
		Foreground(SuccessColor).
		Bold(true)

	// OffStyle marks the LED as dark
	OffStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// ErrorStyle is for failure lines
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)
)

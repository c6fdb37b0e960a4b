// Package tui provides the interactive terminal UI for moodlog.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#FF8B7B") // Orange - titles
	ColorPeach     = lipgloss.Color("#FFB4A2") // Peach - focus
	ColorSecondary = lipgloss.Color("#C7B8FF") // Purple - current view
	ColorLavender  = lipgloss.Color("#E5DEFF") // Lavender - section headers
	ColorMuted     = lipgloss.Color("#8A8398") // Gray - help text
	ColorSuccess   = lipgloss.Color("#6BCF7F") // Green - healthy
	ColorError     = lipgloss.Color("#FF6B6B") // Red - unhealthy
	ColorText      = lipgloss.Color("#F5F0FF")
	ColorBg        = lipgloss.Color("#1E1B29")
	ColorBgAlt     = lipgloss.Color("#2E2A3B")
	ColorBorder    = lipgloss.Color("#4A4360")
)

// Sidebar styles
var (
	SidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderRight(true).
			BorderForeground(ColorBorder).
			Padding(1, 1)

	SidebarTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary).
				Background(ColorBg).
				Padding(0, 1).
				MarginBottom(1)

	SidebarItemStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Padding(0, 1)

	SidebarItemActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPeach).
				Background(ColorBgAlt).
				Padding(0, 1)

	SidebarHelpStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				MarginTop(1).
				Padding(0, 1)

	HealthOKStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Padding(0, 1)

	HealthErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Padding(0, 1)

	HealthUnknownStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Padding(0, 1)
)

// Help overlay styles
var (
	HelpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	HelpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorLavender).
				MarginTop(1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorPeach).
			Width(12)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	HelpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(1, 2).
			Width(54)
)

// Content area style
var ContentStyle = lipgloss.NewStyle().
	Padding(1, 2)

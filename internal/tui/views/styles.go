// Package views provides the individual views for the unified TUI.
package views

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/f3rmion/moodlog/internal/normalize"
	"github.com/mattn/go-runewidth"
)

// Palette
var (
	colorPeach    = lipgloss.Color("#FFB4A2")
	colorOrange   = lipgloss.Color("#FF8B7B")
	colorLavender = lipgloss.Color("#E5DEFF")
	colorPurple   = lipgloss.Color("#C7B8FF")
	colorMuted    = lipgloss.Color("#8A8398")
	colorText     = lipgloss.Color("#F5F0FF")
	colorBgAlt    = lipgloss.Color("#2E2A3B")
	colorBorder   = lipgloss.Color("#4A4360")

	colorPositive = lipgloss.Color("#6BCF7F")
	colorNeutral  = lipgloss.Color("#FFD93D")
	colorNegative = lipgloss.Color("#FF6B6B")
)

// moodColors maps an emotion label to its ring color; anything else is
// drawn as Neutral.
var moodColors = map[string]lipgloss.Color{
	"Joy":     "#FFD93D",
	"Happy":   "#FFD93D",
	"Peace":   "#6BCF7F",
	"Calm":    "#6BCF7F",
	"Love":    "#FF6B9D",
	"Excited": "#FF6B9D",
	"Anxiety": "#FF8B7B",
	"Worried": "#FF8B7B",
	"Sadness": "#7B9BFF",
	"Sad":     "#7B9BFF",
	"Neutral": "#C7B8FF",
}

// MoodColor returns the color for an emotion label.
func MoodColor(label string) lipgloss.Color {
	if c, ok := moodColors[label]; ok {
		return c
	}
	return moodColors["Neutral"]
}

// ToneColor returns the color for a score bucket.
func ToneColor(t normalize.Tone) lipgloss.Color {
	switch t {
	case normalize.TonePositive:
		return colorPositive
	case normalize.ToneNegative:
		return colorNegative
	}
	return colorNeutral
}

// themeGradients are the bar gradients per color tag.
var themeGradients = map[journal.ColorTag][2]string{
	journal.ColorPrimary:   {"#FFB4A2", "#FF8B7B"},
	journal.ColorSecondary: {"#E5DEFF", "#C7B8FF"},
	journal.ColorPeace:     {"#6BCF7F", "#4CAF50"},
}

func themeGradient(tag journal.ColorTag) (string, string) {
	g, ok := themeGradients[tag]
	if !ok {
		g = themeGradients[journal.ColorPrimary]
	}
	return g[0], g[1]
}

// Shared styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorOrange).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorPurple)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorLavender).
			Bold(true).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorNegative).
			Bold(true)

	copiedStyle = lipgloss.NewStyle().
			Foreground(colorPositive).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2)

	tabStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 2)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPeach).
			Background(colorBgAlt).
			Padding(0, 2)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPeach).
			Background(colorBgAlt)

	dividerStyle = lipgloss.NewStyle().
			Foreground(colorBorder)
)

func divider(width int) string {
	return dividerStyle.Render(strings.Repeat("─", max(min(width-4, 60), 10)))
}

type clearStatusMsg struct{ gen int }

func clearStatusAfter(gen int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{gen: gen}
	})
}

func wordWrap(s string, width int) string {
	if width <= 0 {
		width = 60
	}
	var lines []string
	var line strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(s) {
		w := runewidth.StringWidth(word)
		if lineWidth+w+1 > width && lineWidth > 0 {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			line.WriteString(" ")
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += w
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

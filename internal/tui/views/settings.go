package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/moodlog/internal/config"
)

var (
	settingsPathStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Italic(true).
				MarginBottom(1)

	settingsHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorLavender)
)

var settingsTabs = []string{"Backend", "Analysis", "Storage"}

// SettingsModel shows the effective configuration.
type SettingsModel struct {
	config     *config.Config
	configPath string

	tab int

	width  int
	height int
}

// NewSettingsModel creates a new settings model.
func NewSettingsModel(cfg *config.Config, configPath string) SettingsModel {
	return SettingsModel{config: cfg, configPath: configPath}
}

// SetConfig shows a reloaded configuration.
func (m *SettingsModel) SetConfig(cfg *config.Config) {
	m.config = cfg
}

// SetSize updates the view dimensions.
func (m *SettingsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Tab returns the index of the shown tab.
func (m SettingsModel) Tab() int {
	return m.tab
}

// Update handles messages.
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "right", "l":
			m.tab = (m.tab + 1) % len(settingsTabs)
		case "left", "h":
			m.tab = (m.tab - 1 + len(settingsTabs)) % len(settingsTabs)
		}
	}
	return m, nil
}

// View renders the settings view.
func (m SettingsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("moodlog Configuration"))
	b.WriteString("\n")
	b.WriteString(settingsPathStyle.Render("Config: " + m.configPath))
	b.WriteString("\n")

	tabs := make([]string, 0, len(settingsTabs))
	for i, t := range settingsTabs {
		style := tabStyle
		if i == m.tab {
			style = tabActiveStyle
		}
		tabs = append(tabs, style.Render(t))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")
	b.WriteString(divider(m.width))
	b.WriteString("\n\n")

	if m.config == nil {
		b.WriteString(mutedStyle.Render("No configuration loaded"))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Run 'moodlog init' to create a config file"))
		return b.String()
	}

	for _, row := range m.rows() {
		if row[1] == "" {
			b.WriteString(settingsHeaderStyle.Render(row[0]))
		} else {
			b.WriteString(labelStyle.Render(row[0]) + valueStyle.Render(row[1]))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("←/→: switch tabs • edits to the config file show up here; backend changes apply after restart"))
	return b.String()
}

func (m SettingsModel) rows() [][2]string {
	c := m.config
	switch m.tab {
	case 0:
		rpm := "unlimited"
		if c.Backend.RequestsPerMinute > 0 {
			rpm = fmt.Sprintf("%d per minute", c.Backend.RequestsPerMinute)
		}
		return [][2]string{
			{"Base URL", c.Backend.BaseURL},
			{"Timeout", c.Backend.Timeout.String()},
			{"Rate limit", rpm},
			{"Health interval", c.Health.Interval.String()},
		}
	case 1:
		platforms := make([]string, 0, 3)
		for _, p := range c.Platforms() {
			platforms = append(platforms, string(p))
		}
		return [][2]string{
			{"Articles", fmt.Sprintf("%d", c.ArticleCount())},
			{"Platforms", strings.Join(platforms, ", ")},
		}
	default:
		hist := "disabled"
		if c.History.Enabled {
			hist = c.History.Path
		}
		logFile := c.Log.File
		if logFile == "" {
			logFile = "disabled"
		}
		metrics := c.Metrics.Addr
		if metrics == "" {
			metrics = "disabled"
		}
		return [][2]string{
			{"History", hist},
			{"Log file", logFile},
			{"Log level", c.Log.Level + " (" + c.Log.Format + ")"},
			{"Metrics", metrics},
		}
	}
}

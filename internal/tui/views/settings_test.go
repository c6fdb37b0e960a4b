package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/moodlog/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestSettingsTabs(t *testing.T) {
	cfg := config.Default("/tmp/moodlog")
	m := NewSettingsModel(cfg, "/tmp/moodlog/config.yaml")
	m.SetSize(90, 30)

	view := m.View()
	assert.Contains(t, view, "Config: /tmp/moodlog/config.yaml")
	assert.Contains(t, view, "http://localhost:8000")
	assert.Contains(t, view, "20 per minute")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.Tab())
	assert.Contains(t, m.View(), "tiktok, instagram, twitter")

	m, _ = m.Update(runes("l"))
	assert.Equal(t, 2, m.Tab())
	assert.Contains(t, m.View(), "/tmp/moodlog/history.db")

	m, _ = m.Update(runes("l"))
	assert.Equal(t, 0, m.Tab())
	m, _ = m.Update(runes("h"))
	assert.Equal(t, 2, m.Tab())
}

func TestSettingsWithoutConfig(t *testing.T) {
	m := NewSettingsModel(nil, "")
	assert.Contains(t, m.View(), "moodlog init")
}

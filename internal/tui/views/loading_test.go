package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadingStepsAdvanceAndWrap(t *testing.T) {
	m := NewLoadingModel()
	m.SetSize(80, 30)
	require.NotNil(t, m.Start("a calm walk"))
	assert.Equal(t, 0, m.Step())

	for i := 1; i <= len(LoadingSteps); i++ {
		var cmd tea.Cmd
		m, cmd = m.Update(loadingStepMsg{gen: m.gen})
		assert.NotNil(t, cmd)
		assert.Equal(t, i%len(LoadingSteps), m.Step())
	}
}

func TestLoadingIgnoresStaleTicks(t *testing.T) {
	m := NewLoadingModel()
	m.Start("first")
	old := m.gen
	m.Start("second")

	m, cmd := m.Update(loadingStepMsg{gen: old})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.Step())
}

func TestLoadingView(t *testing.T) {
	m := NewLoadingModel()
	m.SetSize(80, 30)
	m.Start("a calm walk")
	m, _ = m.Update(loadingStepMsg{gen: m.gen})

	view := m.View()
	assert.Contains(t, view, "Analyzing Your Reflection")
	for _, s := range LoadingSteps {
		assert.Contains(t, view, s.Name)
	}
	assert.Contains(t, view, "✓")
	assert.Contains(t, view, "esc: cancel")
}

package views

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(entries []FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestFilePickerShowsDirsAndImages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "trips"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".cache"), 0755))
	for _, name := range []string{"b.PNG", "a.jpg", "notes.txt", ".hidden.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	m := NewFilePickerModel(dir)
	assert.Equal(t, []string{"..", "trips", "a.jpg", "b.PNG"}, names(m.Entries()))
	assert.Equal(t, dir, m.Dir())
}

func TestFilePickerNavigation(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "trips")
	require.NoError(t, os.Mkdir(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "beach.webp"), []byte("x"), 0644))

	m := NewFilePickerModel(dir)
	m.SetSize(80, 30)

	m, _ = m.Update(runes("j"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, sub, m.Dir())

	m, _ = m.Update(runes("G"))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, FileSelectedMsg{Path: filepath.Join(sub, "beach.webp")}, cmd())

	m, _ = m.Update(runes("h"))
	assert.Equal(t, dir, m.Dir())
}

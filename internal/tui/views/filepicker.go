package views

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/moodlog/internal/collector"
)

// FileSelectedMsg is sent when a file is selected
type FileSelectedMsg struct {
	Path string
}

var (
	fpPathStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	fpDirStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	fpFileStyle = lipgloss.NewStyle().
			Foreground(colorText)
)

// FileEntry represents a file or directory
type FileEntry struct {
	Name  string
	IsDir bool
	Path  string
	Size  int64
}

// FilePickerModel browses the filesystem for images.
type FilePickerModel struct {
	currentDir string
	entries    []FileEntry
	selected   int
	offset     int

	err error

	width  int
	height int
}

// NewFilePickerModel creates a picker rooted at dir, or at the user's
// Pictures or home directory when dir is empty.
func NewFilePickerModel(dir string) FilePickerModel {
	if dir == "" {
		dir = defaultPickerDir()
	}
	m := FilePickerModel{currentDir: dir}
	m.loadDir()
	return m
}

func defaultPickerDir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
		return "/"
	}
	pictures := filepath.Join(home, "Pictures")
	if fi, err := os.Stat(pictures); err == nil && fi.IsDir() {
		return pictures
	}
	return home
}

// SetSize updates the view dimensions.
func (m *FilePickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Dir returns the directory being browsed.
func (m FilePickerModel) Dir() string {
	return m.currentDir
}

// Entries returns the visible entries.
func (m FilePickerModel) Entries() []FileEntry {
	return m.entries
}

func (m *FilePickerModel) loadDir() {
	m.entries = nil
	m.selected = 0
	m.offset = 0
	m.err = nil

	entries, err := os.ReadDir(m.currentDir)
	if err != nil {
		m.err = err
		return
	}

	if parent := filepath.Dir(m.currentDir); parent != m.currentDir {
		m.entries = append(m.entries, FileEntry{Name: "..", IsDir: true, Path: parent})
	}

	var dirs, files []FileEntry
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		fe := FileEntry{
			Name:  entry.Name(),
			IsDir: entry.IsDir(),
			Path:  filepath.Join(m.currentDir, entry.Name()),
		}
		if entry.IsDir() {
			dirs = append(dirs, fe)
			continue
		}
		if !collector.IsImageFile(entry.Name()) {
			continue
		}
		if info, err := entry.Info(); err == nil {
			fe.Size = info.Size()
		}
		files = append(files, fe)
	}

	sort.Slice(dirs, func(i, j int) bool {
		return strings.ToLower(dirs[i].Name) < strings.ToLower(dirs[j].Name)
	})
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i].Name) < strings.ToLower(files[j].Name)
	})

	m.entries = append(m.entries, dirs...)
	m.entries = append(m.entries, files...)
}

// Update handles messages.
func (m FilePickerModel) Update(msg tea.Msg) (FilePickerModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "j", "down":
		if m.selected < len(m.entries)-1 {
			m.selected++
			m.adjustScroll()
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
			m.adjustScroll()
		}
	case "enter", "l", "right":
		if m.selected < len(m.entries) {
			entry := m.entries[m.selected]
			if entry.IsDir {
				m.currentDir = entry.Path
				m.loadDir()
				return m, nil
			}
			return m, func() tea.Msg {
				return FileSelectedMsg{Path: entry.Path}
			}
		}
	case "backspace", "h", "left":
		if parent := filepath.Dir(m.currentDir); parent != m.currentDir {
			m.currentDir = parent
			m.loadDir()
		}
	case "~":
		if home, _ := os.UserHomeDir(); home != "" {
			m.currentDir = home
			m.loadDir()
		}
	case "g":
		m.selected = 0
		m.offset = 0
	case "G":
		m.selected = max(len(m.entries)-1, 0)
		m.adjustScroll()
	case "ctrl+d":
		m.selected = min(m.selected+m.visibleHeight()/2, max(len(m.entries)-1, 0))
		m.adjustScroll()
	case "ctrl+u":
		m.selected = max(m.selected-m.visibleHeight()/2, 0)
		m.adjustScroll()
	}
	return m, nil
}

func (m *FilePickerModel) visibleHeight() int {
	return max(m.height-16, 5)
}

func (m *FilePickerModel) adjustScroll() {
	h := m.visibleHeight()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+h {
		m.offset = m.selected - h + 1
	}
}

// View renders the file picker.
func (m FilePickerModel) View() string {
	var b strings.Builder

	b.WriteString(fpPathStyle.Render(m.currentDir))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(divider(m.width))
	b.WriteString("\n")

	if len(m.entries) == 0 {
		b.WriteString(mutedStyle.Render("  (no images found)"))
		b.WriteString("\n")
	}

	end := min(m.offset+m.visibleHeight(), len(m.entries))
	for i := m.offset; i < end; i++ {
		entry := m.entries[i]

		line := "[DIR]  " + entry.Name
		if !entry.IsDir {
			line = fmt.Sprintf("[IMG]  %s  %s", entry.Name, collector.FormatSize(entry.Size))
		}

		style := fpFileStyle
		switch {
		case i == m.selected:
			style = selectedStyle
		case entry.IsDir:
			style = fpDirStyle
		}

		prefix := "  "
		if i == m.selected {
			prefix = "> "
		}
		b.WriteString(prefix + style.Render(line) + "\n")
	}

	if len(m.entries) > m.visibleHeight() {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  ↕ %d-%d of %d", m.offset+1, end, len(m.entries))))
		b.WriteString("\n")
	}
	b.WriteString(divider(m.width))
	return b.String()
}

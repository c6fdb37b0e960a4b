package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/moodlog/internal/collector"
	"github.com/f3rmion/moodlog/internal/history"
)

// HistoryStore is the part of the history store the view needs.
type HistoryStore interface {
	List(ctx context.Context, limit int) ([]history.Entry, error)
	Delete(ctx context.Context, id string) error
}

// OpenEntryMsg asks the app to show a stored reflection.
type OpenEntryMsg struct {
	Entry history.Entry
}

type historyLoadedMsg struct {
	entries []history.Entry
	err     error
}

type historyDeletedMsg struct {
	id  string
	err error
}

// historyLimit caps how many reflections the view loads.
const historyLimit = 200

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	cardSelectedStyle = cardStyle.
				BorderForeground(colorPeach)

	cardDateStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText)
)

// HistoryModel lists saved reflections.
type HistoryModel struct {
	store   HistoryStore
	entries []history.Entry
	loaded  bool
	err     error

	selected int
	offset   int

	width  int
	height int
}

// NewHistoryModel creates the history view. A nil store means history
// is disabled.
func NewHistoryModel(store HistoryStore) HistoryModel {
	return HistoryModel{store: store}
}

// SetSize updates the view dimensions.
func (m *HistoryModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Entries returns the loaded reflections.
func (m HistoryModel) Entries() []history.Entry {
	return m.entries
}

// Load reads the reflections from the store.
func (m HistoryModel) Load() tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		entries, err := store.List(ctx, historyLimit)
		return historyLoadedMsg{entries: entries, err: err}
	}
}

func (m HistoryModel) delete(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return historyDeletedMsg{id: id, err: store.Delete(ctx, id)}
	}
}

// Update handles messages.
func (m HistoryModel) Update(msg tea.Msg) (HistoryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.loaded = true
		m.err = msg.err
		m.entries = msg.entries
		m.selected = min(m.selected, max(len(m.entries)-1, 0))
		m.adjustScroll()
		return m, nil

	case historyDeletedMsg:
		if msg.err != nil && !errors.Is(msg.err, history.ErrNotFound) {
			m.err = msg.err
			return m, nil
		}
		return m, m.Load()

	case tea.KeyMsg:
		if m.store == nil {
			return m, nil
		}
		switch msg.String() {
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
		case "enter":
			if m.selected < len(m.entries) {
				e := m.entries[m.selected]
				return m, func() tea.Msg { return OpenEntryMsg{Entry: e} }
			}
		case "x", "delete":
			if m.selected < len(m.entries) {
				return m, m.delete(m.entries[m.selected].ID)
			}
		case "R":
			return m, m.Load()
		}
	}
	return m, nil
}

// cardHeight is the rendered height of one reflection card.
const cardHeight = 5

func (m *HistoryModel) visibleCards() int {
	return max((m.height-6)/cardHeight, 1)
}

func (m *HistoryModel) adjustScroll() {
	n := m.visibleCards()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+n {
		m.offset = m.selected - n + 1
	}
}

// View renders the history view.
func (m HistoryModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Your Reflections"))
	b.WriteString("\n")

	switch {
	case m.store == nil:
		b.WriteString(mutedStyle.Render("History is disabled. Set history.enabled in the config to keep reflections."))
		return b.String()
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	case !m.loaded:
		b.WriteString(mutedStyle.Render("Loading..."))
		return b.String()
	case len(m.entries) == 0:
		b.WriteString(mutedStyle.Render("No reflections yet. Analyze one and it will show up here."))
		return b.String()
	}

	end := min(m.offset+m.visibleCards(), len(m.entries))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderCard(m.entries[i], i == m.selected))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d of %d", m.selected+1, len(m.entries))))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: open • x: delete • R: reload • j/k: move"))
	return b.String()
}

func (m HistoryModel) renderCard(e history.Entry, selected bool) string {
	width := max(min(m.width-4, 72), 30)

	header := cardDateStyle.Render(e.CreatedAt.Format("Jan 2")) + "  " +
		lipgloss.NewStyle().Bold(true).Foreground(MoodColor(e.Label)).Render(e.Label) +
		mutedStyle.Render(fmt.Sprintf("  %d/100", e.MoodScore))

	title := collector.Excerpt(e.Topic, width-4)
	excerpt := collector.Excerpt(e.Excerpt, 120)

	content := header + "\n" + cardTitleStyle.Render(title) + "\n" + mutedStyle.Render(excerpt)

	style := cardStyle
	if selected {
		style = cardSelectedStyle
	}
	return style.Width(width).Render(content)
}

package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/moodlog/internal/collector"
	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/f3rmion/moodlog/internal/tui/preview"
)

// SubmitMsg asks the app to analyze a request.
type SubmitMsg struct {
	Request journal.AnalysisRequest
	Excerpt string
}

var journalTabs = []struct {
	Label string
	Mode  journal.InputMode
}{
	{"Write", journal.ModeText},
	{"Image", journal.ModeImage},
	{"Social Post", journal.ModeSocial},
}

var (
	counterStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	imageCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPeach).
			Padding(0, 1)
)

// JournalModel is the entry view with one tab per input mode.
type JournalModel struct {
	collector *collector.Collector
	textarea  textarea.Model
	urlInput  textinput.Model
	picker    FilePickerModel

	articleCount int
	platforms    []journal.Platform

	focused  bool
	preview  string
	imageErr string
	notice   string

	width  int
	height int
}

// NewJournalModel creates the entry view. articleCount and platforms are
// sent with every request.
func NewJournalModel(articleCount int, platforms []journal.Platform) JournalModel {
	ta := textarea.New()
	ta.Placeholder = "How are you feeling today? Write freely..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 5000

	ti := textinput.New()
	ti.Placeholder = collector.ExampleURLs[0]
	ti.CharLimit = 500

	m := JournalModel{
		collector:    collector.New(),
		textarea:     ta,
		urlInput:     ti,
		picker:       NewFilePickerModel(""),
		articleCount: articleCount,
		platforms:    platforms,
	}
	m.setMode(journal.ModeText)
	return m
}

// SetSize updates the view dimensions.
func (m *JournalModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.textarea.SetWidth(max(width-4, 20))
	m.textarea.SetHeight(max(height-14, 4))
	m.urlInput.Width = max(width-8, 20)
	m.picker.SetSize(width, height)
}

// SetDefaults changes the article count and platforms of later requests.
func (m *JournalModel) SetDefaults(articleCount int, platforms []journal.Platform) {
	m.articleCount = articleCount
	m.platforms = platforms
}

// Collector exposes the drafts.
func (m JournalModel) Collector() *collector.Collector {
	return m.collector
}

// Typing reports whether a text input has focus and wants every key.
func (m JournalModel) Typing() bool {
	return m.focused && m.collector.Mode() != journal.ModeImage
}

// Reset clears every draft and returns to the Write tab.
func (m *JournalModel) Reset() tea.Cmd {
	m.collector.Reset()
	m.textarea.Reset()
	m.urlInput.SetValue("")
	m.preview = ""
	m.imageErr = ""
	m.notice = ""
	return m.setMode(journal.ModeText)
}

func (m *JournalModel) setMode(mode journal.InputMode) tea.Cmd {
	m.collector.SetMode(mode)
	m.notice = ""
	m.textarea.Blur()
	m.urlInput.Blur()
	m.focused = false

	switch mode {
	case journal.ModeText:
		m.focused = true
		return m.textarea.Focus()
	case journal.ModeSocial:
		m.focused = true
		return m.urlInput.Focus()
	}
	return nil
}

func (m *JournalModel) focus() tea.Cmd {
	switch m.collector.Mode() {
	case journal.ModeText:
		m.focused = true
		return m.textarea.Focus()
	case journal.ModeSocial:
		m.focused = true
		return m.urlInput.Focus()
	}
	return nil
}

func (m *JournalModel) cycleMode(step int) tea.Cmd {
	idx := 0
	for i, t := range journalTabs {
		if t.Mode == m.collector.Mode() {
			idx = i
		}
	}
	idx = (idx + step + len(journalTabs)) % len(journalTabs)
	return m.setMode(journalTabs[idx].Mode)
}

func (m *JournalModel) submit() tea.Cmd {
	req, err := m.collector.Request(m.articleCount, m.platforms)
	if err != nil {
		m.notice = "Nothing to analyze yet"
		return nil
	}
	m.notice = ""
	excerpt := m.collector.Excerpt()
	return func() tea.Msg {
		return SubmitMsg{Request: req, Excerpt: excerpt}
	}
}

// Update handles messages.
func (m JournalModel) Update(msg tea.Msg) (JournalModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case FileSelectedMsg:
		m.imageErr = ""
		att, err := m.collector.SelectImage(msg.Path)
		if err != nil {
			m.imageErr = err.Error()
			return m, nil
		}
		m.preview, _ = preview.Thumbnail(att.ImagePath, 32, 12)
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m JournalModel) handleKey(msg tea.KeyMsg) (JournalModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		return m, m.submit()
	case "tab":
		return m, m.cycleMode(1)
	case "shift+tab":
		return m, m.cycleMode(-1)
	}

	if m.Typing() {
		switch msg.String() {
		case "esc":
			m.focused = false
			m.textarea.Blur()
			m.urlInput.Blur()
			return m, nil
		case "enter":
			if m.collector.Mode() == journal.ModeSocial {
				return m, m.submit()
			}
		}
		return m.updateInputs(msg)
	}

	if m.collector.Mode() == journal.ModeImage {
		if m.collector.Image() != nil {
			switch msg.String() {
			case "enter":
				return m, m.submit()
			case "x", "backspace":
				m.collector.ClearImage()
				m.preview = ""
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "i", "enter":
		return m, m.focus()
	}
	return m, nil
}

func (m JournalModel) updateInputs(msg tea.Msg) (JournalModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.collector.Mode() {
	case journal.ModeText:
		m.textarea, cmd = m.textarea.Update(msg)
		m.collector.SetText(m.textarea.Value())
	case journal.ModeSocial:
		m.urlInput, cmd = m.urlInput.Update(msg)
		m.collector.SetURL(m.urlInput.Value())
	}
	return m, cmd
}

// View renders the entry view.
func (m JournalModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("How are you feeling?"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(divider(m.width))
	b.WriteString("\n\n")

	switch m.collector.Mode() {
	case journal.ModeText:
		b.WriteString(m.textarea.View())
		b.WriteString("\n")
		b.WriteString(counterStyle.Render(fmt.Sprintf("%d words · %d characters", m.collector.WordCount(), m.collector.CharCount())))
	case journal.ModeImage:
		b.WriteString(m.renderImage())
	case journal.ModeSocial:
		b.WriteString(m.renderSocial())
	}
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m JournalModel) renderTabs() string {
	tabs := make([]string, 0, len(journalTabs))
	for _, t := range journalTabs {
		style := tabStyle
		if t.Mode == m.collector.Mode() {
			style = tabActiveStyle
		}
		tabs = append(tabs, style.Render(t.Label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m JournalModel) renderImage() string {
	var b strings.Builder

	if m.imageErr != "" {
		b.WriteString(errorStyle.Render(m.imageErr))
		b.WriteString("\n\n")
	}

	att := m.collector.Image()
	if att == nil {
		b.WriteString(subtitleStyle.Render("Choose an image (PNG, JPG, GIF, WEBP or BMP, up to 10 MB)"))
		b.WriteString("\n")
		b.WriteString(m.picker.View())
		return b.String()
	}

	info := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("File")+valueStyle.Render(att.ImageName),
		labelStyle.Render("Size")+valueStyle.Render(collector.FormatSize(att.ImageSize)),
		labelStyle.Render("Dimensions")+valueStyle.Render(fmt.Sprintf("%d × %d", att.Width, att.Height)),
	)
	card := info
	if m.preview != "" {
		card = lipgloss.JoinHorizontal(lipgloss.Top, m.preview, "  ", info)
	}
	b.WriteString(imageCardStyle.Render(card))
	return b.String()
}

func (m JournalModel) renderSocial() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("Paste an Instagram post or reel link"))
	b.WriteString("\n\n")
	b.WriteString(m.urlInput.View())
	b.WriteString("\n")
	if !m.collector.URLValid() {
		b.WriteString(errorStyle.Render(collector.SocialURLError))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Examples:"))
	b.WriteString("\n")
	for _, u := range collector.ExampleURLs {
		b.WriteString(mutedStyle.Render("  " + u))
		b.WriteString("\n")
	}
	return b.String()
}

func (m JournalModel) helpLine() string {
	switch {
	case m.Typing():
		return "ctrl+s: analyze • tab: switch input • esc: stop typing"
	case m.collector.Mode() == journal.ModeImage && m.collector.Image() != nil:
		return "enter/ctrl+s: analyze • x: choose another • tab: switch input"
	case m.collector.Mode() == journal.ModeImage:
		return "enter: select • backspace: parent • ~: home • tab: switch input"
	}
	return "i: start typing • ctrl+s: analyze • tab: switch input"
}

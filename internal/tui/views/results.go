package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/moodlog/internal/backend"
	"github.com/f3rmion/moodlog/internal/clipboard"
	"github.com/f3rmion/moodlog/internal/normalize"
	"github.com/f3rmion/moodlog/internal/report"
	"github.com/f3rmion/moodlog/internal/session"
	"github.com/f3rmion/moodlog/internal/tui/preview"
)

// SaveRequestMsg asks the app to store the shown result in history.
type SaveRequestMsg struct{}

// SavedMsg reports the outcome of a save.
type SavedMsg struct {
	ID  string
	Err error
}

// OpenDetailMsg asks the app to show the detailed analysis.
type OpenDetailMsg struct{}

// NewReflectionMsg asks the app to reset and return to the journal.
type NewReflectionMsg struct{}

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.Write

var (
	scoreStyle = lipgloss.NewStyle().Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLavender).
			MarginTop(1)

	agentCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			MarginTop(1)

	errorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorNegative).
			Padding(1, 2)

	receiptStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

// ResultsModel shows the outcome of an analysis.
type ResultsModel struct {
	snap    session.Snapshot
	data    report.Data
	receipt string

	viewport    viewport.Model
	showReceipt bool

	status    string
	statusErr bool
	statusGen int

	width  int
	height int
}

// NewResultsModel creates an empty results view.
func NewResultsModel() ResultsModel {
	return ResultsModel{viewport: viewport.New(0, 0)}
}

// SetSize updates the view dimensions.
func (m *ResultsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-3, 3)
	m.refresh()
}

// SetSnapshot shows snap. n derives the detail for succeeded results.
func (m *ResultsModel) SetSnapshot(snap session.Snapshot, n *normalize.Normalizer) {
	m.snap = snap
	m.showReceipt = false
	m.status = ""
	m.receipt = ""
	m.data = report.Data{}
	if snap.State == session.StateSucceeded {
		m.data = report.Build(n, snap.Result, snap.View)
		m.receipt, _ = report.Receipt(snap.Result)
	}
	m.refresh()
	m.viewport.GotoTop()
}

// Snapshot returns the shown snapshot.
func (m ResultsModel) Snapshot() session.Snapshot {
	return m.snap
}

// Status returns the transient status line.
func (m ResultsModel) Status() string {
	return m.status
}

func (m *ResultsModel) setStatus(s string, isErr bool) tea.Cmd {
	m.status = s
	m.statusErr = isErr
	m.statusGen++
	return clearStatusAfter(m.statusGen, 2*time.Second)
}

func (m *ResultsModel) refresh() {
	m.viewport.SetContent(m.renderContent())
}

// Update handles messages.
func (m ResultsModel) Update(msg tea.Msg) (ResultsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case clearStatusMsg:
		if msg.gen == m.statusGen {
			m.status = ""
		}
		return m, nil

	case SavedMsg:
		if msg.Err != nil {
			return m, m.setStatus("Save failed: "+msg.Err.Error(), true)
		}
		return m, m.setStatus("Saved to history", false)

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m, func() tea.Msg { return NewReflectionMsg{} }
		}
		if m.snap.State != session.StateSucceeded {
			return m, nil
		}

		switch msg.String() {
		case "y":
			if err := copyToClipboard(m.receipt); err != nil {
				return m, m.setStatus("Copy failed: "+err.Error(), true)
			}
			return m, m.setStatus("Copied receipt to clipboard!", false)
		case "s":
			return m, func() tea.Msg { return SaveRequestMsg{} }
		case "d":
			return m, func() tea.Msg { return OpenDetailMsg{} }
		case "v":
			m.showReceipt = !m.showReceipt
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the results view.
func (m ResultsModel) View() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.status != "" {
		style := copiedStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	help := "r: try again"
	if m.snap.State == session.StateSucceeded {
		help = "d: detailed analysis • v: receipt • y: copy receipt • s: save • r: new reflection • j/k: scroll"
	}
	b.WriteString(mutedStyle.Render(help))
	return b.String()
}

func (m ResultsModel) renderContent() string {
	switch m.snap.State {
	case session.StateFailed:
		return m.renderError()
	case session.StateSucceeded:
	default:
		return mutedStyle.Render("No results yet.")
	}

	var b strings.Builder
	vm := m.data.View
	width := max(m.width-4, 20)

	b.WriteString(titleStyle.Render("Your Emotional Insights"))
	b.WriteString("\n")
	b.WriteString(m.renderGauge(width))
	b.WriteString("\n")
	b.WriteString(valueStyle.Render(wordWrap(m.data.MoodDescription, width)))
	b.WriteString("\n")

	if len(vm.Themes) > 0 {
		b.WriteString(sectionStyle.Render("Emotional Themes"))
		b.WriteString("\n")
		barWidth := max(min(width-24, 40), 10)
		for _, t := range vm.Themes {
			from, to := themeGradient(t.ColorTag)
			bar := progress.New(progress.WithGradient(from, to), progress.WithoutPercentage(), progress.WithWidth(barWidth))
			b.WriteString(labelStyle.Render(t.Name))
			b.WriteString(bar.ViewAs(float64(t.Value) / 100))
			b.WriteString(valueStyle.Render(fmt.Sprintf(" %d%%", t.Value)))
			b.WriteString("\n")
		}
	}

	b.WriteString(sectionStyle.Render("Key Insights"))
	b.WriteString("\n")
	for _, in := range vm.Insights {
		b.WriteString(valueStyle.Render(wordWrap("• "+in, width)))
		b.WriteString("\n")
	}

	if len(m.data.Agents) > 0 {
		b.WriteString(sectionStyle.Render("Agent Analysis"))
		b.WriteString("\n")
		for _, c := range m.data.Agents {
			b.WriteString(renderAgentCard(c, width))
			b.WriteString("\n")
		}
	}

	b.WriteString(sectionStyle.Render("Final Sentiment"))
	b.WriteString("\n")
	for _, row := range [][2]string{
		{"Score", m.data.FinalScore},
		{"Confidence", m.data.Confidence},
		{"Quality", m.data.Quality},
		{"Topic", m.data.Topic},
		{"Content analyzed", m.data.ContentAnalyzed},
	} {
		b.WriteString(labelStyle.Render(row[0]) + valueStyle.Render(row[1]) + "\n")
	}

	if m.showReceipt {
		b.WriteString(sectionStyle.Render("Receipt"))
		b.WriteString("\n")
		b.WriteString(receiptStyle.Render(m.receipt))
		b.WriteString("\n")
	}
	return b.String()
}

func (m ResultsModel) renderGauge(width int) string {
	vm := m.data.View
	color := MoodColor(vm.DominantLabel)

	score := preview.Score(vm.MoodScore, 6, 4)
	if score == "" {
		score = fmt.Sprintf("%d/100", vm.MoodScore)
	}

	bar := progress.New(progress.WithSolidFill(string(color)), progress.WithoutPercentage(), progress.WithWidth(max(min(width, 60), 10)))

	return lipgloss.JoinVertical(lipgloss.Left,
		scoreStyle.Foreground(color).Render(score),
		bar.ViewAs(float64(vm.MoodScore)/100),
		scoreStyle.Foreground(color).Render(vm.DominantLabel),
	)
}

func renderAgentCard(c report.AgentCard, width int) string {
	tone := ToneColor(c.Tone)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colorPeach).Render(c.AgentName))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Score ") + lipgloss.NewStyle().Bold(true).Foreground(tone).Render(c.Score))
	b.WriteString(mutedStyle.Render("  Confidence ") + valueStyle.Render(c.Confidence))
	b.WriteString(mutedStyle.Render("  Type ") + valueStyle.Render(c.Type))
	for _, f := range c.Findings {
		b.WriteString("\n")
		b.WriteString(valueStyle.Render(wordWrap("• "+f, max(width-6, 20))))
	}
	return agentCardStyle.BorderForeground(tone).Render(b.String())
}

func (m ResultsModel) renderError() string {
	msg := backend.Message(m.snap.Err)
	content := errorStyle.Render("Error: "+msg) + "\n\n" + mutedStyle.Render("press r to try again")
	return errorBoxStyle.Render(content)
}

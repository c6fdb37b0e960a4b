package views

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoadingSteps are the agent stages shown while a request is in flight.
var LoadingSteps = []struct {
	Name  string
	Label string
}{
	{"Text Analysis", "Understanding your words..."},
	{"Emotion Detection", "Identifying emotional patterns..."},
	{"Insight Generation", "Creating personalized insights..."},
}

// StepInterval is how long each loading step stays current.
const StepInterval = 2 * time.Second

type loadingStepMsg struct{ gen int }

var (
	stepActiveStyle = lipgloss.NewStyle().
			Foreground(colorPeach).
			Bold(true)

	stepDoneStyle = lipgloss.NewStyle().
			Foreground(colorPositive)
)

// LoadingModel shows progress while the backend works.
type LoadingModel struct {
	spinner spinner.Model
	step    int
	gen     int
	topic   string
	started time.Time

	width  int
	height int
}

// NewLoadingModel creates the loading view.
func NewLoadingModel() LoadingModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorOrange)
	return LoadingModel{spinner: sp}
}

// SetSize updates the view dimensions.
func (m *LoadingModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Start restarts the step cycle for a new request. Ticks from earlier
// requests are ignored.
func (m *LoadingModel) Start(topic string) tea.Cmd {
	m.gen++
	m.step = 0
	m.topic = topic
	m.started = time.Now()
	return tea.Batch(m.spinner.Tick, stepAfter(m.gen))
}

// Step returns the index of the current step.
func (m LoadingModel) Step() int {
	return m.step
}

func stepAfter(gen int) tea.Cmd {
	return tea.Tick(StepInterval, func(time.Time) tea.Msg {
		return loadingStepMsg{gen: gen}
	})
}

// Update handles messages.
func (m LoadingModel) Update(msg tea.Msg) (LoadingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loadingStepMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.step = (m.step + 1) % len(LoadingSteps)
		return m, stepAfter(m.gen)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the loading view.
func (m LoadingModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Analyzing Your Reflection"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Our AI is processing your thoughts..."))
	b.WriteString("\n\n")
	if m.topic != "" {
		b.WriteString(mutedStyle.Render(wordWrap("“"+m.topic+"”", max(m.width-4, 20))))
		b.WriteString("\n\n")
	}

	for i, s := range LoadingSteps {
		var marker, line string
		switch {
		case i < m.step:
			marker = stepDoneStyle.Render("✓")
			line = stepDoneStyle.Render(s.Name)
		case i == m.step:
			marker = m.spinner.View()
			line = stepActiveStyle.Render(s.Name) + "  " + mutedStyle.Render(s.Label)
		default:
			marker = mutedStyle.Render("○")
			line = mutedStyle.Render(s.Name)
		}
		b.WriteString(marker + " " + line + "\n")
	}

	if !m.started.IsZero() {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Elapsed " + time.Since(m.started).Truncate(time.Second).String()))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Please wait while we analyze your reflection... • esc: cancel"))
	return b.String()
}

package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/f3rmion/moodlog/internal/normalize"
	"github.com/f3rmion/moodlog/internal/report"
)

// CloseDetailMsg asks the app to return to the results.
type CloseDetailMsg struct{}

// Detail sections, toggled with 1, 2 and 3.
const (
	SectionCore = iota
	SectionTextVisual
	SectionRaw
	sectionCount
)

var sectionTitles = [sectionCount]string{
	SectionCore:       "Core Analysis",
	SectionTextVisual: "Text vs Visual",
	SectionRaw:        "Raw JSON",
}

// DetailModel shows the detailed analysis of the fusion report.
type DetailModel struct {
	detail    *normalize.Detail
	rawOutput string
	synthesis string

	expanded [sectionCount]bool

	renderer      *glamour.TermRenderer
	rendererWidth int
	viewport      viewport.Model

	width  int
	height int
}

// NewDetailModel creates the detail view with Core Analysis expanded.
func NewDetailModel() DetailModel {
	m := DetailModel{viewport: viewport.New(0, 0)}
	m.expanded[SectionCore] = true
	return m
}

// SetSize updates the view dimensions.
func (m *DetailModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 3)
	m.refresh()
}

// SetResult shows the detail embedded in res's fusion report.
func (m *DetailModel) SetResult(res *journal.AnalysisResult, n *normalize.Normalizer) {
	m.detail = nil
	m.rawOutput = ""
	m.synthesis = ""
	m.expanded = [sectionCount]bool{SectionCore: true}

	if res != nil && res.FusionReport != nil {
		m.rawOutput = res.FusionReport.RawOutput
		m.detail = n.Detail(res.FusionReport)
		if strings.TrimSpace(m.rawOutput) != "" {
			m.synthesis = normalize.Synthesis(m.rawOutput)
		}
	}
	m.refresh()
	m.viewport.GotoTop()
}

// Expanded reports whether section i is open.
func (m DetailModel) Expanded(i int) bool {
	return i >= 0 && i < sectionCount && m.expanded[i]
}

// Detail returns the parsed detail, or nil.
func (m DetailModel) Detail() *normalize.Detail {
	return m.detail
}

// Update handles messages.
func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "1", "2", "3":
			i := int(key.String()[0] - '1')
			m.expanded[i] = !m.expanded[i]
			m.refresh()
			return m, nil
		case "esc", "backspace", "b":
			return m, func() tea.Msg { return CloseDetailMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m DetailModel) View() string {
	return m.viewport.View() + "\n" +
		mutedStyle.Render("1/2/3: toggle sections • j/k: scroll • esc: back to results")
}

func (m *DetailModel) refresh() {
	md := m.Markdown()
	if out, err := m.render(md); err == nil {
		m.viewport.SetContent(out)
		return
	}
	m.viewport.SetContent(md)
}

func (m *DetailModel) render(md string) (string, error) {
	width := max(m.width-4, 20)
	if m.renderer == nil || m.rendererWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		m.renderer = r
		m.rendererWidth = width
	}
	return m.renderer.Render(md)
}

// Markdown builds the markdown source of the view.
func (m DetailModel) Markdown() string {
	var b strings.Builder
	b.WriteString("# Detailed Analysis\n\n")

	if m.detail == nil {
		b.WriteString("*No detailed analysis available.*\n\n")
		if m.synthesis != "" {
			b.WriteString("## Synthesis\n\n" + m.synthesis + "\n\n")
		}
		if strings.TrimSpace(m.rawOutput) != "" {
			b.WriteString("## Fusion Output\n\n" + m.rawOutput + "\n")
		}
		return b.String()
	}

	for i := 0; i < sectionCount; i++ {
		marker := "▸"
		if m.expanded[i] {
			marker = "▾"
		}
		fmt.Fprintf(&b, "## %s %d. %s\n\n", marker, i+1, sectionTitles[i])
		if !m.expanded[i] {
			continue
		}
		switch i {
		case SectionCore:
			b.WriteString(m.coreMarkdown())
		case SectionTextVisual:
			if m.detail.ComparativeAnalysis != "" {
				b.WriteString(m.detail.ComparativeAnalysis + "\n\n")
			} else {
				b.WriteString("*No comparison available.*\n\n")
			}
		case SectionRaw:
			b.WriteString("```json\n" + m.detail.PrettyRaw() + "\n```\n\n")
		}
	}
	return b.String()
}

func (m DetailModel) coreMarkdown() string {
	d := m.detail
	var b strings.Builder

	b.WriteString("| Field | Value |\n|---|---|\n")
	rows := [][2]string{
		{"Agent", orNA(d.AgentName)},
		{"Analysis type", orNA(strings.ReplaceAll(d.AnalysisType, "_", " "))},
		{"Sentiment score", report.FormatOptional(d.FinalScore, "%.1f")},
		{"Confidence", report.FormatOptional(d.Confidence, "%.1f%%")},
		{"Alignment", orNA(d.AlignmentStatus)},
		{"True sentiment", orNA(d.TrueSentiment)},
		{"Sarcasm detected", yesNo(d.SarcasmDetected)},
		{"Contradictions", contradictions(d)},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", r[0], r[1])
	}
	b.WriteString("\n")

	synthesis := d.Synthesis
	if synthesis == "" {
		synthesis = m.synthesis
	}
	if synthesis != "" {
		b.WriteString("**Synthesis**\n\n" + synthesis + "\n\n")
	}
	if d.Recommendation != "" {
		b.WriteString("**Recommendation**\n\n" + d.Recommendation + "\n\n")
	}
	for _, c := range d.Contradictions {
		b.WriteString("- " + c + "\n")
	}
	if len(d.Contradictions) > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func yesNo(b *bool) string {
	switch {
	case b == nil:
		return "N/A"
	case *b:
		return "Yes"
	}
	return "No"
}

func contradictions(d *normalize.Detail) string {
	if len(d.Contradictions) == 0 {
		return "None"
	}
	return fmt.Sprintf("%d", len(d.Contradictions))
}

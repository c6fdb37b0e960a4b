// Package report renders analysis results as plain text or markdown.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/f3rmion/moodlog/internal/normalize"
)

// Format selects a built-in template.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// Generator renders reports from templates.
type Generator struct {
	templates map[Format]*template.Template
}

// AgentCard is the display form of one agent report.
type AgentCard struct {
	Title      string
	AgentName  string
	Score      string // one decimal, or "N/A"
	Confidence string // one decimal with %, or "N/A"
	Type       string // underscores replaced by spaces, or "N/A"
	Tone       normalize.Tone
	Findings   []string
}

// Data is everything a report template can reference.
type Data struct {
	Topic           string
	View            journal.ViewModel
	MoodDescription string
	FinalScore      string
	Confidence      string
	Quality         string
	ContentAnalyzed string
	Agents          []AgentCard
	Detail          *normalize.Detail
	Synthesis       string
}

var funcs = template.FuncMap{
	"bar": Bar,
	"join": strings.Join,
	"yesno": func(b *bool) string {
		if b == nil {
			return "N/A"
		}
		if *b {
			return "Yes"
		}
		return "No"
	},
	"num": func(f *float64) string { return FormatOptional(f, "%.1f") },
	"count": func(d *normalize.Detail) string {
		if len(d.Contradictions) == 0 {
			return "None"
		}
		return fmt.Sprintf("%d", len(d.Contradictions))
	},
}

// NewGenerator creates a generator with the built-in templates.
func NewGenerator() *Generator {
	return &Generator{
		templates: map[Format]*template.Template{
			FormatText:     template.Must(template.New("text").Funcs(funcs).Parse(textTemplate)),
			FormatMarkdown: template.Must(template.New("markdown").Funcs(funcs).Parse(markdownTemplate)),
		},
	}
}

// SetTemplate replaces the template for f.
func (g *Generator) SetTemplate(f Format, tmpl string) error {
	t, err := template.New(string(f)).Funcs(funcs).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}
	g.templates[f] = t
	return nil
}

// Build assembles report data from a result and its view-model.
func Build(n *normalize.Normalizer, res *journal.AnalysisResult, vm journal.ViewModel) Data {
	d := Data{
		View:            vm,
		MoodDescription: normalize.MoodDescription(vm),
		FinalScore:      "N/A",
		Confidence:      "N/A",
		Quality:         "N/A",
		ContentAnalyzed: "N/A",
	}
	if res == nil {
		return d
	}

	d.Topic = res.Topic
	if fs := res.FinalSentiment; fs != nil {
		d.FinalScore = FormatOptional(fs.OverallScore, "%.1f")
		d.Confidence = FormatOptional(fs.Confidence, "%.1f%%")
		if fs.AnalysisQuality != nil && *fs.AnalysisQuality != "" {
			d.Quality = *fs.AnalysisQuality
		}
	}
	if res.ContentAnalyzed != nil {
		d.ContentAnalyzed = fmt.Sprintf("%d", *res.ContentAnalyzed)
	}
	for _, nr := range res.Reports() {
		d.Agents = append(d.Agents, Card(nr))
	}
	if res.FusionReport != nil {
		d.Detail = n.Detail(res.FusionReport)
		if strings.TrimSpace(res.FusionReport.RawOutput) != "" {
			d.Synthesis = normalize.Synthesis(res.FusionReport.RawOutput)
		}
	}
	return d
}

// Card builds the display form of an agent report.
func Card(nr journal.NamedReport) AgentCard {
	r := nr.Report
	c := AgentCard{
		Title:      nr.Title,
		AgentName:  r.AgentName,
		Score:      FormatOptional(r.SentimentScore, "%.1f"),
		Confidence: FormatOptional(r.Confidence, "%.1f%%"),
		Type:       "N/A",
		Tone:       normalize.ToneNeutral,
	}
	if c.AgentName == "" {
		c.AgentName = nr.Title
	}
	if r.AnalysisType != "" {
		c.Type = strings.ReplaceAll(r.AnalysisType, "_", " ")
	}
	if r.SentimentScore != nil {
		c.Tone = normalize.ToneForScore(*r.SentimentScore)
	}
	for _, f := range r.KeyFindings {
		if f = strings.TrimSpace(f); f != "" {
			c.Findings = append(c.Findings, f)
		}
	}
	return c
}

// Render executes the template for f.
func (g *Generator) Render(f Format, data Data) (string, error) {
	t, ok := g.templates[f]
	if !ok {
		return "", fmt.Errorf("unknown report format %q", f)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

// Receipt pretty-prints the raw result as JSON.
func Receipt(res *journal.AnalysisResult) (string, error) {
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling result: %w", err)
	}
	return string(out), nil
}

// FormatOptional formats f with format, or returns "N/A" when absent.
func FormatOptional(f *float64, format string) string {
	if f == nil {
		return "N/A"
	}
	return fmt.Sprintf(format, *f)
}

// Bar draws a 20-cell text bar for a 0..100 value.
func Bar(value int) string {
	const cells = 20
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	filled := (value*cells + 50) / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
}

const textTemplate = `
Mood: {{ .View.DominantLabel }} ({{ .View.MoodScore }}/100)
{{ bar .View.MoodScore }}
{{ .MoodDescription }}
{{- if .View.Themes }}

Themes
{{- range .View.Themes }}
  {{ printf "%-20s" .Name }} {{ bar .Value }} {{ .Value }}
{{- end }}
{{- end }}

Insights
{{- range .View.Insights }}
  • {{ . }}
{{- end }}
`

const markdownTemplate = `
# {{ .View.DominantLabel }} · {{ .View.MoodScore }}/100

{{ .MoodDescription }}

| Topic | Score | Confidence | Quality | Content analyzed |
|---|---|---|---|---|
| {{ .Topic }} | {{ .FinalScore }} | {{ .Confidence }} | {{ .Quality }} | {{ .ContentAnalyzed }} |
{{- if .View.Themes }}

## Themes
{{ range .View.Themes }}
- **{{ .Name }}**: {{ .Value }}%
{{- end }}
{{- end }}

## Insights
{{ range .View.Insights }}
- {{ . }}
{{- end }}
{{- range .Agents }}

## {{ .AgentName }}

Score **{{ .Score }}** · Confidence **{{ .Confidence }}** · Type *{{ .Type }}*
{{ range .Findings }}
- {{ . }}
{{- end }}
{{- end }}
{{- with .Detail }}

## Detailed analysis

| Field | Value |
|---|---|
| Agent | {{ .AgentName }} |
| Analysis type | {{ .AnalysisType }} |
| Sentiment score | {{ num .FinalScore }} |
| Confidence | {{ num .Confidence }} |
| Alignment | {{ .AlignmentStatus }} |
| True sentiment | {{ .TrueSentiment }} |
| Sarcasm detected | {{ yesno .SarcasmDetected }} |
{{- if .HasContradictions }}
| Contradictions | {{ count . }} |
{{- end }}
{{- if .Synthesis }}

### Synthesis

{{ .Synthesis }}
{{- end }}
{{- if .Recommendation }}

### Recommendation

{{ .Recommendation }}
{{- end }}
{{- if .ComparativeAnalysis }}

### Text vs visual

{{ .ComparativeAnalysis }}
{{- end }}
{{- else }}
{{- if .Synthesis }}

## Synthesis

{{ .Synthesis }}
{{- end }}
{{- end }}
`

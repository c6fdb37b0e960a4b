package views

import (
	"testing"

	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/f3rmion/moodlog/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fusionRaw = "Fusion summary follows.\n```json\n" + `{
  "agent_name": "FusionAgent",
  "analysis_type": "multimodal_fusion",
  "final_sentiment_score": 3.5,
  "confidence": 81,
  "alignment_status": "aligned",
  "true_sentiment": "cautiously optimistic",
  "sarcasm_detected": false,
  "contradictions": [],
  "synthesis": "Text and imagery agree.",
  "text_vs_visual": {"comparative_analysis": "Both lean positive."}
}` + "\n```"

func newDetail(t *testing.T, raw string) DetailModel {
	t.Helper()
	m := NewDetailModel()
	m.SetSize(100, 40)
	m.SetResult(&journal.AnalysisResult{
		Success:      true,
		FusionReport: &journal.AgentReport{AgentName: "FusionAgent", RawOutput: raw},
	}, normalize.New(nil))
	return m
}

func TestDetailMarkdownCore(t *testing.T) {
	m := newDetail(t, fusionRaw)
	require.NotNil(t, m.Detail())

	md := m.Markdown()
	assert.Contains(t, md, "# Detailed Analysis")
	assert.Contains(t, md, "## ▾ 1. Core Analysis")
	assert.Contains(t, md, "## ▸ 2. Text vs Visual")
	assert.Contains(t, md, "## ▸ 3. Raw JSON")
	assert.Contains(t, md, "| Analysis type | multimodal fusion |")
	assert.Contains(t, md, "| Sentiment score | 3.5 |")
	assert.Contains(t, md, "| Sarcasm detected | No |")
	assert.Contains(t, md, "| Contradictions | None |")
	assert.Contains(t, md, "Text and imagery agree.")
	assert.NotContains(t, md, "Both lean positive.")
}

func TestDetailToggleSections(t *testing.T) {
	m := newDetail(t, fusionRaw)

	m, _ = m.Update(runes("1"))
	assert.False(t, m.Expanded(SectionCore))
	m, _ = m.Update(runes("2"))
	assert.True(t, m.Expanded(SectionTextVisual))
	m, _ = m.Update(runes("3"))
	assert.True(t, m.Expanded(SectionRaw))

	md := m.Markdown()
	assert.NotContains(t, md, "| Sarcasm detected")
	assert.Contains(t, md, "Both lean positive.")
	assert.Contains(t, md, "```json")
	assert.Contains(t, md, `"alignment_status": "aligned"`)
}

func TestDetailWithoutEmbeddedObject(t *testing.T) {
	prose := "The writer sounds settled and content after a long walk through the park this morning."
	m := newDetail(t, prose)
	assert.Nil(t, m.Detail())

	md := m.Markdown()
	assert.Contains(t, md, "*No detailed analysis available.*")
	assert.Contains(t, md, "## Synthesis")
	assert.Contains(t, md, "## Fusion Output")
}

func TestDetailResetsSectionsOnNewResult(t *testing.T) {
	m := newDetail(t, fusionRaw)
	m, _ = m.Update(runes("1"))
	m.SetResult(nil, normalize.New(nil))

	assert.True(t, m.Expanded(SectionCore))
	assert.Nil(t, m.Detail())
	assert.False(t, m.Expanded(7))
}

func TestDetailClose(t *testing.T) {
	m := newDetail(t, fusionRaw)
	_, cmd := m.Update(runes("b"))
	require.NotNil(t, cmd)
	assert.Equal(t, CloseDetailMsg{}, cmd())
	assert.NotEmpty(t, m.View())
}

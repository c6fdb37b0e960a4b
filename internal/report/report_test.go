package report

import (
	"strings"
	"testing"

	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/f3rmion/moodlog/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr[T any](v T) *T { return &v }

func sampleResult() *journal.AnalysisResult {
	return &journal.AnalysisResult{
		Success:         true,
		Topic:           "a calm morning walk",
		ContentAnalyzed: ptr(5),
		FinalSentiment: &journal.FinalSentiment{
			OverallScore:    ptr(5.0),
			Confidence:      ptr(77.5),
			SentimentLabel:  ptr("Positive"),
			AnalysisQuality: ptr("high"),
		},
		LexiconReport: &journal.AgentReport{
			AgentName:      "LexiconAgent",
			AnalysisType:   "lexicon_sentiment",
			SentimentScore: ptr(6.5),
			Confidence:     ptr(80.0),
			KeyFindings:    []string{"peaceful tone", "  "},
		},
		FusionReport: &journal.AgentReport{
			AgentName:      "FusionAgent",
			SentimentScore: ptr(-4.0),
			RawOutput: "intro\n```json\n" +
				`{"agent_name": "FusionAgent", "analysis_type": "multimodal_fusion", "final_sentiment_score": 5, "confidence": 77.5, "sarcasm_detected": false, "contradictions": [], "synthesis": "Calm throughout."}` +
				"\n```",
		},
	}
}

func TestCard(t *testing.T) {
	res := sampleResult()
	cards := make([]AgentCard, 0)
	for _, nr := range res.Reports() {
		cards = append(cards, Card(nr))
	}
	require.Len(t, cards, 2)

	assert.Equal(t, "LexiconAgent", cards[0].AgentName)
	assert.Equal(t, "6.5", cards[0].Score)
	assert.Equal(t, "80.0%", cards[0].Confidence)
	assert.Equal(t, "lexicon sentiment", cards[0].Type)
	assert.Equal(t, normalize.TonePositive, cards[0].Tone)
	assert.Equal(t, []string{"peaceful tone"}, cards[0].Findings)

	assert.Equal(t, "N/A", cards[1].Confidence)
	assert.Equal(t, "N/A", cards[1].Type)
	assert.Equal(t, normalize.ToneNegative, cards[1].Tone)
}

func TestCardFallsBackToTitle(t *testing.T) {
	c := Card(journal.NamedReport{Title: "Vision Agent", Report: &journal.AgentReport{}})
	assert.Equal(t, "Vision Agent", c.AgentName)
	assert.Equal(t, "N/A", c.Score)
	assert.Equal(t, normalize.ToneNeutral, c.Tone)
}

func TestBuild(t *testing.T) {
	n := normalize.New(zap.NewNop())
	res := sampleResult()
	d := Build(n, res, n.Normalize(res))

	assert.Equal(t, "a calm morning walk", d.Topic)
	assert.Equal(t, "5.0", d.FinalScore)
	assert.Equal(t, "77.5%", d.Confidence)
	assert.Equal(t, "high", d.Quality)
	assert.Equal(t, "5", d.ContentAnalyzed)
	require.NotNil(t, d.Detail)
	assert.Equal(t, "multimodal_fusion", d.Detail.AnalysisType)
	assert.Len(t, d.Agents, 2)
}

func TestBuildNilResult(t *testing.T) {
	n := normalize.New(nil)
	d := Build(n, nil, n.Normalize(nil))
	assert.Equal(t, "N/A", d.FinalScore)
	assert.Nil(t, d.Detail)
	assert.Empty(t, d.Agents)
}

func TestRenderText(t *testing.T) {
	n := normalize.New(nil)
	res := sampleResult()
	vm := n.Normalize(res)

	out, err := NewGenerator().Render(FormatText, Build(n, res, vm))
	require.NoError(t, err)

	assert.Contains(t, out, "Mood: Positive (75/100)")
	assert.Contains(t, out, "Text Sentiment")
	assert.Contains(t, out, "• peaceful tone")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestRenderMarkdown(t *testing.T) {
	n := normalize.New(nil)
	res := sampleResult()

	out, err := NewGenerator().Render(FormatMarkdown, Build(n, res, n.Normalize(res)))
	require.NoError(t, err)

	assert.Contains(t, out, "# Positive · 75/100")
	assert.Contains(t, out, "## LexiconAgent")
	assert.Contains(t, out, "| Sarcasm detected | No |")
	assert.Contains(t, out, "| Contradictions | None |")
	assert.Contains(t, out, "Calm throughout.")
}

func TestSetTemplate(t *testing.T) {
	g := NewGenerator()
	require.NoError(t, g.SetTemplate(FormatText, "{{ .View.MoodScore }} {{ bar 50 }}"))

	out, err := g.Render(FormatText, Data{View: journal.ViewModel{MoodScore: 42}})
	require.NoError(t, err)
	assert.Equal(t, "42 "+strings.Repeat("█", 10)+strings.Repeat("░", 10)+"\n", out)

	assert.Error(t, g.SetTemplate(FormatText, "{{ .Broken"))

	_, err = g.Render(Format("html"), Data{})
	assert.Error(t, err)
}

func TestBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", 20), Bar(-5))
	assert.Equal(t, strings.Repeat("█", 20), Bar(250))
}

func TestReceipt(t *testing.T) {
	out, err := Receipt(sampleResult())
	require.NoError(t, err)
	assert.Contains(t, out, `"topic": "a calm morning walk"`)
	assert.Contains(t, out, "\n  ")
}

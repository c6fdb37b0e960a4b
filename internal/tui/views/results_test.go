package views

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/moodlog/internal/backend"
	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/f3rmion/moodlog/internal/normalize"
	"github.com/f3rmion/moodlog/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func sampleResult() *journal.AnalysisResult {
	label := "Joy"
	return &journal.AnalysisResult{
		Success: true,
		Topic:   "a calm walk",
		LexiconReport: &journal.AgentReport{
			AgentName:      "LexiconAgent",
			SentimentScore: f64(6),
			Confidence:     f64(80),
			KeyFindings:    []string{"peaceful tone"},
		},
		FinalSentiment: &journal.FinalSentiment{
			OverallScore:   f64(6),
			Confidence:     f64(80),
			SentimentLabel: &label,
		},
	}
}

func succeeded(n *normalize.Normalizer, res *journal.AnalysisResult) session.Snapshot {
	return session.Snapshot{
		State:  session.StateSucceeded,
		Result: res,
		View:   n.Normalize(res),
	}
}

func newResults(t *testing.T) ResultsModel {
	t.Helper()
	n := normalize.New(nil)
	m := NewResultsModel()
	m.SetSize(120, 150)
	m.SetSnapshot(succeeded(n, sampleResult()), n)
	return m
}

func TestResultsIdle(t *testing.T) {
	m := NewResultsModel()
	m.SetSize(80, 20)
	assert.Contains(t, m.View(), "No results yet.")
}

func TestResultsSucceeded(t *testing.T) {
	m := newResults(t)
	view := m.View()
	assert.Contains(t, view, "Your Emotional Insights")
	assert.Contains(t, view, "Emotional Themes")
	assert.Contains(t, view, "Text Sentiment")
	assert.Contains(t, view, "Key Insights")
	assert.Contains(t, view, "LexiconAgent")
	assert.Contains(t, view, "peaceful tone")
	assert.NotContains(t, view, "Receipt")
}

func TestResultsFailed(t *testing.T) {
	m := NewResultsModel()
	m.SetSize(80, 20)
	m.SetSnapshot(session.Snapshot{
		State: session.StateFailed,
		Err:   &backend.Error{Kind: backend.KindTransport, Message: backend.MsgUnreachable},
	}, normalize.New(nil))

	view := m.View()
	assert.Contains(t, view, "Error:")
	assert.Contains(t, view, "press r to try again")

	// Only r works on a failure.
	_, cmd := m.Update(runes("s"))
	assert.Nil(t, cmd)
	_, cmd = m.Update(runes("r"))
	require.NotNil(t, cmd)
	assert.IsType(t, NewReflectionMsg{}, cmd())
}

func TestResultsReceiptToggle(t *testing.T) {
	m := newResults(t)
	m, _ = m.Update(runes("v"))
	assert.Contains(t, m.View(), "Receipt")
	assert.Contains(t, m.View(), `"topic": "a calm walk"`)

	m, _ = m.Update(runes("v"))
	assert.NotContains(t, m.View(), "Receipt")
}

func TestResultsCopyReceipt(t *testing.T) {
	var copied string
	orig := copyToClipboard
	copyToClipboard = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { copyToClipboard = orig })

	m := newResults(t)
	m, cmd := m.Update(runes("y"))
	assert.NotNil(t, cmd)
	assert.Contains(t, copied, `"success": true`)
	assert.Equal(t, "Copied receipt to clipboard!", m.Status())

	// The status clears only for its own generation.
	stale, _ := m.Update(clearStatusMsg{gen: m.statusGen - 1})
	assert.NotEmpty(t, stale.Status())
	m, _ = m.Update(clearStatusMsg{gen: m.statusGen})
	assert.Empty(t, m.Status())
}

func TestResultsCopyFailure(t *testing.T) {
	orig := copyToClipboard
	copyToClipboard = func(string) error { return errors.New("no clipboard tool") }
	t.Cleanup(func() { copyToClipboard = orig })

	m := newResults(t)
	m, _ = m.Update(runes("y"))
	assert.Equal(t, "Copy failed: no clipboard tool", m.Status())
}

func TestResultsActions(t *testing.T) {
	m := newResults(t)

	tests := []struct {
		key  string
		want tea.Msg
	}{
		{"s", SaveRequestMsg{}},
		{"d", OpenDetailMsg{}},
		{"r", NewReflectionMsg{}},
	}
	for _, tt := range tests {
		_, cmd := m.Update(runes(tt.key))
		require.NotNil(t, cmd, tt.key)
		assert.Equal(t, tt.want, cmd(), tt.key)
	}
}

func TestResultsSavedStatus(t *testing.T) {
	m := newResults(t)
	m, _ = m.Update(SavedMsg{ID: "abc"})
	assert.Equal(t, "Saved to history", m.Status())

	m, _ = m.Update(SavedMsg{Err: errors.New("disk full")})
	assert.Equal(t, "Save failed: disk full", m.Status())
}

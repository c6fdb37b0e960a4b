package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/f3rmion/moodlog/internal/backend"
	"github.com/f3rmion/moodlog/internal/collector"
	"github.com/f3rmion/moodlog/internal/history"
	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/f3rmion/moodlog/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetAnalyzeFlags(t *testing.T) {
	t.Cleanup(func() {
		analyzeImage, analyzeURL = "", ""
	})
}

func TestCollectText(t *testing.T) {
	resetAnalyzeFlags(t)
	c, err := collect([]string{"calm", "and", "rested"}, nil)
	require.NoError(t, err)
	assert.Equal(t, journal.ModeText, c.Mode())
	assert.Equal(t, "calm and rested", c.Topic())
}

func TestCollectStdin(t *testing.T) {
	resetAnalyzeFlags(t)
	c, err := collect([]string{"-"}, strings.NewReader("  rough day at work\n"))
	require.NoError(t, err)
	assert.Equal(t, "rough day at work", c.Topic())
}

func TestCollectURL(t *testing.T) {
	resetAnalyzeFlags(t)
	analyzeURL = "https://www.instagram.com/p/ABC123xyz/"

	c, err := collect(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, journal.ModeSocial, c.Mode())
	assert.Equal(t, collector.SocialTopicPrefix+analyzeURL, c.Topic())

	_, err = collect([]string{"extra"}, nil)
	assert.Error(t, err)
}

func TestCollectMissingImage(t *testing.T) {
	resetAnalyzeFlags(t)
	analyzeImage = "/does/not/exist.png"
	_, err := collect(nil, nil)
	assert.Error(t, err)
}

func TestFormatHealth(t *testing.T) {
	ok := formatHealth("http://localhost:8000", session.HealthEvent{
		Healthy: true,
		Status:  &backend.HealthStatus{Status: "healthy", Version: "2.0.0", Agents: []string{"LexiconAgent"}},
	})
	assert.Contains(t, ok, "API Ready")
	assert.Contains(t, ok, "v2.0.0")
	assert.Contains(t, ok, "LexiconAgent")

	down := formatHealth("http://localhost:8000", session.HealthEvent{
		Err: &backend.Error{Kind: backend.KindTransport, Message: backend.MsgUnreachable},
	})
	assert.Contains(t, down, "API Error")
	assert.Contains(t, down, backend.MsgUnreachable)

	degraded := formatHealth("http://localhost:8000", session.HealthEvent{
		Status: &backend.HealthStatus{Status: "degraded"},
	})
	assert.Contains(t, degraded, "status degraded")
}

func TestFindEntryByPrefix(t *testing.T) {
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	res := &journal.AnalysisResult{Success: true, Topic: "a calm walk"}
	for _, id := range []string{"abcd1111", "abcd2222", "ef001234"} {
		_, err := store.Save(ctx, history.Entry{ID: id, CreatedAt: time.Now(), Mode: journal.ModeText, Topic: "a calm walk", Result: res})
		require.NoError(t, err)
	}

	e, err := findEntry(ctx, store, "ef00")
	require.NoError(t, err)
	assert.Equal(t, "ef001234", e.ID)

	e, err = findEntry(ctx, store, "abcd2222")
	require.NoError(t, err)
	assert.Equal(t, "abcd2222", e.ID)

	_, err = findEntry(ctx, store, "abcd")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = findEntry(ctx, store, "zzzz")
	assert.True(t, errors.Is(err, history.ErrNotFound))
}

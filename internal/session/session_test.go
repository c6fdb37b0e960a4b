package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/f3rmion/moodlog/internal/backend"
	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
	result  *journal.AnalysisResult
	err     error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req journal.AnalysisRequest) (*journal.AnalysisResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, &backend.Error{Kind: backend.KindTransport, Message: backend.MsgUnreachable, Err: ctx.Err()}
		}
	}
	return f.result, f.err
}

func (f *fakeAnalyzer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func score(v float64) *float64 { return &v }

func okResult() *journal.AnalysisResult {
	return &journal.AnalysisResult{
		Success:        true,
		Topic:          "walk",
		FinalSentiment: &journal.FinalSentiment{OverallScore: score(6)},
	}
}

func TestSubmitRunComplete(t *testing.T) {
	s := New(&fakeAnalyzer{result: okResult()}, nil)
	assert.Equal(t, StateIdle, s.State())

	tk, err := s.Submit(context.Background(), journal.AnalysisRequest{Topic: " walk "})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, tk.ID)
	assert.Equal(t, "walk", tk.Request.Topic)
	assert.Equal(t, journal.DefaultArticleCount, tk.Request.ArticleCount)
	assert.Equal(t, StateInFlight, s.State())

	require.True(t, s.Complete(s.Run(tk)))

	snap := s.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	assert.Equal(t, 80, snap.View.MoodScore)
	assert.NoError(t, snap.Err)
}

func TestSubmitWhileInFlightIsNoop(t *testing.T) {
	fa := &fakeAnalyzer{release: make(chan struct{}), result: okResult()}
	s := New(fa, nil)

	first, err := s.Submit(context.Background(), journal.AnalysisRequest{Topic: "one"})
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), journal.AnalysisRequest{Topic: "two"})
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, "one", s.Snapshot().Request.Topic)

	done := make(chan Outcome)
	go func() { done <- s.Run(first) }()
	close(fa.release)
	assert.True(t, s.Complete(<-done))
	assert.Equal(t, 1, fa.Calls())
}

func TestInputErrorFailsWithoutNetwork(t *testing.T) {
	fa := &fakeAnalyzer{result: okResult()}
	s := New(fa, nil)

	_, err := s.Submit(context.Background(), journal.AnalysisRequest{Topic: "   "})
	require.Error(t, err)
	assert.True(t, backend.IsKind(err, backend.KindInput))

	snap := s.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, backend.MsgEmptyTopic, backend.Message(snap.Err))
	assert.Zero(t, fa.Calls())
}

func TestFailureOutcome(t *testing.T) {
	failure := &backend.Error{Kind: backend.KindServer, Message: "quota exceeded"}
	s := New(&fakeAnalyzer{err: failure}, nil)

	snap, err := s.Analyze(context.Background(), journal.AnalysisRequest{Topic: "x"})
	require.Error(t, err)
	assert.Equal(t, StateFailed, snap.State)
	assert.Equal(t, "quota exceeded", backend.Message(snap.Err))
	assert.Nil(t, snap.Result)
}

func TestStaleResponseDiscarded(t *testing.T) {
	s := New(&fakeAnalyzer{result: okResult()}, nil)

	old, err := s.Submit(context.Background(), journal.AnalysisRequest{Topic: "old"})
	require.NoError(t, err)
	s.Cancel()
	assert.Equal(t, StateIdle, s.State())

	fresh, err := s.Submit(context.Background(), journal.AnalysisRequest{Topic: "fresh"})
	require.NoError(t, err)

	assert.False(t, s.Complete(Outcome{ID: old.ID, Result: okResult()}))
	assert.Equal(t, StateInFlight, s.State())

	assert.True(t, s.Complete(Outcome{ID: fresh.ID, Result: okResult()}))
	assert.Equal(t, StateSucceeded, s.State())
}

func TestCancelAbortsRequestContext(t *testing.T) {
	fa := &fakeAnalyzer{release: make(chan struct{})}
	s := New(fa, nil)

	tk, err := s.Submit(context.Background(), journal.AnalysisRequest{Topic: "x"})
	require.NoError(t, err)

	done := make(chan Outcome)
	go func() { done <- s.Run(tk) }()
	s.Cancel()

	out := <-done
	assert.True(t, backend.IsKind(out.Err, backend.KindTransport))
	assert.False(t, s.Complete(out))
	assert.Equal(t, StateIdle, s.State())
}

func TestResetFromFailed(t *testing.T) {
	s := New(&fakeAnalyzer{err: errors.New("boom")}, nil)
	_, _ = s.Analyze(context.Background(), journal.AnalysisRequest{Topic: "x"})
	require.Equal(t, StateFailed, s.State())

	s.Reset()
	snap := s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.NoError(t, snap.Err)
	assert.Equal(t, uuid.Nil, snap.RequestID)
}

func TestCompleteWithNilResultFails(t *testing.T) {
	s := New(&fakeAnalyzer{}, nil)
	snap, err := s.Analyze(context.Background(), journal.AnalysisRequest{Topic: "x"})
	require.Error(t, err)
	assert.Equal(t, StateFailed, snap.State)
	assert.True(t, backend.IsKind(err, backend.KindServer))
}

func TestRestore(t *testing.T) {
	s := New(&fakeAnalyzer{}, nil)
	s.Restore(journal.AnalysisRequest{Topic: "saved"}, okResult())

	snap := s.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	assert.Equal(t, "saved", snap.Request.Topic)
	assert.Equal(t, 80, snap.View.MoodScore)
}

func TestConcurrentSubmitsAcceptOne(t *testing.T) {
	fa := &fakeAnalyzer{release: make(chan struct{}), result: okResult()}
	s := New(fa, nil)

	var wg sync.WaitGroup
	tickets := make(chan Ticket, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tk, err := s.Submit(context.Background(), journal.AnalysisRequest{Topic: "x"}); err == nil {
				tickets <- tk
			}
		}()
	}
	wg.Wait()
	close(tickets)

	var accepted []Ticket
	for tk := range tickets {
		accepted = append(accepted, tk)
	}
	require.Len(t, accepted, 1)

	close(fa.release)
	assert.True(t, s.Complete(s.Run(accepted[0])))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "in-flight", StateInFlight.String())
	assert.Equal(t, "failed", StateFailed.String())
}

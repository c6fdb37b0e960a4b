// Package session tracks the single analysis a user may have in flight
// and decides which backend responses are still wanted.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/f3rmion/moodlog/internal/backend"
	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/f3rmion/moodlog/internal/logging"
	"github.com/f3rmion/moodlog/internal/normalize"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the lifecycle of the current submission.
type State int

const (
	StateIdle      State = iota // Nothing submitted, or reset
	StateInFlight               // Waiting on the backend
	StateSucceeded              // Result and view-model available
	StateFailed                 // Err holds the classified failure
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInFlight:
		return "in-flight"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ErrBusy is returned by Submit while a request is in flight.
var ErrBusy = errors.New("analysis already in progress")

// Analyzer performs one analysis round trip.
type Analyzer interface {
	Analyze(ctx context.Context, req journal.AnalysisRequest) (*journal.AnalysisResult, error)
}

// Ticket identifies one accepted submission.
type Ticket struct {
	ID      uuid.UUID
	Request journal.AnalysisRequest

	ctx context.Context
}

// Outcome is what came back for a ticket.
type Outcome struct {
	ID       uuid.UUID
	Result   *journal.AnalysisResult
	Err      error
	Duration time.Duration
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	State     State
	RequestID uuid.UUID
	Request   journal.AnalysisRequest
	Result    *journal.AnalysisResult
	View      journal.ViewModel
	Err       error
}

// Session is safe for concurrent use.
type Session struct {
	analyzer   Analyzer
	normalizer *normalize.Normalizer
	log        *zap.Logger

	mu      sync.Mutex
	state   State
	current uuid.UUID
	request journal.AnalysisRequest
	cancel  context.CancelFunc
	result  *journal.AnalysisResult
	view    journal.ViewModel
	err     error
}

// New creates an idle session.
func New(a Analyzer, log *zap.Logger) *Session {
	log = logging.OrNop(log)
	return &Session{
		analyzer:   a,
		normalizer: normalize.New(log),
		log:        log,
	}
}

// Submit accepts req for dispatch. While a request is in flight it returns
// ErrBusy and changes nothing. Input errors fail the session without
// touching the network.
func (s *Session) Submit(ctx context.Context, req journal.AnalysisRequest) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateInFlight {
		return Ticket{}, ErrBusy
	}

	prepared, err := backend.Prepare(req)
	if err != nil {
		s.state = StateFailed
		s.current = uuid.Nil
		s.request = req
		s.result = nil
		s.view = journal.ViewModel{}
		s.err = err
		return Ticket{}, err
	}
	prepared.Attachment = req.Attachment

	ctx, cancel := context.WithCancel(ctx)
	id := uuid.New()

	s.state = StateInFlight
	s.current = id
	s.request = prepared
	s.cancel = cancel
	s.result = nil
	s.view = journal.ViewModel{}
	s.err = nil

	s.log.Debug("analysis submitted", zap.String("request_id", id.String()), zap.String("mode", modeOf(prepared)))
	return Ticket{ID: id, Request: prepared, ctx: ctx}, nil
}

// Run performs the round trip for t. It blocks and is meant to run off
// the UI goroutine.
func (s *Session) Run(t Ticket) Outcome {
	ctx := t.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	res, err := s.analyzer.Analyze(ctx, t.Request)
	return Outcome{ID: t.ID, Result: res, Err: err, Duration: time.Since(start)}
}

// Complete applies o if it answers the current request and reports
// whether it was applied. Responses to superseded or cancelled requests
// are discarded.
func (s *Session) Complete(o Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInFlight || o.ID != s.current {
		s.log.Debug("discarding stale response", zap.String("request_id", o.ID.String()))
		return false
	}

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	switch {
	case o.Err != nil:
		s.state = StateFailed
		s.err = o.Err
	case o.Result == nil:
		s.state = StateFailed
		s.err = &backend.Error{Kind: backend.KindServer, Message: backend.MsgMalformed}
	default:
		s.state = StateSucceeded
		s.result = o.Result
		s.view = s.normalizer.Normalize(o.Result)
	}

	s.log.Info("analysis finished",
		zap.String("request_id", o.ID.String()),
		zap.Stringer("state", s.state),
		zap.Duration("elapsed", o.Duration),
	)
	return true
}

// Analyze is the synchronous form of Submit, Run and Complete.
func (s *Session) Analyze(ctx context.Context, req journal.AnalysisRequest) (Snapshot, error) {
	t, err := s.Submit(ctx, req)
	if err != nil {
		return s.Snapshot(), err
	}
	s.Complete(s.Run(t))
	snap := s.Snapshot()
	return snap, snap.Err
}

// Cancel abandons the in-flight request, if any, and returns to idle.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInFlight {
		return
	}
	s.log.Debug("analysis cancelled", zap.String("request_id", s.current.String()))
	s.resetLocked()
}

// Reset returns to idle from any state, cancelling an in-flight request.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// Restore shows a previously stored result as if it had just succeeded.
// The view-model is derived fresh.
func (s *Session) Restore(req journal.AnalysisRequest, res *journal.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.state = StateSucceeded
	s.request = req
	s.result = res
	s.view = s.normalizer.Normalize(res)
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:     s.state,
		RequestID: s.current,
		Request:   s.request,
		Result:    s.result,
		View:      s.view,
		Err:       s.err,
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Normalizer exposes the session's normalizer for detail views.
func (s *Session) Normalizer() *normalize.Normalizer {
	return s.normalizer
}

func (s *Session) resetLocked() {
	if s.cancel != nil {
		s.cancel()
	}
	s.state = StateIdle
	s.current = uuid.Nil
	s.request = journal.AnalysisRequest{}
	s.cancel = nil
	s.result = nil
	s.view = journal.ViewModel{}
	s.err = nil
}

func modeOf(req journal.AnalysisRequest) string {
	if req.Attachment != nil {
		return req.Attachment.Mode.String()
	}
	return journal.ModeText.String()
}

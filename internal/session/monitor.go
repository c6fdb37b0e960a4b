package session

import (
	"context"
	"sync"
	"time"

	"github.com/f3rmion/moodlog/internal/backend"
	"github.com/f3rmion/moodlog/internal/logging"
	"go.uber.org/zap"
)

// HealthChecker queries backend health once.
type HealthChecker interface {
	Health(ctx context.Context) (*backend.HealthStatus, error)
}

// HealthEvent is the result of one health check.
type HealthEvent struct {
	Healthy bool
	Status  *backend.HealthStatus
	Err     error
	At      time.Time
}

// Monitor polls backend health on an interval until stopped.
type Monitor struct {
	checker  HealthChecker
	interval time.Duration
	log      *zap.Logger

	events chan HealthEvent
	stop   chan struct{}
	done   chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewMonitor creates a stopped monitor.
func NewMonitor(c HealthChecker, interval time.Duration, log *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		checker:  c,
		interval: interval,
		log:      logging.OrNop(log),
		events:   make(chan HealthEvent),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Events delivers one event per check. Checks pause until the previous
// event is received.
func (m *Monitor) Events() <-chan HealthEvent {
	return m.events
}

// Start checks immediately and then every interval, until ctx ends or
// Stop is called. Calling Start twice has no effect.
func (m *Monitor) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		go m.loop(ctx)
	})
}

// Stop ends polling and waits for the poller to exit. A monitor that was
// never started cannot be started afterwards.
func (m *Monitor) Stop() {
	m.startOnce.Do(func() {
		close(m.done)
	})
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	<-m.done
}

// Check performs a single health check.
func (m *Monitor) Check(ctx context.Context) HealthEvent {
	status, err := m.checker.Health(ctx)
	return HealthEvent{
		Healthy: err == nil && status.Healthy(),
		Status:  status,
		Err:     err,
		At:      time.Now(),
	}
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-m.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	first := true
	var last bool
	for {
		ev := m.Check(ctx)
		if ctx.Err() != nil {
			return
		}
		if first || ev.Healthy != last {
			m.log.Info("backend health changed", zap.Bool("healthy", ev.Healthy), zap.Error(ev.Err))
		}
		first, last = false, ev.Healthy

		select {
		case m.events <- ev:
		case <-ctx.Done():
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

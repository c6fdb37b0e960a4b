// Package metrics exposes Prometheus instrumentation for analysis dispatch
// and backend health.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatch outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeInput     = "input"
	OutcomeTransport = "transport"
	OutcomeServer    = "server"
	OutcomeStale     = "stale"
)

// Recorder holds the moodlog collectors on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	DispatchTotal    *prometheus.CounterVec
	DispatchDuration prometheus.Histogram
	BackendHealthy   prometheus.Gauge
	HistorySaved     prometheus.Counter
}

// New creates a Recorder with freshly registered collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		DispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moodlog_dispatch_total",
				Help: "Analysis requests by outcome",
			},
			[]string{"outcome"},
		),
		DispatchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "moodlog_dispatch_duration_seconds",
				Help:    "Round-trip time of analysis requests",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
		),
		BackendHealthy: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "moodlog_backend_healthy",
				Help: "1 when the last health check reported healthy",
			},
		),
		HistorySaved: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "moodlog_history_saved_total",
				Help: "Reflections written to the history store",
			},
		),
	}
}

// ObserveDispatch records one finished dispatch. Safe on a nil Recorder.
func (r *Recorder) ObserveDispatch(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.DispatchTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeInput {
		r.DispatchDuration.Observe(d.Seconds())
	}
}

// SetHealthy records the latest health check. Safe on a nil Recorder.
func (r *Recorder) SetHealthy(ok bool) {
	if r == nil {
		return
	}
	if ok {
		r.BackendHealthy.Set(1)
	} else {
		r.BackendHealthy.Set(0)
	}
}

// IncSaved counts a saved reflection. Safe on a nil Recorder.
func (r *Recorder) IncSaved() {
	if r == nil {
		return
	}
	r.HistorySaved.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDispatch(t *testing.T) {
	r := New()
	r.ObserveDispatch(OutcomeSuccess, 2*time.Second)
	r.ObserveDispatch(OutcomeSuccess, time.Second)
	r.ObserveDispatch(OutcomeTransport, 30*time.Second)
	r.ObserveDispatch(OutcomeInput, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.DispatchTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.DispatchTotal.WithLabelValues(OutcomeTransport)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.DispatchTotal.WithLabelValues(OutcomeInput)))
}

func TestSetHealthy(t *testing.T) {
	r := New()
	r.SetHealthy(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.BackendHealthy))
	r.SetHealthy(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.BackendHealthy))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveDispatch(OutcomeServer, time.Second)
		r.SetHealthy(true)
		r.IncSaved()
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := New()
	r.IncSaved()

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "moodlog_history_saved_total 1")
}

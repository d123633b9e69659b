package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fxsignal/strategies"
)

// value returns the counter/gauge value, or the histogram sample count, of
// the series name{labels}.
func value(t *testing.T, g prometheus.Gatherer, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := g.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func TestObserveAnalysis(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveAnalysis("EUR_USD", 300, strategies.Signal{Action: strategies.Buy, Confidence: 85}, 3*time.Millisecond)
	m.ObserveAnalysis("EUR_USD", 300, strategies.Signal{Action: strategies.Hold, Confidence: 60}, time.Millisecond)

	sym := map[string]string{"symbol": "EUR_USD"}
	assert.Equal(t, 2.0, value(t, reg, "fxsignal_series_analyzed_total", sym))
	assert.Equal(t, 600.0, value(t, reg, "fxsignal_bars_total", nil))
	assert.Equal(t, 1.0, value(t, reg, "fxsignal_signals_total", map[string]string{"symbol": "EUR_USD", "action": "BUY"}))
	assert.Equal(t, 60.0, value(t, reg, "fxsignal_signal_confidence", sym))
	assert.Equal(t, float64(strategies.Hold), value(t, reg, "fxsignal_signal_action", sym))
	assert.Equal(t, 2.0, value(t, reg, "fxsignal_analyze_duration_seconds", nil))
}

func TestObserveOthers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveError("compute")
	m.ObserveError("compute")
	m.ObserveBacktest("GBP_USD", "confluence", -0.05)
	m.ObserveJob("analyze", nil)
	m.ObserveJob("analyze", errors.New("boom"))

	assert.Equal(t, 2.0, value(t, reg, "fxsignal_errors_total", map[string]string{"stage": "compute"}))
	assert.Equal(t, -0.05, value(t, reg, "fxsignal_backtest_return_ratio", map[string]string{"symbol": "GBP_USD", "strategy": "confluence"}))
	assert.Equal(t, 1.0, value(t, reg, "fxsignal_job_runs_total", map[string]string{"job": "analyze", "status": "error"}))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAnalysis("X", 1, strategies.Signal{}, 0)
		m.ObserveError("load")
		m.ObserveBacktest("X", "noop", 0)
		m.ObserveJob("j", nil)
	})
}

func TestDoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
	assert.NotPanics(t, func() { NewMetrics(nil) })
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObserveError("load")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fxsignal_errors_total{stage="load"} 1`)
}

func TestServe(t *testing.T) {
	srv := Serve("127.0.0.1:0", prometheus.NewRegistry())
	defer srv.Close()
	assert.NotNil(t, srv.Handler)
}

// Package metrics exposes Prometheus collectors for analysis runs.
package metrics

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rustyeddy/fxsignal/strategies"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	SeriesTotal    *prometheus.CounterVec // labels: symbol
	BarsTotal      prometheus.Counter
	SignalsTotal   *prometheus.CounterVec // labels: symbol, action
	Confidence     *prometheus.GaugeVec   // labels: symbol
	LastSignal     *prometheus.GaugeVec   // labels: symbol; value is the Action
	ErrorsTotal    *prometheus.CounterVec // labels: stage
	AnalyzeDur     prometheus.Histogram
	BacktestReturn *prometheus.GaugeVec   // labels: symbol, strategy
	JobRunsTotal   *prometheus.CounterVec // labels: job, status
}

// NewMetrics builds the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SeriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxsignal_series_analyzed_total",
			Help: "Series run through the indicator and decision engines",
		}, []string{"symbol"}),
		BarsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fxsignal_bars_total",
			Help: "Bars enriched with indicators",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxsignal_signals_total",
			Help: "Latest-bar signals emitted, by action",
		}, []string{"symbol", "action"}),
		Confidence: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fxsignal_signal_confidence",
			Help: "Confidence of the latest signal (0-100)",
		}, []string{"symbol"}),
		LastSignal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fxsignal_signal_action",
			Help: "Latest action: 0=HOLD 1=BUY 2=SELL 3=WAIT",
		}, []string{"symbol"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxsignal_errors_total",
			Help: "Failures by pipeline stage",
		}, []string{"stage"}),
		AnalyzeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fxsignal_analyze_duration_seconds",
			Help:    "Time to compute indicators and decide one series",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		BacktestReturn: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fxsignal_backtest_return_ratio",
			Help: "Compounded return of the latest backtest as a fraction",
		}, []string{"symbol", "strategy"}),
		JobRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fxsignal_job_runs_total",
			Help: "Scheduled job runs by outcome",
		}, []string{"job", "status"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.SeriesTotal,
			m.BarsTotal,
			m.SignalsTotal,
			m.Confidence,
			m.LastSignal,
			m.ErrorsTotal,
			m.AnalyzeDur,
			m.BacktestReturn,
			m.JobRunsTotal,
		)
	}
	return m
}

// ObserveAnalysis records one analysed series and its latest signal.
func (m *Metrics) ObserveAnalysis(symbol string, bars int, sig strategies.Signal, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SeriesTotal.WithLabelValues(symbol).Inc()
	m.BarsTotal.Add(float64(bars))
	m.SignalsTotal.WithLabelValues(symbol, sig.Action.String()).Inc()
	m.Confidence.WithLabelValues(symbol).Set(sig.Confidence)
	m.LastSignal.WithLabelValues(symbol).Set(float64(sig.Action))
	m.AnalyzeDur.Observe(elapsed.Seconds())
}

// ObserveError counts a failure in stage ("load", "compute", "decide", ...).
func (m *Metrics) ObserveError(stage string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(stage).Inc()
}

// ObserveBacktest records the total return of a simulated run.
func (m *Metrics) ObserveBacktest(symbol, strategy string, totalReturn float64) {
	if m == nil {
		return
	}
	m.BacktestReturn.WithLabelValues(symbol, strategy).Set(totalReturn)
}

// ObserveJob counts a scheduled job run.
func (m *Metrics) ObserveJob(job string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
}

// Handler serves g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes g on addr at /metrics in the background.
func Serve(addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "addr", addr, "err", err)
		}
	}()
	return srv
}

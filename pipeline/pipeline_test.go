package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fxsignal/indicators"
	"github.com/rustyeddy/fxsignal/internal/fixtures"
	"github.com/rustyeddy/fxsignal/journal"
	"github.com/rustyeddy/fxsignal/market"
	"github.com/rustyeddy/fxsignal/metrics"
	"github.com/rustyeddy/fxsignal/report"
	"github.com/rustyeddy/fxsignal/risk"
	"github.com/rustyeddy/fxsignal/strategies"
)

func newAnalyzer(t *testing.T, opts Options) *Analyzer {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	a, err := New(opts)
	require.NoError(t, err)
	return a
}

func TestAnalyzeRising(t *testing.T) {
	a := newAnalyzer(t, Options{})

	rep, err := a.Analyze(context.Background(), Input{Symbol: "EUR_USD", Series: fixtures.Trend(250, 1.0, 0.001)})
	require.NoError(t, err)

	assert.Equal(t, "EUR_USD", rep.Symbol)
	assert.Equal(t, "CONFLUENCE", rep.Strategy)
	assert.Equal(t, 250, rep.Bars)
	assert.Equal(t, strategies.Buy, rep.Signal.Action)
	assert.InDelta(t, 1.25, rep.Signal.Entry, 1e-12)
	assert.Equal(t, "Uptrend", rep.Assessment.Trend)
	assert.Equal(t, "Bullish (EMA20 > EMA50)", rep.Assessment.EMA)
	assert.Nil(t, rep.Convergence)
	assert.Equal(t, rep.Signal.Time, rep.Last.Time)
}

func TestAnalyzeMatchesDecide(t *testing.T) {
	s := fixtures.RandomWalk(400, 7, 1.1, 0.004)
	cfg := strategies.DefaultConfig().WithRequireMACD(true)
	a := newAnalyzer(t, Options{Strategy: "confluence", Config: cfg})

	rep, err := a.Analyze(context.Background(), Input{Symbol: "GBP_USD", Series: s})
	require.NoError(t, err)

	bars, err := indicators.Compute(s, cfg.Indicators)
	require.NoError(t, err)
	want, err := strategies.Decide(bars[len(bars)-1], cfg)
	require.NoError(t, err)
	assert.Equal(t, want, rep.Signal)
}

func TestRunKeepsInputOrder(t *testing.T) {
	reg := prometheus.NewRegistry()
	log := journal.NewSignalLog(10)
	a := newAnalyzer(t, Options{Workers: 2, Metrics: metrics.NewMetrics(reg), SignalLog: log})

	inputs := []Input{
		{Symbol: "UP", Series: fixtures.Trend(250, 1.0, 0.001)},
		{Symbol: "DOWN", Series: fixtures.Trend(250, 1.3, -0.001)},
		{Symbol: "SHORT", Series: fixtures.Trend(20, 1.0, 0.001)},
		{Symbol: "FLAT", Series: fixtures.Oscillating(250, 1.1, 0.0001)},
	}
	reps, err := a.Run(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, reps, 4)

	assert.Equal(t, "UP", reps[0].Symbol)
	assert.Equal(t, strategies.Buy, reps[0].Signal.Action)
	assert.Equal(t, "DOWN", reps[1].Symbol)
	assert.Equal(t, strategies.Sell, reps[1].Signal.Action)
	assert.Equal(t, "SHORT", reps[2].Symbol)
	assert.Equal(t, strategies.Wait, reps[2].Signal.Action)
	assert.Equal(t, report.NA, reps[2].Assessment.Trend)
	assert.Equal(t, "FLAT", reps[3].Symbol)
	assert.NotEqual(t, strategies.Wait, reps[3].Signal.Action)

	assert.Equal(t, 4, log.Len())
	require.Len(t, log.ForSymbol("DOWN"), 1)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var series float64
	for _, mf := range mfs {
		if mf.GetName() == "fxsignal_series_analyzed_total" {
			for _, m := range mf.GetMetric() {
				series += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 4.0, series)
}

func TestRunEmpty(t *testing.T) {
	reps, err := newAnalyzer(t, Options{}).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, reps)
}

func TestAnalyzeErrors(t *testing.T) {
	a := newAnalyzer(t, Options{})
	ctx := context.Background()

	_, err := a.Analyze(ctx, Input{Symbol: "EMPTY"})
	assert.ErrorIs(t, err, market.ErrEmptySeries)
	assert.True(t, strings.HasPrefix(err.Error(), "EMPTY: "))

	s := fixtures.Trend(30, 1.0, 0.001)
	s[12].Close = math.NaN()
	_, err = a.Analyze(ctx, Input{Symbol: "HOLE", Series: s})
	var mfe *indicators.MissingFieldError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, 12, mfe.Index)
	assert.Equal(t, "close", mfe.Field)

	_, err = a.Run(ctx, []Input{{Symbol: "OK", Series: fixtures.Trend(30, 1.0, 0.001)}, {Symbol: "HOLE", Series: s}})
	assert.ErrorContains(t, err, "HOLE")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = a.Analyze(cancelled, Input{Symbol: "UP", Series: fixtures.Trend(30, 1.0, 0.001)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{Strategy: "martingale"})
	assert.ErrorContains(t, err, "unknown strategy")

	_, err = New(Options{Config: strategies.DefaultConfig().WithRiskReward(-1)})
	var ice *strategies.InvalidConfigurationError
	assert.True(t, errors.As(err, &ice))

	_, err = New(Options{Timeframes: []time.Duration{0}})
	assert.Error(t, err)

	a := newAnalyzer(t, Options{})
	assert.Equal(t, DefaultStrategy, a.Options().Strategy)
	assert.Equal(t, strategies.DefaultConfig(), a.Options().Config)
	assert.Positive(t, a.Options().Workers)
}

func TestOtherStrategy(t *testing.T) {
	a := newAnalyzer(t, Options{Strategy: "ema-cross"})
	rep, err := a.Analyze(context.Background(), Input{Symbol: "EUR_USD", Series: fixtures.Trend(250, 1.0, 0.001)})
	require.NoError(t, err)
	assert.Equal(t, "EMA_CROSS(20,50)", rep.Strategy)
	assert.Equal(t, "Uptrend", rep.Assessment.Trend)
}

func TestConverge(t *testing.T) {
	days := []time.Duration{24 * time.Hour, 48 * time.Hour}
	a := newAnalyzer(t, Options{Timeframes: days})
	ctx := context.Background()

	rep, err := a.Analyze(ctx, Input{Symbol: "UP", Series: fixtures.Trend(600, 1.0, 0.001)})
	require.NoError(t, err)
	require.NotNil(t, rep.Convergence)
	assert.Equal(t, Bullish, rep.Convergence.Verdict)
	require.Len(t, rep.Convergence.Frames, 2)
	assert.Equal(t, "D1", rep.Convergence.Frames[0].Timeframe)
	assert.Equal(t, 600, rep.Convergence.Frames[0].Bars)
	assert.Equal(t, "D2", rep.Convergence.Frames[1].Timeframe)
	assert.InDelta(t, 300, rep.Convergence.Frames[1].Bars, 1)

	c, err := a.Converge(ctx, Input{Symbol: "DOWN", Series: fixtures.Trend(600, 1.6, -0.001)}, days)
	require.NoError(t, err)
	assert.Equal(t, Bearish, c.Verdict)

	c, err = a.Converge(ctx, Input{Symbol: "SHORT", Series: fixtures.Trend(300, 1.0, 0.001)}, days)
	require.NoError(t, err)
	assert.Equal(t, Mixed, c.Verdict, "the 2-day frame is still warming up")
	assert.Equal(t, strategies.Wait, c.Frames[1].Action)

	_, err = a.Converge(ctx, Input{Symbol: "UP"}, days)
	assert.ErrorIs(t, err, market.ErrEmptySeries)
	_, err = a.Converge(ctx, Input{Symbol: "UP"}, nil)
	assert.Error(t, err)
}

func TestVerdict(t *testing.T) {
	f := func(as ...strategies.Action) []report.Frame {
		out := make([]report.Frame, len(as))
		for i, a := range as {
			out[i].Action = a
		}
		return out
	}
	assert.Equal(t, Bullish, Verdict(f(strategies.Buy, strategies.Buy)))
	assert.Equal(t, Bearish, Verdict(f(strategies.Sell)))
	assert.Equal(t, Mixed, Verdict(f(strategies.Buy, strategies.Sell)))
	assert.Equal(t, Mixed, Verdict(f(strategies.Buy, strategies.Hold)))
	assert.Equal(t, Mixed, Verdict(nil))
}

func TestAnalyzeSizesTrades(t *testing.T) {
	acct := &risk.Account{Currency: "USD", Equity: 10000, RiskPct: 0.01}
	a := newAnalyzer(t, Options{Account: acct})

	rep, err := a.Analyze(context.Background(), Input{Symbol: "EUR_USD", Series: fixtures.Trend(250, 1.0, 0.001)})
	require.NoError(t, err)
	require.Equal(t, strategies.Buy, rep.Signal.Action)
	require.NotNil(t, rep.Plan)
	assert.InDelta(t, 100.0, rep.Plan.RiskAmount, 1e-9)
	assert.Positive(t, rep.Plan.Units)
	assert.InDelta(t, 2.0, rep.Plan.RR, 1e-9)

	// Unknown symbols are analysed but not sized.
	rep, err = a.Analyze(context.Background(), Input{Symbol: "SPX500", Series: fixtures.Trend(250, 1.0, 0.001)})
	require.NoError(t, err)
	assert.Nil(t, rep.Plan)

	_, err = New(Options{Account: &risk.Account{Currency: "USD"}})
	assert.Error(t, err)
}

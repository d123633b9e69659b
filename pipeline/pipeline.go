// Package pipeline analyses independent series in parallel: indicators,
// the latest signal, a plain-language assessment and, optionally, a
// multi-timeframe verdict per series.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/fxsignal/indicators"
	"github.com/rustyeddy/fxsignal/journal"
	"github.com/rustyeddy/fxsignal/market"
	"github.com/rustyeddy/fxsignal/metrics"
	"github.com/rustyeddy/fxsignal/report"
	"github.com/rustyeddy/fxsignal/risk"
	"github.com/rustyeddy/fxsignal/strategies"
)

// DefaultStrategy is used when Options.Strategy is empty.
const DefaultStrategy = "confluence"

// Input is one named series.
type Input struct {
	Symbol string
	Series market.Series
}

type Options struct {
	// Strategy is a registry name; see strategies.Names.
	Strategy string
	// Config defaults to strategies.DefaultConfig when zero.
	Config strategies.Config
	// Timeframes adds a convergence verdict over these bucket widths.
	Timeframes []time.Duration
	// Account, when set, sizes every BUY/SELL into Report.Plan.
	Account *risk.Account
	// Workers bounds concurrent series; <= 0 means one per CPU.
	Workers int

	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	SignalLog *journal.SignalLog
}

// Analyzer is safe for concurrent use; each call builds its own strategy.
type Analyzer struct {
	opts Options
	log  *slog.Logger
}

// New validates opts and returns an Analyzer.
func New(opts Options) (*Analyzer, error) {
	if opts.Strategy == "" {
		opts.Strategy = DefaultStrategy
	}
	if opts.Config == (strategies.Config{}) {
		opts.Config = strategies.DefaultConfig()
	}
	if _, err := strategies.New(opts.Strategy, opts.Config); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	for _, d := range opts.Timeframes {
		if d <= 0 {
			return nil, fmt.Errorf("pipeline: timeframe must be positive, got %s", d)
		}
	}
	if opts.Account != nil {
		if err := opts.Account.Validate(); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Analyzer{opts: opts, log: l}, nil
}

// Options returns the effective options.
func (a *Analyzer) Options() Options { return a.opts }

// Analyze runs one series through the indicator engine and the strategy
// and returns the signal for its last bar.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (report.Report, error) {
	start := time.Now()

	rep, err := a.analyze(ctx, in)
	if err != nil {
		a.log.Warn("analysis failed", "symbol", in.Symbol, "bars", len(in.Series), "err", err)
		return report.Report{}, fmt.Errorf("%s: %w", in.Symbol, err)
	}

	if len(a.opts.Timeframes) > 0 {
		c, err := a.Converge(ctx, in, a.opts.Timeframes)
		if err != nil {
			a.opts.Metrics.ObserveError("converge")
			return report.Report{}, fmt.Errorf("%s: %w", in.Symbol, err)
		}
		rep.Convergence = c
	}

	elapsed := time.Since(start)
	a.opts.Metrics.ObserveAnalysis(in.Symbol, len(in.Series), rep.Signal, elapsed)
	if a.opts.SignalLog != nil {
		a.opts.SignalLog.Append(in.Symbol, rep.Signal)
	}
	a.log.Info("analysed",
		"symbol", in.Symbol,
		"bars", len(in.Series),
		"action", rep.Signal.Action.String(),
		"confidence", rep.Signal.Confidence,
		"elapsed", elapsed,
	)
	return rep, nil
}

func (a *Analyzer) analyze(ctx context.Context, in Input) (report.Report, error) {
	if err := in.Series.Validate(); err != nil {
		a.opts.Metrics.ObserveError("load")
		return report.Report{}, err
	}

	cfg := a.opts.Config
	bars, err := indicators.Compute(in.Series, cfg.Indicators)
	if err != nil {
		a.opts.Metrics.ObserveError("compute")
		return report.Report{}, err
	}

	sig, name, err := a.latest(ctx, in.Series)
	if err != nil {
		a.opts.Metrics.ObserveError("decide")
		return report.Report{}, err
	}

	if st := in.Series.GapStats(0); st.SuspiciousGaps > 0 {
		a.log.Warn("series has gaps",
			"symbol", in.Symbol,
			"gaps", st.GapCount,
			"suspicious", st.SuspiciousGaps,
			"missing", st.Missing,
		)
	}

	last := bars[len(bars)-1]
	rep := report.Report{
		Symbol:     in.Symbol,
		Strategy:   name,
		Bars:       len(in.Series),
		Last:       last,
		Signal:     sig,
		Assessment: report.Assess(last, cfg.Indicators),
	}
	if a.opts.Account != nil && sig.IsTrade() {
		plan, err := risk.Size(in.Symbol, sig, *a.opts.Account)
		if err != nil {
			a.log.Debug("no position size", "symbol", in.Symbol, "err", err)
		} else {
			rep.Plan = &plan
		}
	}
	return rep, nil
}

// latest feeds s through a fresh strategy and returns the last signal.
func (a *Analyzer) latest(ctx context.Context, s market.Series) (strategies.Signal, string, error) {
	strat, err := strategies.New(a.opts.Strategy, a.opts.Config)
	if err != nil {
		return strategies.Signal{}, "", err
	}

	var sig strategies.Signal
	for _, b := range s {
		if err := ctx.Err(); err != nil {
			return strategies.Signal{}, "", err
		}
		if sig, err = strat.Update(b); err != nil {
			return strategies.Signal{}, "", err
		}
	}
	return sig, strat.Name(), nil
}

// Run analyses inputs concurrently, bounded by Options.Workers. Reports are
// returned in input order. The first failure cancels the rest.
func (a *Analyzer) Run(ctx context.Context, inputs []Input) ([]report.Report, error) {
	out := make([]report.Report, len(inputs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(a.opts.Workers)
	for i, in := range inputs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rep, err := a.Analyze(ctx, in)
			if err != nil {
				return err
			}
			out[i] = rep
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

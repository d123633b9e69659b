package backtest

import (
	"context"
	"fmt"

	"github.com/rustyeddy/fxsignal/market"
	"github.com/rustyeddy/fxsignal/strategies"
)

// Runner drives a streaming strategy over a bar series and simulates the
// signals it emits.
type Runner struct {
	Series   market.Series
	Strategy strategies.Strategy
	Options  Options
}

// Run executes the backtest loop:
//  1. read next bar
//  2. strategy.Update(bar)
//  3. collect the signal
//
// then simulates the collected signals. The strategy is reset first, so a
// Runner can be run more than once. ctx is checked between bars.
func (r *Runner) Run(ctx context.Context) (Result, []strategies.Signal, error) {
	if r.Strategy == nil {
		return Result{}, nil, fmt.Errorf("backtest: Strategy is required")
	}
	if err := r.Series.Validate(); err != nil {
		return Result{}, nil, fmt.Errorf("backtest: %w", err)
	}

	r.Strategy.Reset()
	signals := make([]strategies.Signal, 0, len(r.Series))
	for _, b := range r.Series {
		if err := ctx.Err(); err != nil {
			return Result{}, nil, err
		}
		sig, err := r.Strategy.Update(b)
		if err != nil {
			return Result{}, nil, fmt.Errorf("backtest: %s: %w", r.Strategy.Name(), err)
		}
		signals = append(signals, sig)
	}
	return Simulate(signals, r.Options), signals, nil
}

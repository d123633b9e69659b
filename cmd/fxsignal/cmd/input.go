package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxsignal/market"
	"github.com/rustyeddy/fxsignal/pipeline"
	"github.com/rustyeddy/fxsignal/strategies"
)

// symbolFromPath derives the instrument from a bar file name, so
// "data/eurusd_d1.csv" and "EUR_USD_H1.csv" are both EUR_USD.
func symbolFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.IndexAny(base, "-."); i > 0 {
		base = base[:i]
	}
	if parts := strings.Split(base, "_"); len(parts) > 1 && len(parts[0]) == 6 {
		base = parts[0]
	} else if len(parts) > 2 && len(parts[0]) == 3 && len(parts[1]) == 3 {
		base = parts[0] + parts[1]
	}
	return market.NormalizeSymbol(base)
}

func loadInputs(paths []string) ([]pipeline.Input, error) {
	inputs := make([]pipeline.Input, 0, len(paths))
	for _, p := range paths {
		s, err := market.LoadCSV(p)
		if err != nil {
			return nil, fmt.Errorf("load bars: %w", err)
		}
		inputs = append(inputs, pipeline.Input{Symbol: symbolFromPath(p), Series: s})
	}
	return inputs, nil
}

// decisionFlags are the strategy overrides shared by analyze, label,
// backtest, optimize and watch.
type decisionFlags struct {
	strategy    string
	requireMACD bool
	rr          float64
	atrMult     float64
}

func (f *decisionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "", "strategy name ("+strings.Join(strategies.Names(), ", ")+")")
	cmd.Flags().BoolVar(&f.requireMACD, "require-macd", false, "gate BUY/SELL on MACD vs its signal line")
	cmd.Flags().Float64Var(&f.rr, "rr", 0, "take profit as a multiple of stop distance")
	cmd.Flags().Float64Var(&f.atrMult, "atr-mult", 0, "stop distance in ATRs")
}

// resolve applies the flags that were set on top of the loaded config.
func (f *decisionFlags) resolve(cmd *cobra.Command) (string, strategies.Config) {
	name := cfg.Strategy.Name
	sc := cfg.StrategyConfig()
	if cmd.Flags().Changed("strategy") {
		name = f.strategy
	}
	if cmd.Flags().Changed("require-macd") {
		sc = sc.WithRequireMACD(f.requireMACD)
	}
	if cmd.Flags().Changed("rr") {
		sc = sc.WithRiskReward(f.rr)
	}
	if cmd.Flags().Changed("atr-mult") {
		sc = sc.WithATRMultiplier(f.atrMult)
	}
	return name, sc
}

func parseTimeframes(names []string) ([]time.Duration, error) {
	out := make([]time.Duration, 0, len(names))
	for _, n := range names {
		d, err := market.ParseTimeframe(n)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// timeframeOf names the bar width of s, or "" when it has no standard name.
func timeframeOf(s market.Series) string {
	name, err := market.TimeframeName(s.Interval())
	if err != nil {
		return ""
	}
	return name
}

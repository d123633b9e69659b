package backtest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/fxsignal/market"
	"github.com/rustyeddy/fxsignal/strategies"
)

// DefaultStrategy is the strategy Optimize runs when none is named.
const DefaultStrategy = "confluence"

// Grid lists the values to try per parameter. An empty list keeps the base
// configuration's value.
type Grid struct {
	EMAFast     []int  `json:"ema_fast" yaml:"ema_fast"`
	EMAMid      []int  `json:"ema_mid" yaml:"ema_mid"`
	RSI         []int  `json:"rsi" yaml:"rsi"`
	RequireMACD []bool `json:"require_macd" yaml:"require_macd"`

	MAPeriod []int     `json:"ma_period" yaml:"ma_period"`
	RSIBuy   []float64 `json:"rsi_buy" yaml:"rsi_buy"`
	RSISell  []float64 `json:"rsi_sell" yaml:"rsi_sell"`
}

// DefaultGrid sweeps the confluence decision.
func DefaultGrid() Grid {
	return Grid{
		EMAFast:     []int{10, 20, 30},
		EMAMid:      []int{50, 100},
		RSI:         []int{7, 14, 21},
		RequireMACD: []bool{false, true},
	}
}

// MAGrid sweeps the ma-rsi thresholds: MA length 10, 20 and 50 against
// RSI buy levels 25, 30 and 35 and sell levels 65, 70 and 75.
func MAGrid() Grid {
	return Grid{
		MAPeriod: []int{10, 20, 50},
		RSIBuy:   []float64{25, 30, 35},
		RSISell:  []float64{65, 70, 75},
	}
}

// GridFor returns the default grid for a registered strategy name.
func GridFor(strategy string) Grid {
	if strings.EqualFold(strings.TrimSpace(strategy), "ma-rsi") {
		return MAGrid()
	}
	return DefaultGrid()
}

// Candidate is one evaluated grid point.
type Candidate struct {
	Strategy string
	Config   strategies.Config
	Result   Result
}

type OptimizeOptions struct {
	// Strategy names the registered strategy to run; empty means
	// DefaultStrategy.
	Strategy string
	// Workers bounds concurrent evaluations; <= 0 means unbounded.
	Workers  int
	Simulate Options
}

// Optimize runs the strategy over s once per grid combination and returns
// the results best first: by total return, then win rate, then trade count.
// Combinations the strategy rejects, such as fast >= mid EMA or an RSI buy
// level at or above the sell level, are skipped.
func Optimize(ctx context.Context, s market.Series, base strategies.Config, g Grid, opts OptimizeOptions) ([]Candidate, error) {
	name := opts.Strategy
	if name == "" {
		name = DefaultStrategy
	}
	if _, err := strategies.New(name, base); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	configs := expand(name, base, g)
	if len(configs) == 0 {
		return nil, fmt.Errorf("optimize: grid has no valid combination")
	}

	out := make([]Candidate, len(configs))
	eg, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		eg.SetLimit(opts.Workers)
	}
	for i, cfg := range configs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			strat, err := strategies.New(name, cfg)
			if err != nil {
				return err
			}
			r := Runner{Series: s, Strategy: strat, Options: opts.Simulate}
			res, _, err := r.Run(ctx)
			if err != nil {
				return err
			}
			out[i] = Candidate{Strategy: name, Config: cfg, Result: res}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Result, out[j].Result
		if a.TotalReturn != b.TotalReturn {
			return a.TotalReturn > b.TotalReturn
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		return a.TotalTrades > b.TotalTrades
	})
	return out, nil
}

func expand(name string, base strategies.Config, g Grid) []strategies.Config {
	p := base.Indicators
	fasts := orDefault(g.EMAFast, p.EMAFast)
	mids := orDefault(g.EMAMid, p.EMAMid)
	rsis := orDefault(g.RSI, p.RSI)
	macds := orDefault(g.RequireMACD, base.RequireMACD)
	periods := orDefault(g.MAPeriod, base.MA.Period)
	buys := orDefault(g.RSIBuy, base.MA.RSIBuy)
	sells := orDefault(g.RSISell, base.MA.RSISell)

	var out []strategies.Config
	for _, f := range fasts {
		for _, m := range mids {
			if f >= m {
				continue
			}
			for _, r := range rsis {
				for _, macd := range macds {
					for _, period := range periods {
						for _, buy := range buys {
							for _, sell := range sells {
								ip := p
								ip.EMAFast, ip.EMAMid, ip.RSI = f, m, r
								mc := base.MA
								mc.Period, mc.RSIBuy, mc.RSISell = period, buy, sell
								cfg := base.WithParams(ip).WithRequireMACD(macd).WithMA(mc)
								if _, err := strategies.New(name, cfg); err != nil {
									continue
								}
								out = append(out, cfg)
							}
						}
					}
				}
			}
		}
	}
	return out
}

func orDefault[T any](v []T, def T) []T {
	if len(v) == 0 {
		return []T{def}
	}
	return v
}

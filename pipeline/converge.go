package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/fxsignal/market"
	"github.com/rustyeddy/fxsignal/report"
	"github.com/rustyeddy/fxsignal/strategies"
)

// Convergence verdicts.
const (
	Bullish = "BULLISH"
	Bearish = "BEARISH"
	Mixed   = "MIXED"
)

// Converge resamples in to each timeframe, runs the strategy on every
// resampled series and combines the latest actions: BULLISH when every
// frame says BUY, BEARISH when every frame says SELL, MIXED otherwise.
func (a *Analyzer) Converge(ctx context.Context, in Input, frames []time.Duration) (*report.Convergence, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("converge: no timeframes")
	}

	c := &report.Convergence{Frames: make([]report.Frame, 0, len(frames))}
	for _, d := range frames {
		s, err := market.Resample(in.Series, d)
		if err != nil {
			return nil, fmt.Errorf("converge %s: %w", d, err)
		}
		sig, _, err := a.latest(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("converge %s: %w", d, err)
		}
		c.Frames = append(c.Frames, report.Frame{
			Timeframe: frameName(d),
			Bars:      len(s),
			Action:    sig.Action,
			Reason:    sig.Reason,
		})
	}
	c.Verdict = Verdict(c.Frames)
	return c, nil
}

// Verdict combines per-frame actions.
func Verdict(frames []report.Frame) string {
	if len(frames) == 0 {
		return Mixed
	}
	buys, sells := 0, 0
	for _, f := range frames {
		switch f.Action {
		case strategies.Buy:
			buys++
		case strategies.Sell:
			sells++
		}
	}
	switch len(frames) {
	case buys:
		return Bullish
	case sells:
		return Bearish
	}
	return Mixed
}

func frameName(d time.Duration) string {
	if name, err := market.TimeframeName(d); err == nil {
		return name
	}
	return d.String()
}

package strategies

import (
	"github.com/rustyeddy/fxsignal/indicators"
)

// LabelSeries applies Decide to every bar and returns a parallel slice of
// signals. Bars before the longest indicator lookback are labelled WAIT.
func LabelSeries(bars []indicators.EnrichedBar, cfg Config) ([]Signal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	warm := cfg.Indicators.Warmup()
	out := make([]Signal, len(bars))
	for i, bar := range bars {
		if i < warm {
			out[i] = waitSignal(bar)
			continue
		}
		out[i] = decide(bar, cfg)
	}
	return out, nil
}

func waitSignal(bar indicators.EnrichedBar) Signal {
	return Signal{Time: bar.Time, Action: Wait, Entry: bar.Close, Reason: ReasonInsufficientData}
}

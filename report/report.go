package report

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/fxsignal/indicators"
	"github.com/rustyeddy/fxsignal/market"
	"github.com/rustyeddy/fxsignal/risk"
	"github.com/rustyeddy/fxsignal/strategies"
)

// Report is the outcome of analysing one series.
type Report struct {
	Symbol     string
	Strategy   string
	Bars       int
	Last       indicators.EnrichedBar
	Signal     strategies.Signal
	Assessment Assessment
	// Plan sizes the signal for an account; nil when not requested or
	// the signal carries no stop.
	Plan *risk.Plan
	// Convergence is the multi-timeframe verdict, empty when not requested.
	Convergence *Convergence
}

// Convergence summarises the decision on several timeframes.
type Convergence struct {
	Verdict string
	Frames  []Frame
}

// Frame is the decision on one timeframe.
type Frame struct {
	Timeframe string
	Bars      int
	Action    strategies.Action
	Reason    string
}

// Places returns the display precision for the report's symbol.
func (r Report) Places() int32 {
	return int32(market.Precision(r.Symbol))
}

// Write renders r as a block of aligned lines.
func Write(w io.Writer, r Report) error {
	p := r.Places()
	s := r.Signal

	lines := []struct{ k, v string }{
		{"Signal", fmt.Sprintf("%s (confidence %.0f/100)", s.Action, s.Confidence)},
		{"Entry", Price(s.Entry, p)},
		{"Stop Loss", PricePtr(s.StopLoss, p)},
		{"Take Profit", PricePtr(s.TakeProfit, p)},
		{"Reason", s.Reason},
		{"Trend", r.Assessment.Trend},
		{"EMA", r.Assessment.EMA},
		{"MACD", r.Assessment.MACD},
		{"RSI", r.Assessment.RSI},
		{"Bollinger", r.Assessment.Bollinger},
		{"Pivot", r.Assessment.Pivot},
		{"ATR", Price(r.Last.ATR, p)},
	}

	title := r.Symbol
	if r.Strategy != "" {
		title += " [" + r.Strategy + "]"
	}
	if _, err := fmt.Fprintf(w, "%s  %s  (%d bars)\n", title, s.Time.UTC().Format(time.RFC3339), r.Bars); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "  %-12s %s\n", l.k+":", l.v); err != nil {
			return err
		}
	}

	if pl := r.Plan; pl != nil {
		if _, err := fmt.Fprintf(w, "  %-12s %.0f units (risk %.2f %s, loss at stop %.2f, %.1f pips, RR %.2f)\n",
			"Size:", pl.Units, pl.RiskAmount, pl.Currency, pl.MaxLoss, pl.StopPips, pl.RR); err != nil {
			return err
		}
	}
	if c := r.Convergence; c != nil {
		if _, err := fmt.Fprintf(w, "  %-12s %s\n", "Convergence:", c.Verdict); err != nil {
			return err
		}
		for _, f := range c.Frames {
			if _, err := fmt.Fprintf(w, "    %-6s %-5s %4d bars  %s\n", f.Timeframe, f.Action, f.Bars, f.Reason); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// WriteAll writes each report in order.
func WriteAll(w io.Writer, rs []Report) error {
	for _, r := range rs {
		if err := Write(w, r); err != nil {
			return err
		}
	}
	return nil
}

// WriteSignals prints one line per labelled bar.
func WriteSignals(w io.Writer, symbol string, sigs []strategies.Signal) error {
	p := int32(market.Precision(symbol))
	for _, s := range sigs {
		_, err := fmt.Fprintf(w, "%s  %-4s  %3.0f  %s  SL %s  TP %s  %s\n",
			s.Time.UTC().Format("2006-01-02 15:04"), s.Action, s.Confidence,
			Price(s.Entry, p), PricePtr(s.StopLoss, p), PricePtr(s.TakeProfit, p), s.Reason)
		if err != nil {
			return err
		}
	}
	return nil
}

// Package backtest replays labelled signals through a single-position,
// long-only simulator and summarises the completed trades.
package backtest

import (
	"time"

	"github.com/rustyeddy/fxsignal/strategies"
)

// ReasonSellSignal and ReasonEndOfSeries are the trade exit reasons.
const (
	ReasonSellSignal  = "sell signal"
	ReasonEndOfSeries = "end of series"
)

// Options controls the simulator.
type Options struct {
	// CloseAtEnd marks a position still open after the last signal to
	// market at that signal's price and counts it as a completed trade.
	// By default it is left open and reported in Result.Open only.
	CloseAtEnd bool `json:"close_at_end" yaml:"close_at_end"`
}

// Position is the single open long position.
type Position struct {
	EntryIndex int
	EntryTime  time.Time
	EntryPrice float64

	// Mark-to-market at the last signal; only set on Result.Open.
	LastPrice  float64
	Unrealized float64
}

// Trade is one completed round trip.
type Trade struct {
	EntryIndex int
	ExitIndex  int
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64

	// Return is (exit - entry) / entry.
	Return float64
	Reason string
}

// Bars is the number of bars the position was held.
func (t Trade) Bars() int { return t.ExitIndex - t.EntryIndex }

func (t Trade) Duration() time.Duration { return t.ExitTime.Sub(t.EntryTime) }

// Result is the outcome of one simulation.
type Result struct {
	// TotalReturn compounds every completed trade: prod(1+r) - 1.
	TotalReturn float64
	// WinRate is wins / TotalTrades as a fraction, 0 with no trades.
	WinRate     float64
	TotalTrades int
	Wins        int
	Losses      int

	Trades []Trade
	Open   *Position

	Start time.Time
	End   time.Time

	Stats Statistics
}

// Simulate walks the signals in order with a Flat/Long state machine.
// BUY while flat opens at the signal's entry price; SELL while long closes.
// BUY while long, SELL while flat, HOLD and WAIT do nothing.
//
// The result depends only on the signals and opts.
func Simulate(signals []strategies.Signal, opts Options) Result {
	var (
		res Result
		pos *Position
	)
	if len(signals) == 0 {
		return res
	}
	res.Start = signals[0].Time
	res.End = signals[len(signals)-1].Time

	for i, s := range signals {
		switch s.Action {
		case strategies.Buy:
			if pos == nil {
				pos = &Position{EntryIndex: i, EntryTime: s.Time, EntryPrice: s.Entry}
			}
		case strategies.Sell:
			if pos != nil {
				res.Trades = append(res.Trades, closePosition(*pos, i, s, ReasonSellSignal))
				pos = nil
			}
		}
	}

	if pos != nil {
		last := signals[len(signals)-1]
		if opts.CloseAtEnd {
			res.Trades = append(res.Trades, closePosition(*pos, len(signals)-1, last, ReasonEndOfSeries))
		} else {
			pos.LastPrice = last.Entry
			pos.Unrealized = (last.Entry - pos.EntryPrice) / pos.EntryPrice
			res.Open = pos
		}
	}

	res.summarize()
	return res
}

func closePosition(p Position, i int, s strategies.Signal, reason string) Trade {
	return Trade{
		EntryIndex: p.EntryIndex,
		ExitIndex:  i,
		EntryTime:  p.EntryTime,
		ExitTime:   s.Time,
		EntryPrice: p.EntryPrice,
		ExitPrice:  s.Entry,
		Return:     (s.Entry - p.EntryPrice) / p.EntryPrice,
		Reason:     reason,
	}
}

func (r *Result) summarize() {
	r.TotalTrades = len(r.Trades)
	growth := 1.0
	for _, t := range r.Trades {
		growth *= 1 + t.Return
		switch {
		case t.Return > 0:
			r.Wins++
		case t.Return < 0:
			r.Losses++
		}
	}
	r.TotalReturn = growth - 1
	if r.TotalTrades > 0 {
		r.WinRate = float64(r.Wins) / float64(r.TotalTrades)
	}
	r.Stats = Calculate(r.Trades)
}

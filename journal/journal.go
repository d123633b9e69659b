// Package journal persists backtest runs and their simulated trades, and
// keeps the in-memory log of emitted signals.
package journal

import (
	"time"
)

// TradeRecord is one completed simulated trade belonging to a run.
type TradeRecord struct {
	TradeID    string
	RunID      string
	Instrument string
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	// Return is the fractional trade return, (exit-entry)/entry.
	Return float64
	Bars   int
	Reason string
}

// Journal stores backtest runs and trades.
type Journal interface {
	RecordRun(BacktestRun) error
	RecordTrade(TradeRecord) error
	Close() error
}

// Record stores a run followed by its trades.
func Record(j Journal, run BacktestRun, trades []TradeRecord) error {
	if err := j.RecordRun(run); err != nil {
		return err
	}
	for _, t := range trades {
		if err := j.RecordTrade(t); err != nil {
			return err
		}
	}
	return nil
}

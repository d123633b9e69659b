package backtest

import (
	"math"
	"time"
)

type Statistics struct {
	// P&L, as fractional returns
	GrossProfit  float64
	GrossLoss    float64
	ProfitFactor float64

	// Averages
	AvgReturn float64
	AvgWin    float64
	AvgLoss   float64
	Best      float64
	Worst     float64

	// Risk: largest peak-to-trough fall of the compounded equity curve.
	MaxDrawdown float64

	// Duration
	AvgBars          float64
	AvgTradeDuration time.Duration
}

// Calculate derives statistics from completed trades.
func Calculate(trades []Trade) Statistics {
	var stats Statistics
	if len(trades) == 0 {
		return stats
	}

	var (
		wins, losses  int
		sum           float64
		bars          int
		totalDuration time.Duration
	)
	equity, peak := 1.0, 1.0
	stats.Best, stats.Worst = math.Inf(-1), math.Inf(1)

	for _, t := range trades {
		sum += t.Return
		if t.Return > 0 {
			wins++
			stats.GrossProfit += t.Return
		} else if t.Return < 0 {
			losses++
			stats.GrossLoss += t.Return // already negative
		}
		stats.Best = math.Max(stats.Best, t.Return)
		stats.Worst = math.Min(stats.Worst, t.Return)

		equity *= 1 + t.Return
		if equity > peak {
			peak = equity
		}
		if dd := (peak - equity) / peak; dd > stats.MaxDrawdown {
			stats.MaxDrawdown = dd
		}

		bars += t.Bars()
		totalDuration += t.Duration()
	}

	n := float64(len(trades))
	if stats.GrossLoss != 0 {
		stats.ProfitFactor = stats.GrossProfit / -stats.GrossLoss
	}
	stats.AvgReturn = sum / n
	if wins > 0 {
		stats.AvgWin = stats.GrossProfit / float64(wins)
	}
	if losses > 0 {
		stats.AvgLoss = stats.GrossLoss / float64(losses)
	}
	stats.AvgBars = float64(bars) / n
	stats.AvgTradeDuration = totalDuration / time.Duration(len(trades))
	return stats
}

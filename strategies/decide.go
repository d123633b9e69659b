package strategies

import (
	"fmt"
	"math"
	"strings"

	"github.com/rustyeddy/fxsignal/indicators"
)

const (
	ReasonInsufficientData = "insufficient data"
	ReasonZeroVolatility   = "zero volatility"
)

// Decide classifies one enriched bar.
//
// BUY needs close above the slow EMA, fast EMA above mid EMA and RSI above
// 50 (and MACD above its signal when cfg.RequireMACD). SELL is the mirror.
// Anything else is HOLD. If close, slow EMA, RSI or ATR is undefined the
// result is WAIT with no risk levels.
//
// The only error is an invalid cfg, which is reported before looking at bar.
func Decide(bar indicators.EnrichedBar, cfg Config) (Signal, error) {
	if err := cfg.Validate(); err != nil {
		return Signal{}, err
	}
	return decide(bar, cfg), nil
}

func decide(bar indicators.EnrichedBar, cfg Config) Signal {
	sig := Signal{Time: bar.Time, Action: Wait, Entry: bar.Close}
	for _, v := range []float64{bar.Close, bar.EMASlow, bar.RSI, bar.ATR} {
		if math.IsNaN(v) {
			sig.Reason = ReasonInsufficientData
			return sig
		}
	}

	bull := confirm(bar, cfg, true)
	bear := confirm(bar, cfg, false)

	switch {
	case bull.Trend && bull.EMAOrder && bull.RSI && (!cfg.RequireMACD || bull.MACD):
		sig.Action, sig.Confirmations = Buy, bull
	case bear.Trend && bear.EMAOrder && bear.RSI && (!cfg.RequireMACD || bear.MACD):
		sig.Action, sig.Confirmations = Sell, bear
	default:
		sig.Action = Hold
		sig.Confirmations = bear
		if bar.Close >= bar.EMASlow {
			sig.Confirmations = bull
		}
		sig.Confidence = cfg.Weights.Score(sig.Confirmations)
		sig.Reason = holdReason(bar, cfg)
		return sig
	}

	if bar.ATR <= 0 {
		return Signal{Time: bar.Time, Action: Wait, Entry: bar.Close, Reason: ReasonZeroVolatility}
	}

	dist := cfg.ATRMultiplier * bar.ATR
	if sig.Action == Buy {
		sl := bar.Close - dist
		sig.StopLoss = ptr(sl)
		sig.TakeProfit = ptr(bar.Close + (bar.Close-sl)*cfg.RiskReward)
	} else {
		sl := bar.Close + dist
		sig.StopLoss = ptr(sl)
		sig.TakeProfit = ptr(bar.Close - (sl-bar.Close)*cfg.RiskReward)
	}
	sig.Confidence = cfg.Weights.Score(sig.Confirmations)
	sig.Reason = tradeReason(bar, cfg, sig)
	return sig
}

// confirm evaluates every condition for one side. Comparisons against NaN
// are false, so undefined optional indicators simply do not confirm.
func confirm(bar indicators.EnrichedBar, cfg Config, bullish bool) Confirmations {
	var c Confirmations
	if bullish {
		c.Trend = bar.Close > bar.EMASlow
		c.EMAOrder = bar.EMAFast > bar.EMAMid
		c.RSI = bar.RSI > 50
		c.MACD = bar.MACD > bar.MACDSignal
	} else {
		c.Trend = bar.Close < bar.EMASlow
		c.EMAOrder = bar.EMAFast < bar.EMAMid
		c.RSI = bar.RSI < 50
		c.MACD = bar.MACD < bar.MACDSignal
	}
	c.Volume = volumeBreakout(bar, cfg)
	return c
}

func volumeBreakout(bar indicators.EnrichedBar, cfg Config) bool {
	if cfg.VolumeBreakout == 0 || !bar.HasVolume() || math.IsNaN(bar.VolumeMA) {
		return false
	}
	return bar.Volume > bar.VolumeMA*cfg.VolumeBreakout
}

func tradeReason(bar indicators.EnrichedBar, cfg Config, sig Signal) string {
	p := cfg.Indicators
	above, op := "above", ">"
	if sig.Action == Sell {
		above, op = "below", "<"
	}

	parts := []string{
		fmt.Sprintf("close %s EMA(%d)", above, p.EMASlow),
		fmt.Sprintf("EMA(%d) %s EMA(%d)", p.EMAFast, op, p.EMAMid),
		fmt.Sprintf("RSI %.1f %s 50", bar.RSI, op),
	}
	if sig.Confirmations.MACD {
		parts = append(parts, fmt.Sprintf("MACD %s signal", above))
	}
	if sig.Confirmations.Volume {
		parts = append(parts, "volume breakout")
	}
	side := "bullish"
	if sig.Action == Sell {
		side = "bearish"
	}
	return fmt.Sprintf("%s confluence (%d/5): %s", side, sig.Confirmations.Count(), strings.Join(parts, ", "))
}

func holdReason(bar indicators.EnrichedBar, cfg Config) string {
	trend := "flat"
	switch {
	case bar.Close > bar.EMASlow:
		trend = "up"
	case bar.Close < bar.EMASlow:
		trend = "down"
	}

	order := "undefined"
	switch {
	case bar.EMAFast > bar.EMAMid:
		order = "bullish"
	case bar.EMAFast < bar.EMAMid:
		order = "bearish"
	case bar.EMAFast == bar.EMAMid:
		order = "flat"
	}

	reason := fmt.Sprintf("no confluence: trend %s, EMA order %s, RSI %.1f", trend, order, bar.RSI)
	if cfg.RequireMACD && !math.IsNaN(bar.MACDSignal) {
		reason += fmt.Sprintf(", MACD %.5f vs signal %.5f", bar.MACD, bar.MACDSignal)
	}
	return reason
}

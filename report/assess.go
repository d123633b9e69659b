// Package report renders signals and a descriptive reading of the latest
// indicator values for people.
package report

import (
	"fmt"
	"math"

	"github.com/rustyeddy/fxsignal/indicators"
)

// NA is shown for any reading whose inputs are not yet defined.
const NA = "n/a"

// RSI zone thresholds.
const (
	Overbought = 70.0
	Oversold   = 30.0
)

// Assessment is a plain-language reading of one enriched bar. It never
// influences the decision engine.
type Assessment struct {
	Trend     string
	EMA       string
	MACD      string
	RSI       string
	Bollinger string
	Pivot     string
}

// Assess describes b. p supplies the EMA periods used in the labels.
func Assess(b indicators.EnrichedBar, p indicators.Params) Assessment {
	return Assessment{
		Trend:     trend(b),
		EMA:       emaOrder(b, p),
		MACD:      macdBias(b),
		RSI:       rsiText(b.RSI),
		Bollinger: bandPosition(b),
		Pivot:     pivotPosition(b),
	}
}

func undefined(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func trend(b indicators.EnrichedBar) string {
	switch {
	case undefined(b.Close, b.EMASlow):
		return NA
	case b.Close > b.EMASlow:
		return "Uptrend"
	case b.Close < b.EMASlow:
		return "Downtrend"
	}
	return "Flat"
}

func emaOrder(b indicators.EnrichedBar, p indicators.Params) string {
	if undefined(b.EMAFast, b.EMAMid) {
		return NA
	}
	switch {
	case b.EMAFast > b.EMAMid:
		return fmt.Sprintf("Bullish (EMA%d > EMA%d)", p.EMAFast, p.EMAMid)
	case b.EMAFast < b.EMAMid:
		return fmt.Sprintf("Bearish (EMA%d < EMA%d)", p.EMAFast, p.EMAMid)
	}
	return fmt.Sprintf("Flat (EMA%d = EMA%d)", p.EMAFast, p.EMAMid)
}

func macdBias(b indicators.EnrichedBar) string {
	if undefined(b.MACD, b.MACDSignal) {
		return NA
	}
	if b.MACD > b.MACDSignal {
		return "Bullish"
	}
	return "Bearish"
}

// RSIZone names the zone of an RSI value.
func RSIZone(rsi float64) string {
	switch {
	case math.IsNaN(rsi):
		return NA
	case rsi > Overbought:
		return "Overbought"
	case rsi < Oversold:
		return "Oversold"
	}
	return "Neutral"
}

func rsiText(rsi float64) string {
	if math.IsNaN(rsi) {
		return NA
	}
	return fmt.Sprintf("%.2f (%s)", rsi, RSIZone(rsi))
}

func bandPosition(b indicators.EnrichedBar) string {
	switch {
	case undefined(b.Close, b.BBUpper, b.BBLower):
		return NA
	case b.Close >= b.BBUpper:
		return "Near Upper Band"
	case b.Close <= b.BBLower:
		return "Near Lower Band"
	}
	return "In Range"
}

func pivotPosition(b indicators.EnrichedBar) string {
	switch {
	case undefined(b.Close, b.R1, b.S1):
		return NA
	case b.Close > b.R1:
		return "Above R1"
	case b.Close < b.S1:
		return "Below S1"
	}
	return "Between S1 and R1"
}

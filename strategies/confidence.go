package strategies

import (
	"fmt"
	"math"
)

// Confirmations records which conditions agree with one side of the market.
type Confirmations struct {
	Trend    bool `json:"trend" yaml:"trend"`
	EMAOrder bool `json:"ema_order" yaml:"ema_order"`
	RSI      bool `json:"rsi" yaml:"rsi"`
	MACD     bool `json:"macd" yaml:"macd"`
	Volume   bool `json:"volume" yaml:"volume"`
}

// Count returns the number of confirming conditions.
func (c Confirmations) Count() int {
	n := 0
	for _, ok := range []bool{c.Trend, c.EMAOrder, c.RSI, c.MACD, c.Volume} {
		if ok {
			n++
		}
	}
	return n
}

// Weights is the additive confidence policy. The score is Base plus the
// weight of every confirming condition, capped at Cap. With non-negative
// weights adding a confirmation never lowers the score.
//
// Defaults: base 50, trend 15, EMA order 10, RSI 10, MACD 10, volume 5,
// cap 100. A BUY or SELL always carries the first three, so it scores at
// least 85.
type Weights struct {
	Base     float64 `json:"base" yaml:"base"`
	Trend    float64 `json:"trend" yaml:"trend"`
	EMAOrder float64 `json:"ema_order" yaml:"ema_order"`
	RSI      float64 `json:"rsi" yaml:"rsi"`
	MACD     float64 `json:"macd" yaml:"macd"`
	Volume   float64 `json:"volume" yaml:"volume"`
	Cap      float64 `json:"cap" yaml:"cap"`
}

func DefaultWeights() Weights {
	return Weights{
		Base:     50,
		Trend:    15,
		EMAOrder: 10,
		RSI:      10,
		MACD:     10,
		Volume:   5,
		Cap:      100,
	}
}

func (w Weights) Validate() error {
	for _, v := range []float64{w.Base, w.Trend, w.EMAOrder, w.RSI, w.MACD, w.Volume} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("weights must be non-negative")
		}
	}
	if !(w.Cap > 0) {
		return fmt.Errorf("cap must be positive, got %g", w.Cap)
	}
	return nil
}

// Score returns the confidence for a set of confirmations.
func (w Weights) Score(c Confirmations) float64 {
	s := w.Base
	if c.Trend {
		s += w.Trend
	}
	if c.EMAOrder {
		s += w.EMAOrder
	}
	if c.RSI {
		s += w.RSI
	}
	if c.MACD {
		s += w.MACD
	}
	if c.Volume {
		s += w.Volume
	}
	return math.Min(s, w.Cap)
}

package indicators

import (
	"errors"
	"fmt"
)

var ErrInvalidParams = errors.New("invalid indicator parameters")

// Params holds every window length used by the engine. The zero value is
// not usable; start from DefaultParams.
type Params struct {
	EMAFast int `json:"ema_fast" yaml:"ema_fast"`
	EMAMid  int `json:"ema_mid" yaml:"ema_mid"`
	EMASlow int `json:"ema_slow" yaml:"ema_slow"`

	RSI int `json:"rsi" yaml:"rsi"`

	MACDFast   int `json:"macd_fast" yaml:"macd_fast"`
	MACDSlow   int `json:"macd_slow" yaml:"macd_slow"`
	MACDSignal int `json:"macd_signal" yaml:"macd_signal"`

	BBWindow int     `json:"bb_window" yaml:"bb_window"`
	BBK      float64 `json:"bb_k" yaml:"bb_k"`

	ATR int `json:"atr" yaml:"atr"`

	VolumeWindow int `json:"volume_window" yaml:"volume_window"`
}

// DefaultParams returns 20/50/200 EMA, RSI 14, MACD 12/26/9,
// Bollinger 20 +/- 2, ATR 14 and a 20 bar volume average.
func DefaultParams() Params {
	return Params{
		EMAFast:      20,
		EMAMid:       50,
		EMASlow:      200,
		RSI:          14,
		MACDFast:     12,
		MACDSlow:     26,
		MACDSignal:   9,
		BBWindow:     20,
		BBK:          2,
		ATR:          14,
		VolumeWindow: 20,
	}
}

func (p Params) Validate() error {
	windows := []struct {
		name string
		v    int
	}{
		{"ema_fast", p.EMAFast},
		{"ema_mid", p.EMAMid},
		{"ema_slow", p.EMASlow},
		{"rsi", p.RSI},
		{"macd_fast", p.MACDFast},
		{"macd_slow", p.MACDSlow},
		{"macd_signal", p.MACDSignal},
		{"bb_window", p.BBWindow},
		{"atr", p.ATR},
		{"volume_window", p.VolumeWindow},
	}
	for _, w := range windows {
		if w.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidParams, w.name, w.v)
		}
	}
	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("%w: macd_fast (%d) must be below macd_slow (%d)", ErrInvalidParams, p.MACDFast, p.MACDSlow)
	}
	if p.BBWindow < 2 {
		return fmt.Errorf("%w: bb_window must be at least 2 for a sample deviation, got %d", ErrInvalidParams, p.BBWindow)
	}
	if p.BBK <= 0 {
		return fmt.Errorf("%w: bb_k must be positive, got %g", ErrInvalidParams, p.BBK)
	}
	return nil
}

// Warmup is the number of bars after which every windowed field of an
// EnrichedBar is defined (given complete input data).
func (p Params) Warmup() int {
	n := 0
	for _, w := range []int{
		p.EMAFast,
		p.EMAMid,
		p.EMASlow,
		p.RSI + 1,
		p.MACDSlow + p.MACDSignal - 1,
		p.BBWindow,
		p.ATR + 1,
		p.VolumeWindow,
	} {
		n = max(n, w)
	}
	return n
}

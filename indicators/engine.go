package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/fxsignal/market"
)

// EnrichedBar is a bar plus every derived indicator value at that bar.
// Fields whose lookback is not yet satisfied are NaN; callers must check
// before use.
type EnrichedBar struct {
	market.Bar

	EMAFast float64
	EMAMid  float64
	EMASlow float64

	RSI float64

	MACD       float64
	MACDSignal float64

	BBMid   float64
	BBUpper float64
	BBLower float64

	ATR float64

	Pivot float64
	R1    float64
	S1    float64

	VolumeMA float64
}

// MissingFieldError reports a bar lacking a mandatory field.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("bar %d: missing %s", e.Index, e.Field)
}

// InvalidFieldError reports a mandatory field that is present but unusable.
type InvalidFieldError struct {
	Index int
	Field string
	Value float64
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("bar %d: invalid %s %g", e.Index, e.Field, e.Value)
}

// CheckClose rejects bar i when its close is missing, infinite or not
// positive.
func CheckClose(i int, b market.Bar) error {
	switch {
	case market.Missing(b.Close):
		return &MissingFieldError{Index: i, Field: "close"}
	case math.IsInf(b.Close, 0) || b.Close <= 0:
		return &InvalidFieldError{Index: i, Field: "close", Value: b.Close}
	}
	return nil
}

// Engine feeds bars through the full indicator set one at a time.
type Engine struct {
	emaFast, emaMid, emaSlow *ExponentialMA

	rsi  *RSI
	macd *MACD
	bb   *Bollinger
	atr  *ATR
	vma  *VolumeMA
}

// NewEngine builds an engine for p. Params are not validated here; see
// Compute.
func NewEngine(p Params) *Engine {
	return &Engine{
		emaFast: NewEMA(p.EMAFast),
		emaMid:  NewEMA(p.EMAMid),
		emaSlow: NewEMA(p.EMASlow),
		rsi:     NewRSI(p.RSI),
		macd:    NewMACD(p.MACDFast, p.MACDSlow, p.MACDSignal),
		bb:      NewBollinger(p.BBWindow, p.BBK),
		atr:     NewATR(p.ATR),
		vma:     NewVolumeMA(p.VolumeWindow),
	}
}

// Indicators lists the streaming indicators in the engine.
func (e *Engine) Indicators() []Indicator {
	return []Indicator{e.emaFast, e.emaMid, e.emaSlow, e.rsi, e.macd, e.bb, e.atr, e.vma}
}

func (e *Engine) Reset() {
	for _, ind := range e.Indicators() {
		ind.Reset()
	}
}

// Update consumes the next bar and returns its enriched snapshot. The bar's
// close must be present.
func (e *Engine) Update(b market.Bar) EnrichedBar {
	for _, ind := range e.Indicators() {
		ind.Update(b)
	}

	out := EnrichedBar{
		Bar:        b,
		EMAFast:    e.emaFast.Value(),
		EMAMid:     e.emaMid.Value(),
		EMASlow:    e.emaSlow.Value(),
		RSI:        e.rsi.Value(),
		MACD:       e.macd.Value(),
		MACDSignal: e.macd.Signal(),
		ATR:        e.atr.Value(),
		VolumeMA:   e.vma.Value(),
	}
	out.BBMid, out.BBUpper, out.BBLower = e.bb.Bands()
	out.Pivot, out.R1, out.S1 = Pivot(b)
	return out
}

// Compute returns one EnrichedBar per bar of s. It is a pure function of
// its inputs.
//
// A missing close anywhere fails the whole call with *MissingFieldError,
// an infinite or non-positive one with *InvalidFieldError.
// Missing high/low only blanks the ATR and pivot fields that depend on them.
// Short series are not an error: unfilled lookbacks are NaN.
func Compute(s market.Series, p Params) ([]EnrichedBar, error) {
	if len(s) == 0 {
		return nil, market.ErrEmptySeries
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for i, b := range s {
		if err := CheckClose(i, b); err != nil {
			return nil, err
		}
	}

	e := NewEngine(p)
	out := make([]EnrichedBar, len(s))
	for i, b := range s {
		out[i] = e.Update(b)
	}
	return out, nil
}

package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/fxsignal/market"
)

// ATR is a streaming Average True Range: the simple rolling mean of the
// true range over period bars. The first bar has no previous close and
// produces no true range, so period+1 bars are needed.
//
// A bar missing high or low has an undefined true range; the ATR stays NaN
// until that bar leaves the window.
type ATR struct {
	period      int
	w           *window
	prevClose   float64
	hasPrevious bool
}

// NewATR creates a new Average True Range indicator with the given period
func NewATR(period int) *ATR {
	return &ATR{
		period: period,
		w:      newWindow(period),
	}
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR(%d)", a.period)
}

func (a *ATR) Warmup() int {
	// Need period+1 bars because TR requires the previous close
	return a.period + 1
}

func (a *ATR) Reset() {
	a.w.reset()
	a.prevClose = 0
	a.hasPrevious = false
}

func (a *ATR) Update(b market.Bar) {
	if !a.hasPrevious {
		a.prevClose = b.Close
		a.hasPrevious = true
		return
	}

	a.w.push(TrueRange(b, a.prevClose))
	a.prevClose = b.Close
}

func (a *ATR) Ready() bool {
	return a.w.full()
}

func (a *ATR) Value() float64 {
	return a.w.mean()
}

// TrueRange is max(high-low, |high-prevClose|, |low-prevClose|).
// It is NaN when high or low is missing.
func TrueRange(b market.Bar, prevClose float64) float64 {
	if market.Missing(b.High) || market.Missing(b.Low) {
		return nan
	}
	highLow := b.High - b.Low
	highClose := math.Abs(b.High - prevClose)
	lowClose := math.Abs(b.Low - prevClose)

	return math.Max(highLow, math.Max(highClose, lowClose))
}

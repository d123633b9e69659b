package indicators

import (
	"fmt"

	"github.com/rustyeddy/fxsignal/market"
)

// Bollinger bands: SMA(period) of closes +/- k sample standard deviations.
type Bollinger struct {
	period int
	k      float64
	w      *window
}

func NewBollinger(period int, k float64) *Bollinger {
	return &Bollinger{
		period: period,
		k:      k,
		w:      newWindow(period),
	}
}

func (b *Bollinger) Name() string {
	return fmt.Sprintf("BB(%d,%g)", b.period, b.k)
}

func (b *Bollinger) Warmup() int { return b.period }
func (b *Bollinger) Reset()      { b.w.reset() }
func (b *Bollinger) Ready() bool { return b.w.full() }

func (b *Bollinger) Update(bar market.Bar) {
	b.w.push(bar.Close)
}

// Value returns the middle band.
func (b *Bollinger) Value() float64 {
	return b.w.mean()
}

// Bands returns the middle, upper and lower bands; all NaN until Ready.
func (b *Bollinger) Bands() (mid, upper, lower float64) {
	mid = b.w.mean()
	sd := b.w.stddev()
	if isNaN(mid) || isNaN(sd) {
		return nan, nan, nan
	}
	return mid, mid + b.k*sd, mid - b.k*sd
}

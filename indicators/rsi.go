package indicators

import (
	"fmt"

	"github.com/rustyeddy/fxsignal/market"
)

// RSI is the Relative Strength Index using simple rolling means of gains
// and losses over period price changes (not Wilder smoothing).
//
// When the average loss is zero the value is 100, including the flat case
// where the average gain is zero as well.
type RSI struct {
	period    int
	gains     *window
	losses    *window
	prevClose float64
	havePrev  bool
}

func NewRSI(period int) *RSI {
	return &RSI{
		period: period,
		gains:  newWindow(period),
		losses: newWindow(period),
	}
}

func (r *RSI) Name() string { return fmt.Sprintf("RSI(%d)", r.period) }

// Warmup is period+1: the first bar only seeds the previous close.
func (r *RSI) Warmup() int { return r.period + 1 }

func (r *RSI) Reset() {
	r.gains.reset()
	r.losses.reset()
	r.prevClose = 0
	r.havePrev = false
}

func (r *RSI) Update(b market.Bar) {
	if !r.havePrev {
		r.prevClose = b.Close
		r.havePrev = true
		return
	}

	delta := b.Close - r.prevClose
	r.prevClose = b.Close

	gain, loss := 0.0, 0.0
	if delta > 0 {
		gain = delta
	} else if delta < 0 {
		loss = -delta
	}
	r.gains.push(gain)
	r.losses.push(loss)
}

func (r *RSI) Ready() bool { return r.gains.full() }

func (r *RSI) Value() float64 {
	avgGain := r.gains.mean()
	avgLoss := r.losses.mean()
	if isNaN(avgGain) || isNaN(avgLoss) {
		return nan
	}
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

package indicators

import (
	"fmt"

	"github.com/rustyeddy/fxsignal/market"
)

// SimpleMA is a streaming Simple Moving Average of closes.
type SimpleMA struct {
	period int
	w      *window
}

// NewMA creates a new Simple Moving Average indicator with the given period
func NewMA(period int) *SimpleMA {
	return &SimpleMA{
		period: period,
		w:      newWindow(period),
	}
}

func (m *SimpleMA) Name() string {
	return fmt.Sprintf("MA(%d)", m.period)
}

func (m *SimpleMA) Warmup() int {
	return m.period
}

func (m *SimpleMA) Reset() {
	m.w.reset()
}

func (m *SimpleMA) Update(b market.Bar) {
	m.w.push(b.Close)
}

func (m *SimpleMA) Ready() bool {
	return m.w.full()
}

func (m *SimpleMA) Value() float64 {
	return m.w.mean()
}

// ExponentialMA is a streaming Exponential Moving Average of closes.
//
// The recurrence is seeded with the first close and runs from the first
// bar: ema = alpha*close + (1-alpha)*ema, alpha = 2/(period+1).
// Value is NaN until period bars have been seen.
type ExponentialMA struct {
	period int
	e      ema
}

// NewEMA creates a new Exponential Moving Average indicator with the given period
func NewEMA(period int) *ExponentialMA {
	return &ExponentialMA{
		period: period,
		e:      newEMA(period),
	}
}

func (e *ExponentialMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

func (e *ExponentialMA) Warmup() int {
	return e.period
}

func (e *ExponentialMA) Reset() {
	e.e.reset()
}

func (e *ExponentialMA) Update(b market.Bar) {
	e.e.add(b.Close)
}

func (e *ExponentialMA) Ready() bool {
	return e.e.ready()
}

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return nan
	}
	return e.e.value
}

// ema is the bare recurrence shared by ExponentialMA and MACD.
type ema struct {
	period int
	alpha  float64
	value  float64
	seen   int
}

func newEMA(period int) ema {
	return ema{
		period: period,
		alpha:  2.0 / float64(period+1),
	}
}

func (e *ema) add(x float64) {
	e.seen++
	if e.seen == 1 {
		e.value = x
		return
	}
	e.value = e.alpha*x + (1.0-e.alpha)*e.value
}

func (e *ema) ready() bool { return e.seen >= e.period }

func (e *ema) reset() {
	e.value = 0
	e.seen = 0
}

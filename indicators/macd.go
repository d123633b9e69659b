package indicators

import (
	"fmt"

	"github.com/rustyeddy/fxsignal/market"
)

// MACD is EMA(fast) - EMA(slow) of closes with an EMA(signal) of that line.
//
// All three recurrences run from the first bar; readiness only masks the
// output. The line is ready after slow bars, the signal after
// slow+signal-1 bars.
type MACD struct {
	fast, slow, signal int

	fastEMA, slowEMA, signalEMA ema
	line                        float64
}

func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fast:      fast,
		slow:      slow,
		signal:    signal,
		fastEMA:   newEMA(fast),
		slowEMA:   newEMA(slow),
		signalEMA: newEMA(signal),
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fast, m.slow, m.signal)
}

func (m *MACD) Warmup() int { return m.slow + m.signal - 1 }

func (m *MACD) Reset() {
	m.fastEMA.reset()
	m.slowEMA.reset()
	m.signalEMA.reset()
	m.line = 0
}

func (m *MACD) Update(b market.Bar) {
	m.fastEMA.add(b.Close)
	m.slowEMA.add(b.Close)
	m.line = m.fastEMA.value - m.slowEMA.value
	m.signalEMA.add(m.line)
}

// Ready reports whether both the line and the signal are defined.
func (m *MACD) Ready() bool {
	return m.slowEMA.seen >= m.Warmup()
}

// Value returns the MACD line.
func (m *MACD) Value() float64 {
	if !m.slowEMA.ready() {
		return nan
	}
	return m.line
}

// Signal returns the signal line.
func (m *MACD) Signal() float64 {
	if !m.Ready() {
		return nan
	}
	return m.signalEMA.value
}


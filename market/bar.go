// Package market holds the price bar types consumed by the indicator engine.
package market

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrEmptySeries = errors.New("series is empty")
	ErrUnordered   = errors.New("series timestamps must be strictly increasing")
)

// Bar is one OHLCV observation. A missing value is NaN; Volume is
// optional and commonly NaN for FX feeds.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Missing reports whether v represents an absent field.
func Missing(v float64) bool { return math.IsNaN(v) }

func (b Bar) HasVolume() bool { return !Missing(b.Volume) }

// Series is an ordered sequence of bars.
type Series []Bar

// Validate checks the series is non-empty and strictly increasing in time.
// OHLC consistency (low <= close <= high) is deliberately not checked.
func (s Series) Validate() error {
	if len(s) == 0 {
		return ErrEmptySeries
	}
	for i := 1; i < len(s); i++ {
		if !s[i].Time.After(s[i-1].Time) {
			return fmt.Errorf("%w: bar %d (%s) after %s", ErrUnordered, i,
				s[i].Time.Format(time.RFC3339), s[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Closes returns the close prices in order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Last returns the most recent bar. ok is false for an empty series.
func (s Series) Last() (b Bar, ok bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Span returns the first and last timestamps.
func (s Series) Span() (start, end time.Time) {
	if len(s) == 0 {
		return
	}
	return s[0].Time, s[len(s)-1].Time
}
